package repository

import (
	"context"
	"errors"
	"time"

	"authapp/internal/domain/model"
)

// セッションが見つかりません（ローテーション競合負けも含む）を統一
var ErrSessionNotFound = errors.New("session not found")

// Rotateで書き換える値のまとまり。
type SessionRotateParams struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	LastActivityAt   time.Time
}

// セッションの保存・取得・更新・失効
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, sessionID string) (*model.Session, error)
	FindByAccessToken(ctx context.Context, accessToken string) (*model.Session, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error)

	// 指定ユーザーの有効セッションをすべて無効化する（シングルセッション方針）
	DeactivateAllByUserID(ctx context.Context, userID string) error

	// 1件を無効化する。物理削除はしない。
	Deactivate(ctx context.Context, sessionID string) error

	// 旧refresh tokenが一致する有効な行だけを1回のUPDATEで書き換える。
	// 一致しなければErrSessionNotFound（既にローテーション済み＝競合負け/再利用）。
	Rotate(ctx context.Context, sessionID string, oldRefreshToken string, p SessionRotateParams) error

	// last_activity_atを更新する。無効化済みならErrSessionNotFound。
	TouchActivity(ctx context.Context, sessionID string, at time.Time) error

	// 「ログイン中の端末」一覧用。無効・期限切れは除く。
	ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]model.Session, error)

	// expires_atを過ぎた行を物理削除する（reaper用）。削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
