package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authapp/internal/domain/model"
	"authapp/internal/repository"
	"authapp/internal/token"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 認証済みリクエストに添付する値。
// Rolesは読み込み時に一度だけ正規化する。
type Identity struct {
	User    *model.User
	Session *model.Session
	Roles   model.RoleSet
}

// SessionUsecaseはセッションの作成・ローテーション・検証・失効を
// 一手に引き受ける。セッション行を書き換えてよいのはここだけ。
type SessionUsecase struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	events   repository.AuthEventRepository
	tx       repository.TransactionManager
	tokens   *token.Service
	clock    Clock
}

// DI
func NewSessionUsecase(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	events repository.AuthEventRepository,
	tx repository.TransactionManager,
	tokens *token.Service,
	clock Clock,
) *SessionUsecase {
	return &SessionUsecase{
		sessions: sessions,
		users:    users,
		events:   events,
		tx:       tx,
		tokens:   tokens,
		clock:    clock,
	}
}

// CreateSessionはログイン成功時に新しいセッションを作る。
// 同一ユーザーの既存セッションはすべて無効化する（シングルセッション方針）。
// 無効化と作成は同一トランザクションで行う。
func (u *SessionUsecase) CreateSession(ctx context.Context, user *model.User, meta RequestMeta) (*model.Session, token.TokenPair, error) {
	sessionID := token.NewSessionID()

	pair, err := u.tokens.IssuePair(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, token.TokenPair{}, err
	}

	now := u.clock.Now()

	session := &model.Session{
		ID:               sessionID,
		UserID:           user.ID,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		IsActive:         true,
		LastActivityAt:   now,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		DeviceBrowser:    meta.Device.Browser,
		DeviceOS:         meta.Device.OS,
		DeviceType:       meta.Device.Type,
		ExpiresAt:        pair.RefreshExpiresAt,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Sessions().DeactivateAllByUserID(ctx, user.ID); err != nil {
			return err
		}
		return r.Sessions().Create(ctx, session)
	})
	if err != nil {
		return nil, token.TokenPair{}, err
	}

	u.recordEvent(ctx, model.AuthEventLogin, user.ID, sessionID, meta, "")

	return session, pair, nil
}

// RefreshSessionはrefresh tokenでトークンペアを丸ごと入れ替える。
// 再発行ではなくローテーション：成功した瞬間、旧ペアは二度と使えない。
// 同じtokenでの2回目の呼び出しは必ず失敗する（冪等にしない、仕様）。
func (u *SessionUsecase) RefreshSession(ctx context.Context, refreshToken string, meta RequestMeta) (*Identity, token.TokenPair, error) {
	payload, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		u.recordEvent(ctx, model.AuthEventInvalidCredential, "", "", meta, "refresh verification failed")
		return nil, token.TokenPair{}, ErrUnauthorized
	}

	session, err := u.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			u.recordEvent(ctx, model.AuthEventInvalidCredential, payload.UserID, payload.SessionID, meta, "refresh token unknown or rotated")
			return nil, token.TokenPair{}, ErrUnauthorized
		}
		return nil, token.TokenPair{}, err
	}

	now := u.clock.Now()
	if session.ID != payload.SessionID || !session.CanRefresh(now) {
		u.recordEvent(ctx, model.AuthEventInvalidCredential, session.UserID, session.ID, meta, "session not refreshable")
		return nil, token.TokenPair{}, ErrUnauthorized
	}

	user, err := u.loadActiveUser(ctx, session.UserID)
	if err != nil {
		return nil, token.TokenPair{}, err
	}

	pair, err := u.tokens.IssuePair(user.ID, user.Email, session.ID)
	if err != nil {
		return nil, token.TokenPair{}, err
	}

	// CASつきの1回のUPDATE。同時refreshの負けた側はここでErrSessionNotFound。
	err = u.sessions.Rotate(ctx, session.ID, refreshToken, repository.SessionRotateParams{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		LastActivityAt:   now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			u.recordEvent(ctx, model.AuthEventInvalidCredential, user.ID, session.ID, meta, "refresh rotation race lost")
			return nil, token.TokenPair{}, ErrUnauthorized
		}
		return nil, token.TokenPair{}, err
	}

	// ローテーション後の値を手元の行にも反映する
	session.AccessToken = pair.AccessToken
	session.RefreshToken = pair.RefreshToken
	session.AccessExpiresAt = pair.AccessExpiresAt
	session.RefreshExpiresAt = pair.RefreshExpiresAt
	session.ExpiresAt = pair.RefreshExpiresAt
	session.LastActivityAt = now

	u.recordEvent(ctx, model.AuthEventRefresh, user.ID, session.ID, meta, "")

	return newIdentity(user, session), pair, nil
}

// ValidateAccessTokenはアクセストークンを検証してIdentityを返す。
// 成功時はlast_activity_atを更新する（読みだが監査のための副作用、仕様）。
func (u *SessionUsecase) ValidateAccessToken(ctx context.Context, accessToken string) (*Identity, error) {
	payload, err := u.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := u.sessions.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	now := u.clock.Now()
	if session.ID != payload.SessionID || !session.CanAccess(now) {
		return nil, ErrUnauthorized
	}

	user, err := u.loadActiveUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.TouchActivity(ctx, session.ID, now); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// 検証とほぼ同時に失効した
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	session.LastActivityAt = now

	return newIdentity(user, session), nil
}

// DestroySessionは自分のセッションを1件失効させる。
// 他人のセッションIDを渡された場合はErrForbidden。物理削除はしない。
func (u *SessionUsecase) DestroySession(ctx context.Context, userID string, sessionID string) error {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	if session.UserID != userID {
		return ErrForbidden
	}

	if err := u.sessions.Deactivate(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	u.recordEvent(ctx, model.AuthEventLogout, userID, sessionID, RequestMeta{}, "")

	return nil
}

// DestroyAllSessionsは指定ユーザーの全セッションを失効させる。
// 以後、そのユーザーの発行済みトークンはaccess/refreshどちらも通らない。
func (u *SessionUsecase) DestroyAllSessions(ctx context.Context, userID string) error {
	if err := u.sessions.DeactivateAllByUserID(ctx, userID); err != nil {
		return err
	}

	u.recordEvent(ctx, model.AuthEventLogoutAll, userID, "", RequestMeta{}, "")

	return nil
}

// ListActiveSessionsは「ログイン中の端末」一覧を返す。
func (u *SessionUsecase) ListActiveSessions(ctx context.Context, userID string) ([]model.Session, error) {
	return u.sessions.ListActiveByUserID(ctx, userID, u.clock.Now())
}

// ListAuthEventsは指定ユーザーの認証イベント履歴を新しい順で返す（管理者向け）。
func (u *SessionUsecase) ListAuthEvents(ctx context.Context, userID string, limit int) ([]model.AuthEvent, error) {
	if u.events == nil {
		return nil, nil
	}
	return u.events.ListByUserID(ctx, userID, limit)
}

// userを取得して停止済みなら401相当にする
func (u *SessionUsecase) loadActiveUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user, nil
}

func newIdentity(user *model.User, session *model.Session) *Identity {
	return &Identity{
		User:    user,
		Session: session,
		Roles:   user.RoleSet(),
	}
}

// イベント記録はベストエフォート。失敗してもリクエストは落とさない。
// トークンの生値は渡さないこと。
func (u *SessionUsecase) recordEvent(ctx context.Context, typ model.AuthEventType, userID string, sessionID string, meta RequestMeta, detail string) {
	if u.events == nil {
		return
	}

	_ = u.events.Create(ctx, &model.AuthEvent{
		UserID:    userID,
		SessionID: sessionID,
		Type:      typ,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Detail:    detail,
		CreatedAt: u.clock.Now(),
	})
}

// RecordRoleDenied はロール不一致（403）を監査ログに残す。
func (u *SessionUsecase) RecordRoleDenied(ctx context.Context, identity *Identity, required model.RoleSet, meta RequestMeta) {
	detail := fmt.Sprintf("roles=%v required=%v", identity.Roles.Strings(), required.Strings())
	u.recordEvent(ctx, model.AuthEventRoleDenied, identity.User.ID, identity.Session.ID, meta, detail)
}
