package repository

import (
	"context"
	"errors"
	"time"

	"authapp/internal/domain/model"
	repo "authapp/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewSessionRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// セッションを保存
func (r *sessionGormRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return err
	}
	return nil
}

// IDで1件検索します。
func (r *sessionGormRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	return r.findOne(ctx, "id = ?", sessionID)
}

// access_tokenで1件検索します。
func (r *sessionGormRepository) FindByAccessToken(ctx context.Context, accessToken string) (*model.Session, error) {
	return r.findOne(ctx, "access_token = ?", accessToken)
}

// refresh_tokenで1件検索します。
func (r *sessionGormRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	return r.findOne(ctx, "refresh_token = ?", refreshToken)
}

func (r *sessionGormRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Session, error) {
	var session model.Session

	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// 指定ユーザーの有効セッションをまとめて無効化します。
// 対象0件はエラーにしない（初回ログインなど）。
func (r *sessionGormRepository) DeactivateAllByUserID(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)

	if result.Error != nil {
		return result.Error
	}
	return nil
}

// 1件を無効化します。
func (r *sessionGormRepository) Deactivate(ctx context.Context, sessionID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Update("is_active", false)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// 旧refresh tokenが今も一致する有効な行だけを1回のUPDATEで書き換えます。
// 読み取り→書き込みの2段には分けない（同時refreshの競合はここで決着する）。
func (r *sessionGormRepository) Rotate(ctx context.Context, sessionID string, oldRefreshToken string, p repo.SessionRotateParams) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND refresh_token = ? AND is_active = ?", sessionID, oldRefreshToken, true).
		Updates(map[string]interface{}{
			"access_token":       p.AccessToken,
			"refresh_token":      p.RefreshToken,
			"access_expires_at":  p.AccessExpiresAt,
			"refresh_expires_at": p.RefreshExpiresAt,
			"expires_at":         p.RefreshExpiresAt,
			"last_activity_at":   p.LastActivityAt,
		})

	if result.Error != nil {
		return result.Error
	}

	// 更新件数が0なら「既にローテーション済み/無効/存在しない」
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// last_activity_atを更新します。
func (r *sessionGormRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Update("last_activity_at", at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// 有効かつ期限内のセッションを新しい順で返します。
func (r *sessionGormRepository) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]model.Session, error) {
	var sessions []model.Session

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND refresh_expires_at > ?", userID, true, now).
		Order("last_activity_at DESC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// expires_atを過ぎた行を物理削除します（reaper専用）。
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.Session{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
