package repository

import (
	"context"

	"authapp/internal/domain/model"
	repo "authapp/internal/repository"

	"gorm.io/gorm"
)

type authEventGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewAuthEventRepository(db *gorm.DB) repo.AuthEventRepository {
	return &authEventGormRepository{db: db}
}

// イベントを保存します。
func (r *authEventGormRepository) Create(ctx context.Context, event *model.AuthEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return err
	}
	return nil
}

// 指定ユーザーのイベントを新しい順で返します。
func (r *authEventGormRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var events []model.AuthEvent

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}
