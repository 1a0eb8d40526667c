package repository

import (
	"context"

	"authapp/internal/domain/model"
)

// 認証イベントログの保存・取得の約束。
type AuthEventRepository interface {
	Create(ctx context.Context, event *model.AuthEvent) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.AuthEvent, error)
}
