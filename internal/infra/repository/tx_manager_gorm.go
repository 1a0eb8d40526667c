package repository

import (
	"context"

	repo "authapp/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	sessions repo.SessionRepository
}

func (r *txReposGorm) Sessions() repo.SessionRepository { return r.sessions }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			sessions: NewSessionRepository(tx),
		}
		return fn(r)
	})
}
