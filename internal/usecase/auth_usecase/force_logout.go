package auth

import (
	"context"
	"errors"

	"authapp/internal/repository"
	"authapp/internal/usecase"
)

// 対象ユーザーがいない
var ErrTargetUserNotFound = errors.New("target user not found")

// 強制ログアウトの出力
type ForceLogoutOutput struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ForceLogoutUsecaseは管理者による強制ログアウト。
// 対象ユーザーの全セッションを失効させる。
type ForceLogoutUsecase struct {
	userRepo repository.UserRepository
	sessions *usecase.SessionUsecase
}

// DI
func NewForceLogoutUsecase(userRepo repository.UserRepository, sessions *usecase.SessionUsecase) *ForceLogoutUsecase {
	return &ForceLogoutUsecase{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// 強制ログアウト実行
func (u *ForceLogoutUsecase) Execute(ctx context.Context, targetUserID string) (ForceLogoutOutput, error) {
	var out ForceLogoutOutput

	//対象ユーザーの存在チェック
	user, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrTargetUserNotFound
		}
		return out, err
	}

	//全セッション失効。発行済みトークンはaccess/refreshどちらも通らなくなる。
	if err := u.sessions.DestroyAllSessions(ctx, user.ID); err != nil {
		return out, err
	}

	out.UserID = user.ID
	out.Message = "all sessions revoked"
	return out, nil
}
