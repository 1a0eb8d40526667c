package auth

import (
	"context"
	"errors"

	"authapp/internal/domain/model"
	"authapp/internal/repository"
	"authapp/internal/token"
	"authapp/internal/usecase"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
	Meta     usecase.RequestMeta
}

// アクセストークンの返却形
type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User      model.User     `json:"user"`
	SessionID string         `json:"session_id"`
	Token     JwtAccessToken `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// ログイン入力の検証の約束
type LoginValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	sessions  *usecase.SessionUsecase
	verifier  PasswordVerifier
	validator LoginValidator
	clock     Clock
}

// DI
func NewLoginUsecase(
	userRepo repository.UserRepository,
	sessions *usecase.SessionUsecase,
	verifier PasswordVerifier,
	validator LoginValidator,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		sessions:  sessions,
		verifier:  verifier,
		validator: validator,
		clock:     clock,
	}
}

// ログイン処理を実行する。
// 成功するとSessionUsecaseが新しいセッションを作り、
// 同一ユーザーの既存セッションはすべて無効化される。
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, token.TokenPair, error) {
	var out LoginOutput

	//入力検証
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return out, token.TokenPair{}, ErrInvalidCredentials
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, token.TokenPair{}, ErrInvalidCredentials
		}
		return out, token.TokenPair{}, err
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, token.TokenPair{}, ErrUserInactive
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.Password); !ok {
		return out, token.TokenPair{}, ErrInvalidCredentials
	}

	//セッション作成（トークンペア発行込み）
	session, pair, err := u.sessions.CreateSession(ctx, user, in.Meta)
	if err != nil {
		return out, token.TokenPair{}, err
	}

	//最終ログイン時刻更新
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, token.TokenPair{}, err
	}

	//出力（passwordは返さない）
	safeUser := *user
	safeUser.Password = ""

	out.User = safeUser
	out.SessionID = session.ID
	out.Token = JwtAccessToken{
		AccessToken: pair.AccessToken,
		ExpiresIn:   int(pair.AccessExpiresAt.Sub(now).Seconds()),
	}

	return out, pair, nil
}
