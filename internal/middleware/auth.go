package middleware

import (
	"errors"
	"net/http"

	"authapp/internal/token"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RequireAuthはCookieベースの認証ゲート。
//
// 状態遷移（この順で1回だけ）：
//  1. access cookieがあれば検証。成功→通過。
//  2. 失敗ならrefresh cookieでローテーション。成功→新Cookieを積んで通過。
//  3. どちらもダメ→両Cookieをクリアして401。
//
// インフラ障害は401に潰さず500で返す（障害を認証バグに見せない）。
func RequireAuth(sessions *usecase.SessionUsecase, cookies usecase.CookiePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authenticate(c, sessions, cookies)
			if err != nil {
				if errors.Is(err, usecase.ErrUnauthorized) {
					// サーバー側で無効化済みのCookieを端末に残さない
					setCookies(c, cookies.ClearCookies())
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxIdentityKey, identity)
			return next(c)
		}
	}
}

// OptionalAuthはログイン済みなら個人化するルート用の変種。
// 認証に失敗してもIdentityを付けずに通すだけで、401は出さない。
// インフラ障害だけは500。
func OptionalAuth(sessions *usecase.SessionUsecase, cookies usecase.CookiePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authenticate(c, sessions, cookies)
			if err != nil {
				if errors.Is(err, usecase.ErrUnauthorized) {
					return next(c)
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxIdentityKey, identity)
			return next(c)
		}
	}
}

// RequireBearerAuthはAuthorizationヘッダ専用のゲート。
// Cookieには一切触れず、暗黙のrefreshもしない。
// access tokenが切れたら401：クライアントが明示的にrefreshする。
func RequireBearerAuth(sessions *usecase.SessionUsecase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			rawToken, ok := token.ExtractBearerToken(authz)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			identity, err := sessions.ValidateAccessToken(c.Request().Context(), rawToken)
			if err != nil {
				if errors.Is(err, usecase.ErrUnauthorized) {
					meta := RequestMetaFrom(c)
					c.Logger().Warnf("auth: invalid bearer credential ip=%s ua=%q", meta.IPAddress, meta.UserAgent)
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.Set(CtxIdentityKey, identity)
			return next(c)
		}
	}
}

// Cookieの取り出し→access検証→refreshローテーションの共通部。
// 戻り値のerrorはErrUnauthorizedかインフラ障害のどちらか。
func authenticate(c echo.Context, sessions *usecase.SessionUsecase, cookies usecase.CookiePolicy) (*usecase.Identity, error) {
	accessToken := readCookie(c, usecase.AccessCookieName)
	refreshToken := readCookie(c, usecase.RefreshCookieName)

	// どちらも無ければそれ以上何もしない
	if accessToken == "" && refreshToken == "" {
		return nil, usecase.ErrUnauthorized
	}

	ctx := c.Request().Context()

	if accessToken != "" {
		identity, err := sessions.ValidateAccessToken(ctx, accessToken)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, usecase.ErrUnauthorized) {
			return nil, err
		}
	}

	if refreshToken != "" {
		meta := RequestMetaFrom(c)
		identity, pair, err := sessions.RefreshSession(ctx, refreshToken, meta)
		if err == nil {
			// 透過的refresh成功。呼び出し側には新しいCookieだけが見える。
			setCookies(c, cookies.AuthCookies(pair))
			return identity, nil
		}
		if !errors.Is(err, usecase.ErrUnauthorized) {
			return nil, err
		}
	}

	meta := RequestMetaFrom(c)
	c.Logger().Warnf("auth: invalid credential ip=%s ua=%q", meta.IPAddress, meta.UserAgent)

	return nil, usecase.ErrUnauthorized
}
