package usecase

import (
	"net/http"

	"authapp/internal/token"
)

// Cookie名は固定。
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookiePolicyは認証Cookieの属性を一元管理する。
// Secureは本番環境のときだけ付ける。
type CookiePolicy struct {
	Secure bool
}

// DI
func NewCookiePolicy(goEnv string) CookiePolicy {
	return CookiePolicy{Secure: goEnv == "production"}
}

// AuthCookiesはトークンペアをCookieにして返す。
func (p CookiePolicy) AuthCookies(pair token.TokenPair) []*http.Cookie {
	return []*http.Cookie{
		p.cookie(AccessCookieName, pair.AccessToken, int(token.AccessTokenTTL.Seconds())),
		p.cookie(RefreshCookieName, pair.RefreshToken, int(token.RefreshTokenTTL.Seconds())),
	}
}

// ClearCookiesは両Cookieを削除するCookieを返す。
func (p CookiePolicy) ClearCookies() []*http.Cookie {
	return []*http.Cookie{
		p.cookie(AccessCookieName, "", -1),
		p.cookie(RefreshCookieName, "", -1),
	}
}

func (p CookiePolicy) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
