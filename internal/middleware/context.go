package middleware

import (
	"net/http"

	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 認証済みIdentityを入れるcontextキー。
// 値は*usecase.Identityひとつだけ。個別フィールドをばら撒かない。
const CtxIdentityKey = "auth_identity"

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// IdentityFromはゲートが添付したIdentityを取り出す。
func IdentityFrom(c echo.Context) (*usecase.Identity, bool) {
	identity, ok := c.Get(CtxIdentityKey).(*usecase.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// RequestMetaFromはリクエストから端末メタ情報を組み立てる。
func RequestMetaFrom(c echo.Context) usecase.RequestMeta {
	r := c.Request()
	return usecase.NewRequestMeta(
		r.Header.Get("X-Forwarded-For"),
		r.RemoteAddr,
		r.UserAgent(),
	)
}

// Cookieの値を読む。無ければ空文字。
func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

func setCookies(c echo.Context, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		c.SetCookie(cookie)
	}
}
