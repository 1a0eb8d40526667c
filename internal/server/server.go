package server

import (
	"authapp/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ハンドラのまとまり。ルート登録に必要なものを全部持つ。
type Handlers struct {
	Auth      *handler.AuthHandler
	Sessions  *handler.SessionHandler
	AdminUser *handler.AdminUserHandler

	RequireAuth  echo.MiddlewareFunc
	RequireAdmin echo.MiddlewareFunc
}

// Newはecho本体を組み立てる。
func New(h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	h.Auth.RegisterRoutes(e, h.RequireAuth)
	h.Sessions.RegisterRoutes(e, h.RequireAuth)
	h.AdminUser.RegisterRoutes(e, h.RequireAuth, h.RequireAdmin)

	return e
}

// Startはサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
