package middleware

import (
	"net/http"

	"authapp/internal/domain/model"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RequireRoleは認証ゲートの後段で動くロールチェック。
//
// Identity無し→401（未認証を403に混ぜない）。
// ロール不一致→403。監査ログには実際のロールと要求ロールの両方を残す。
func RequireRole(sessions *usecase.SessionUsecase, roles ...model.Role) echo.MiddlewareFunc {
	required := model.RoleSet(roles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if !identity.Roles.Intersects(required) {
				meta := RequestMetaFrom(c)
				c.Logger().Warnf("auth: role denied user=%s roles=%v required=%v", identity.User.ID, identity.Roles.Strings(), required.Strings())
				sessions.RecordRoleDenied(c.Request().Context(), identity, required, meta)
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
