package handler

import (
	"errors"
	"net/http"
	"strconv"

	"authapp/internal/usecase"
	auth "authapp/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// 管理者向けのユーザー操作API
type AdminUserHandler struct {
	forceLogoutUC *auth.ForceLogoutUsecase
	sessions      *usecase.SessionUsecase
}

// DI
func NewAdminUserHandler(forceLogoutUC *auth.ForceLogoutUsecase, sessions *usecase.SessionUsecase) *AdminUserHandler {
	return &AdminUserHandler{
		forceLogoutUC: forceLogoutUC,
		sessions:      sessions,
	}
}

// 管理者ルートを登録。requireAuth→requireAdminの順で通す。
func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, requireAuth echo.MiddlewareFunc, requireAdmin echo.MiddlewareFunc) {
	g := e.Group("/admin/users", requireAuth, requireAdmin)
	g.POST("/:id/force-logout", h.forceLogout)
	g.GET("/:id/auth-events", h.listAuthEvents)
}

// POST /admin/users/:id/force-logout
func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	targetUserID := c.Param("id")
	if targetUserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.forceLogoutUC.Execute(c.Request().Context(), targetUserID)
	if err != nil {
		if errors.Is(err, auth.ErrTargetUserNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /admin/users/:id/auth-events
// 対象ユーザーの認証イベント履歴（異常調査用）。
func (h *AdminUserHandler) listAuthEvents(c echo.Context) error {
	targetUserID := c.Param("id")
	if targetUserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	events, err := h.sessions.ListAuthEvents(c.Request().Context(), targetUserID, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"events": events})
}
