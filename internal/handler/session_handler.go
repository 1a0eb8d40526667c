package handler

import (
	"errors"
	"net/http"
	"time"

	"authapp/internal/domain/model"
	"authapp/internal/middleware"
	"authapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 「ログイン中の端末」向けのAPI
type SessionHandler struct {
	sessions *usecase.SessionUsecase
}

// DI
func NewSessionHandler(sessions *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// セッション管理ルートを登録
func (h *SessionHandler) RegisterRoutes(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/auth/sessions", requireAuth)
	g.GET("", h.list)
	g.DELETE("/:id", h.destroy)
}

// 一覧の返却形。トークン値は絶対に含めない。
type sessionDTO struct {
	ID             string    `json:"id"`
	IPAddress      string    `json:"ip_address"`
	DeviceBrowser  string    `json:"device_browser"`
	DeviceOS       string    `json:"device_os"`
	DeviceType     string    `json:"device_type"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	Current        bool      `json:"current"`
}

func toSessionDTO(s model.Session, currentSessionID string) sessionDTO {
	return sessionDTO{
		ID:             s.ID,
		IPAddress:      s.IPAddress,
		DeviceBrowser:  s.DeviceBrowser,
		DeviceOS:       s.DeviceOS,
		DeviceType:     s.DeviceType,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
		Current:        s.ID == currentSessionID,
	}
}

// GET /auth/sessions
func (h *SessionHandler) list(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sessions, err := h.sessions.ListActiveSessions(c.Request().Context(), identity.User.ID)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s, identity.Session.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// DELETE /auth/sessions/:id
// 自分のセッションだけ失効できる。
func (h *SessionHandler) destroy(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	err := h.sessions.DestroySession(c.Request().Context(), identity.User.ID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrForbidden):
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		case errors.Is(err, usecase.ErrUnauthorized):
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		default:
			return writeError(c, err)
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "session revoked"})
}
