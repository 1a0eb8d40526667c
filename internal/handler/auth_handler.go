package handler

import (
	"context"
	"errors"
	"net/http"

	"authapp/internal/middleware"
	"authapp/internal/usecase"
	auth "authapp/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// refresh入力の検証の約束
type RefreshValidator interface {
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

// /auth の認証API
type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase
	loginUC    *auth.LoginUsecase
	sessions   *usecase.SessionUsecase
	cookies    usecase.CookiePolicy
	validator  RefreshValidator
}

// DI
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessions *usecase.SessionUsecase,
	cookies usecase.CookiePolicy,
	validator RefreshValidator,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		sessions:   sessions,
		cookies:    cookies,
		validator:  validator,
	}
}

// 認証ルートを登録。requireAuthはCookieゲート。
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)

	g := e.Group("/auth", requireAuth)
	g.POST("/logout", h.logout)
	g.POST("/logout-all", h.logoutAll)
	g.GET("/me", h.me)
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/refresh のリクエストボディ（Cookie無しクライアント用）。
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmailFormat),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
		default:
			return writeError(c, err)
		}
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	out, pair, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Meta:     middleware.RequestMetaFrom(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		case errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			return writeError(c, err)
		}
	}

	//両Cookieをセット
	for _, cookie := range h.cookies.AuthCookies(pair) {
		c.SetCookie(cookie)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/refresh
// 明示的なローテーション。Cookie優先、無ければボディのrefresh_token。
func (h *AuthHandler) refresh(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(usecase.RefreshCookieName); err == nil && cookie != nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if err := h.validator.ValidateRefresh(c.Request().Context(), refreshToken); err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	identity, pair, err := h.sessions.RefreshSession(c.Request().Context(), refreshToken, middleware.RequestMetaFrom(c))
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			//無効なCookieは端末に残さない
			for _, cookie := range h.cookies.ClearCookies() {
				c.SetCookie(cookie)
			}
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}
		return writeError(c, err)
	}

	for _, cookie := range h.cookies.AuthCookies(pair) {
		c.SetCookie(cookie)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session_id": identity.Session.ID,
		"token": auth.JwtAccessToken{
			AccessToken: pair.AccessToken,
			ExpiresIn:   int(pair.AccessExpiresAt.Sub(identity.Session.LastActivityAt).Seconds()),
		},
	})
}

// POST /auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	err := h.sessions.DestroySession(c.Request().Context(), identity.User.ID, identity.Session.ID)
	if err != nil && !errors.Is(err, usecase.ErrUnauthorized) {
		return writeError(c, err)
	}

	for _, cookie := range h.cookies.ClearCookies() {
		c.SetCookie(cookie)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

// POST /auth/logout-all
func (h *AuthHandler) logoutAll(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.sessions.DestroyAllSessions(c.Request().Context(), identity.User.ID); err != nil {
		return writeError(c, err)
	}

	for _, cookie := range h.cookies.ClearCookies() {
		c.SetCookie(cookie)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

// GET /auth/me
func (h *AuthHandler) me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	safeUser := *identity.User
	safeUser.Password = ""

	return c.JSON(http.StatusOK, echo.Map{
		"user":       safeUser,
		"session_id": identity.Session.ID,
	})
}
