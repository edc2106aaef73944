package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/destru/catalog-api/internal/api/middleware"
	"github.com/destru/catalog-api/internal/core/domain"
	"github.com/destru/catalog-api/internal/core/ports"
)

// CookiePolicy selects how the session cookie is scoped. Development
// deployments allow cross-site usage (SameSite=None); production restricts
// to Lax and pins the cookie to a domain.
type CookiePolicy struct {
	SameSite http.SameSite
	Domain   string
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookiePolicy
}

func NewAuthHandler(authService ports.AuthService, cookies CookiePolicy) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,username"`
	Password string `json:"password" validate:"required,hexdigest"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	ID string `json:"id"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auths
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account name and client-side password digest"
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      500
// @Router       /auths/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidName
	}
	if err := c.Validate(&req); err != nil {
		return fieldReason(err)
	}

	if err := h.authService.Register(c.Request().Context(), req.Name, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// Login authenticates a user, issues a session token, and sets the Token
// cookie.
//
// @Summary      Login
// @Tags         auths
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401
// @Failure      404
// @Router       /auths/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidName
	}

	res, err := h.authService.Login(c.Request().Context(), req.Name, req.Password, req.Remember)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookies.SameSite,
		Domain:   h.cookies.Domain,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, loginResponse{ID: res.UserID})
}

// Logout revokes the presented session token and clears the Token cookie.
//
// @Summary      Logout
// @Tags         auths
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /auths/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.SessionToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	// MaxAge < 0 renders Max-Age=0, expiring the cookie client-side.
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookies.SameSite,
		Domain:   h.cookies.Domain,
	})

	return c.NoContent(http.StatusOK)
}
