package server

import (
	"time"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// GoogleLogin starts the Google OAuth flow. The random state lands in a
// short-lived cookie and must match on the callback.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	state := uuid.New().String()

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   s.config.IsProduction(),
	})

	return c.Redirect(s.authService.LoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow: verifies state, exchanges the
// code, upserts the user, and redirects to the SPA with a session token.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return c.Redirect("/?error=auth_failed", fiber.StatusTemporaryRedirect)
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/?error=auth_failed", fiber.StatusTemporaryRedirect)
	}

	user, err := s.authService.HandleCallback(c.UserContext(), code)
	if err != nil {
		return c.Redirect("/?error=auth_failed", fiber.StatusTemporaryRedirect)
	}

	token, err := s.authService.IssueToken(user)
	if err != nil {
		return c.Redirect("/?error=auth_failed", fiber.StatusTemporaryRedirect)
	}

	return c.Redirect("/?token="+token, fiber.StatusTemporaryRedirect)
}

// GetCurrentUser returns the authenticated user's own record.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// Logout revokes the presented token by blacklisting its JTI until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	tokenString := extractBearerToken(c)
	if tokenString != "" && s.redis != nil {
		// Parse without re-validating; AuthRequired already did.
		token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err == nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				jti, _ := claims["jti"].(string)
				if jti != "" {
					ttl := service.TokenTTL
					if exp, expOk := claims["exp"].(float64); expOk {
						if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
							ttl = remaining
						}
					}
					s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
				}
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func extractBearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Query("token")
	}
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && authHeader[:len(prefix)] == prefix {
		return authHeader[len(prefix):]
	}
	return ""
}
