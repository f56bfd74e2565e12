package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/config"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/models"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// TokenIssuer identifies tokens minted by this API.
	TokenIssuer = "blog-api"
	// TokenAudience identifies the intended consumer of the tokens.
	TokenAudience = "blog-client"
	// TokenTTL is the token lifetime.
	TokenTTL = 7 * 24 * time.Hour

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// AuthService runs the Google OAuth flow and mints session tokens.
type AuthService struct {
	userRepo  repository.UserRepository
	oauth     *oauth2.Config
	jwtSecret string
}

// googleUserInfo is the subset of the Google userinfo response we consume.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		jwtSecret: cfg.JWTSecret,
	}
}

// LoginURL returns the Google consent page URL carrying the CSRF state.
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, fetches the Google
// profile, and upserts the matching user record. Lookup order is Google
// ID first, then email (linking an existing account), then create.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, models.NewUnauthorizedError("Failed to exchange authorization code")
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Email == "" || info.ID == "" {
		return nil, models.NewUnauthorizedError("Google account is missing required profile fields")
	}

	return s.upsertUser(ctx, info)
}

func (s *AuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to fetch Google profile: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewInternalError(fmt.Errorf("Google userinfo returned %d: %s", resp.StatusCode, body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to decode Google profile: %w", err))
	}
	return &info, nil
}

func (s *AuthService) upsertUser(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		changed := false
		if user.Name != info.Name && info.Name != "" {
			user.Name = info.Name
			changed = true
		}
		if user.Avatar != info.Picture && info.Picture != "" {
			user.Avatar = info.Picture
			changed = true
		}
		if changed {
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	// An account created before Google linking may exist under the same
	// email; attach the Google identity to it rather than creating a
	// duplicate.
	user, err = s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		user.GoogleID = &info.ID
		if user.Avatar == "" {
			user.Avatar = info.Picture
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		slog.Info("linked Google identity to existing account", "user_id", user.ID)
		return user, nil
	}

	user = &models.User{
		GoogleID: &info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Avatar:   info.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("created user from Google sign-in", "user_id", user.ID)
	return user, nil
}

// IssueToken mints a signed session token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", user.ID),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": now.Add(TokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

// generateJTI creates a unique identifier for a token.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
