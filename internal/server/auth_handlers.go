package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// LoginRequest is the token login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login
// @Summary Obtain an auth token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} object{auth_token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/token/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.Respond(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"auth_token": token})
}

// Logout handles POST /api/auth/token/logout
// @Summary Revoke the current token
// @Tags auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)

	if jti != "" && s.redis != nil {
		ttl := time.Until(exp)
		if exp.IsZero() || ttl <= 0 {
			ttl = s.tokenTTL()
		}
		if err := s.redis.Set(c.UserContext(), blacklistKey(jti), "1", ttl).Err(); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Authenticate resolves the token, if any, into c.Locals("userID").
// Requests without credentials continue anonymously; bad or revoked tokens
// are rejected.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := middleware.ExtractToken(c)
		if errors.Is(err, middleware.ErrMissingToken) {
			return c.Next()
		}
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header"))
		}

		claims, err := middleware.ParseToken(raw, s.config.JWTSecret)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if claims.JTI != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.UserContext(), blacklistKey(claims.JTI)).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", claims.UserID)
		c.Locals("jti", claims.JTI)
		c.Locals("tokenExp", claims.ExpiresAt)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. It relies on Authenticate having run.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication credentials were not provided"))
		}
		return c.Next()
	}
}

// generateToken creates a signed access token for userID.
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"exp": now.Add(s.tokenTTL()).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) tokenTTL() time.Duration {
	if s.config.JWTTTLHours > 0 {
		return time.Duration(s.config.JWTTTLHours) * time.Hour
	}
	return defaultTokenTTL
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}
