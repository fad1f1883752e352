package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fiapx/video-orchestrator/internal/controller/restapi/v1/response"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderUserID = "X-User-Id"

	_localsUserID = "userId"
)

var errInvalidToken = errors.New("invalid token")

type claims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Identity resolves the caller. With an empty secret the X-User-Id header is
// trusted (an upstream gateway authenticates); otherwise a HS256 bearer token
// is required and its userId (or sub) claim is used.
func Identity(jwtSecret string, l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var (
			userID string
			err    error
		)

		if jwtSecret == "" {
			userID = strings.TrimSpace(ctx.Get(HeaderUserID))
		} else {
			userID, err = userFromToken(ctx.Get(fiber.HeaderAuthorization), jwtSecret)
		}

		if userID == "" {
			if err != nil {
				l.Warn("restapi - middleware - Identity - %s %s: %s", ctx.Method(), ctx.Path(), err.Error())
			} else {
				l.Warn("restapi - middleware - Identity - %s %s: missing %s", ctx.Method(), ctx.Path(), HeaderUserID)
			}

			return ctx.Status(http.StatusUnauthorized).JSON(response.Error{
				Error: "Usuário não identificado (x-user-id ausente)",
			})
		}

		ctx.Locals(_localsUserID, userID)

		return ctx.Next()
	}
}

// UserID returns the identity set by Identity.
func UserID(ctx *fiber.Ctx) string {
	userID, _ := ctx.Locals(_localsUserID).(string)

	return userID
}

func userFromToken(header, secret string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", errInvalidToken
	}

	var c claims

	token, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	if c.UserID != "" {
		return c.UserID, nil
	}

	return c.Subject, nil
}
