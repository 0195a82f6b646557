package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
)

const localsActor = "actor"

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

// Claims are the token claims the service reads.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for actor that expires after ttl.
func IssueToken(secret []byte, actor core.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies tokenString and returns the actor it names.
func ParseToken(secret []byte, tokenString string) (core.Actor, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}

		return secret, nil
	})
	if err != nil || !token.Valid {
		return core.Actor{}, errInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return core.Actor{}, errInvalidToken
	}

	role, err := core.ParseRole(claims.Role)
	if err != nil {
		return core.Actor{}, errInvalidToken
	}

	return core.BuildActor(claims.Subject, role), nil
}

// authenticate resolves the bearer token into the caller actor.
func authenticate(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, errMissingToken.Error())
		}

		actor, err := ParseToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(localsActor, actor)

		return c.Next()
	}
}

func actorOf(c *fiber.Ctx) core.Actor {
	actor, _ := c.Locals(localsActor).(core.Actor)
	return actor
}
