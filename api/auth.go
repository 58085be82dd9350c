package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// Authenticator validates HS256 bearer tokens whose subject is a numeric user id.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (a *Authenticator) UserID(header string) (int64, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return 0, apperror.Auth("Authentication required")
	}

	token, err := a.parser.ParseWithClaims(strings.TrimSpace(raw), &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperror.Auth("Token expired")
		}
		return 0, apperror.Wrap(apperror.KindAuth, "Invalid token", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, apperror.Wrap(apperror.KindAuth, "Invalid token", err)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Wrap(apperror.KindAuth, "Invalid token", fmt.Errorf("subject %q is not a user id", sub))
	}
	return id, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.UserID(c.GetHeader("Authorization"))
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// OptionalAuth records the user when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := a.UserID(c.GetHeader("Authorization")); err == nil {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// userID returns the authenticated user or zero for anonymous requests.
func userID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
