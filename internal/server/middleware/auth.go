// Package middleware carries the authentication and authorization layers
// applied in front of the farm-data routes.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/domain/models"
)

const identityKey = "identity"

// UserFinder looks up the account behind a verified token subject. A nil
// user with a nil error means the account no longer exists.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Protect verifies the bearer token, loads the account, and attaches the
// resulting identity to the request. Every failure is a uniform 401.
func Protect(secret string, users UserFinder, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "you are not logged in, please log in to get access")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid token or token expired")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			unauthorized(c, "invalid token or token expired")
			return
		}

		user, err := users.FindUserByID(c.Request.Context(), subject)
		if err != nil {
			logger.Error("user lookup failed during auth", zap.Error(err))
			unauthorized(c, "unable to verify credentials")
			return
		}
		if user == nil {
			unauthorized(c, "the user belonging to this token no longer exists")
			return
		}
		if !user.Active {
			unauthorized(c, "your account has been deactivated")
			return
		}

		SetIdentity(c, models.Identity{UserID: subject, Role: user.Role})
		c.Next()
	}
}

// RestrictTo allows only the listed roles past it. Must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !slices.Contains(roles, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "you do not have permission to perform this action",
			})
			return
		}
		c.Next()
	}
}

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the verified identity attached by Protect.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": message,
	})
}
