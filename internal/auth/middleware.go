package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"chesslounge/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middlewares.
const (
	ContextUserID = "userID"
	ContextClaims = "claims"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header is required"})
			return
		}

		claims, err := signer.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.ID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// OptionalAuth inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := signer.ParseToken(tokenString); err == nil {
				c.Set(ContextUserID, claims.ID)
				c.Set(ContextClaims, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the id set by RequireAuth or OptionalAuth.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// SharedSecret guards operator endpoints with the X-Refresh-Token header. An empty secret
// leaves the route open.
func SharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-Refresh-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Operator access required"})
			return
		}
		c.Next()
	}
}
