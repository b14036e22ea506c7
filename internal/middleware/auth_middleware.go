package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func parseToken(c *gin.Context) (jwt.MapClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) error {
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return fmt.Errorf("user ID missing from token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("malformed user ID in token")
	}

	c.Set("user_id", userID)
	if email, ok := claims["email"].(string); ok {
		c.Set("user_email", email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
	return nil
}

func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   http.StatusText(http.StatusUnauthorized),
				"message": err.Error(),
			})
			return
		}
		if err := setIdentity(c, claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   http.StatusText(http.StatusUnauthorized),
				"message": err.Error(),
			})
			return
		}
		c.Next()
	}
}

// OptionalJWTMiddleware resolves the caller's identity when a valid token is
// present and stays silent otherwise. Used on public listings so signed-in
// users can see their own pending submissions.
func OptionalJWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseToken(c); err == nil {
			_ = setIdentity(c, claims)
		}
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   http.StatusText(http.StatusForbidden),
				"message": "Admin access required.",
			})
			return
		}
		c.Next()
	}
}
