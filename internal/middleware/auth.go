package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/roles"
)

const (
	userEmailKey = "userEmail"
	rolesKey     = "roles"
)

// Claims is the identity asserted by the upstream identity provider
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores the session email and its resolved roles
func Auth(jwtSecret string, resolver *roles.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := validateToken(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		email := models.NormalizeEmail(claims.Email)
		c.Set(userEmailKey, email)
		c.Set(rolesKey, resolver.Resolve(email))
		c.Set("claims", claims)

		c.Next()
	}
}

func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("token carries no email")
	}

	return claims, nil
}

// GetUserEmail extracts the normalized session email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get(userEmailKey)
	if !exists {
		return ""
	}
	return email.(string)
}

// GetRoles extracts the resolved capability set of the session
func GetRoles(c *gin.Context) roles.Roles {
	r, exists := c.Get(rolesKey)
	if !exists {
		return roles.Roles{}
	}
	return r.(roles.Roles)
}

// RequireAdmin returns a middleware that requires an administrator
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRoles(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "administrator access required",
			})
			return
		}
		c.Next()
	}
}
