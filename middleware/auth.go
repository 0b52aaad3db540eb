package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/civic-india/api-go/utils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// extractToken looks for the signed token in the places clients send it:
// Authorization bearer header, x-auth-token header, then the token cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	if headerToken := c.GetHeader("x-auth-token"); headerToken != "" {
		return strings.TrimSpace(headerToken)
	}

	if cookieToken, err := c.Cookie("token"); err == nil {
		return cookieToken
	}

	return ""
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, ok := claims["userId"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}
		email, _ := claims["email"].(string)

		userClaims := &utils.UserClaims{
			UserID: uint(userID),
			Email:  email,
		}

		c.Set(string(utils.UserContextKey), userClaims)

		c.Next()
	}
}
