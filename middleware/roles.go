package middleware

import (
	"net/http"

	"github.com/civic-india/api-go/models"
	"github.com/civic-india/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireRole loads the requesting account and gates the route to the given
// roles. Role and active status come from the database on every request, so a
// deactivated account is locked out even with a still-valid token.
func RequireRole(db *gorm.DB, roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		claims := utils.GetUser(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			c.Abort()
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			c.Abort()
			return
		}

		if !user.Role.Valid() || !allowed[user.Role] {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized. Insufficient role."})
			c.Abort()
			return
		}

		c.Set(string(utils.AccountContextKey), &user)
		c.Next()
	}
}
