package utils

import (
	"github.com/civic-india/api-go/models"
	"github.com/gin-gonic/gin"
)

type UserClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
}

type contextKey string

const (
	UserContextKey    contextKey = "user"
	AccountContextKey contextKey = "account"
)

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// GetAccount returns the database user loaded by the role middleware, or nil
// on routes that only went through token verification.
func GetAccount(c *gin.Context) *models.User {
	account, exists := c.Get(string(AccountContextKey))
	if !exists {
		return nil
	}
	if u, ok := account.(*models.User); ok {
		return u
	}
	return nil
}
