package handlers

import (
	"github.com/RaysoLee/mindreshape/internal/models"

	"github.com/gin-gonic/gin"
)

// UserContextKey is where the user-loader middleware stores the
// authenticated user.
const UserContextKey = "user"

// CurrentUser returns the authenticated user from the request context,
// nil for guests.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
