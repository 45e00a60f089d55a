package handlers

import (
	"brotodesk/internal/api/middleware"
	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. Field rules are checked by the
// services, so only malformed JSON fails here.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(services.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// currentActor returns the authenticated caller, failing the request when
// the route is missing Authenticate.
func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(services.NewUnauthorizedError("Not authenticated"))
		return services.Actor{}, false
	}
	return actor, true
}
