package middleware

import (
	"net/http"

	"teams-pollbot/internal/services"
	"teams-pollbot/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SharedSecretMiddleware guards body-less endpoints. The Authorization
// header must hold the shared secret or the signature of an empty body.
func SharedSecretMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.Authenticate(nil, c.GetHeader("Authorization")) {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		c.Next()
	}
}
