package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"marketplace/auth"
)

// Realtime upgrades to a websocket for an authenticated user. Browsers
// cannot set headers on a websocket handshake, so ?token is accepted too.
func (h *Handler) Realtime(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = auth.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	claims, err := h.tokens.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written an error response
		log.WithError(err).WithField("user", claims.UserID).Warn("websocket upgrade failed")
		return
	}
	h.hub.Serve(conn, claims.UserID)
}
