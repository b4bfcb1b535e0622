// Package handlers maps HTTP requests onto the marketplace services and
// service errors onto JSON responses.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"marketplace/apperror"
	"marketplace/auth"
	"marketplace/realtime"
	"marketplace/recommend"
	"marketplace/services"
)

type Handler struct {
	accounts    *services.Accounts
	catalog     *services.Catalog
	orders      *services.Orders
	recommender *recommend.Service
	hub         *realtime.Hub
	tokens      *auth.TokenManager

	cookieSecure bool
	upgrader     websocket.Upgrader
}

type Options struct {
	Accounts     *services.Accounts
	Catalog      *services.Catalog
	Orders       *services.Orders
	Recommender  *recommend.Service
	Hub          *realtime.Hub
	Tokens       *auth.TokenManager
	CookieSecure bool
	CORSOrigin   string
}

func New(opts Options) *Handler {
	return &Handler{
		accounts:     opts.Accounts,
		catalog:      opts.Catalog,
		orders:       opts.Orders,
		recommender:  opts.Recommender,
		hub:          opts.Hub,
		tokens:       opts.Tokens,
		cookieSecure: opts.CookieSecure,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.CORSOrigin),
		},
	}
}

func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowed == "" || allowed == "*" || origin == "" || origin == allowed
	}
}

// respondError writes err as {"message": ...}. Internal failures are logged
// and reported with a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"message": apperror.MessageOf(err)})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}
