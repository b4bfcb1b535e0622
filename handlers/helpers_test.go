package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"marketplace/auth"
	"marketplace/events"
	"marketplace/handlers"
	"marketplace/models"
	"marketplace/realtime"
	"marketplace/recommend"
	"marketplace/routes"
	"marketplace/services"
	"marketplace/store"
	"marketplace/store/storetest"
)

func init() { gin.SetMode(gin.TestMode) }

type published struct {
	Room  string
	Event string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(_ context.Context, room, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{room, event})
	return nil
}

func (r *recordingPublisher) All() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

type fixedModel string

func (m fixedModel) Complete(context.Context, string) (string, error) { return string(m), nil }

type app struct {
	router    *gin.Engine
	store     *store.Store
	tokens    *auth.TokenManager
	hub       *realtime.Hub
	publisher *recordingPublisher
}

func newApp(t *testing.T) *app {
	s := storetest.New(t)
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 4*time.Hour)
	hub := realtime.NewHub()
	publisher := &recordingPublisher{}
	fanout := events.Fanout{hub, publisher}

	h := handlers.New(handlers.Options{
		Accounts:    services.NewAccounts(s, tokens),
		Catalog:     services.NewCatalog(s, 10),
		Orders:      services.NewOrders(s, fanout, 10),
		Recommender: recommend.NewService(s, fixedModel("vegetables")),
		Hub:         hub,
		Tokens:      tokens,
		CORSOrigin:  "*",
	})
	r := gin.New()
	routes.SetupRoutes(r, h, tokens)
	return &app{router: r, store: s, tokens: tokens, hub: hub, publisher: publisher}
}

func (a *app) user(t *testing.T, name string, role models.UserRole) (*models.User, string) {
	u := storetest.User(t, a.store, name, role)
	token, err := a.tokens.IssueAccess(u)
	require.NoError(t, err)
	return u, token
}

func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type message struct {
	Message string `json:"message"`
}

type orderReply struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}
