package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/auth"
	"marketplace/models"
	"marketplace/services"
	"marketplace/store"
	"marketplace/store/storetest"
)

type published struct {
	Room    string
	Event   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(_ context.Context, room, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{room, event, payload})
	return nil
}

func (r *recordingPublisher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recordingPublisher) All() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

type fixture struct {
	store     *store.Store
	publisher *recordingPublisher
	orders    *services.Orders
	catalog   *services.Catalog
	accounts  *services.Accounts
	tokens    *auth.TokenManager
}

func setup(t *testing.T) *fixture {
	s := storetest.New(t)
	publisher := &recordingPublisher{}
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 4*time.Hour)
	return &fixture{
		store:     s,
		publisher: publisher,
		orders:    services.NewOrders(s, publisher, 2),
		catalog:   services.NewCatalog(s, 2),
		accounts:  services.NewAccounts(s, tokens),
		tokens:    tokens,
	}
}

func callerOf(u *models.User) services.Caller {
	return services.Caller{ID: u.ID, Role: u.Role, Name: u.Name}
}
