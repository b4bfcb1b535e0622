package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	rooms []string
	err   error
}

func (r *recordingSink) Publish(_ context.Context, room, _ string, _ any) error {
	r.rooms = append(r.rooms, room)
	return r.err
}

func TestFanoutReachesEverySink(t *testing.T) {
	broken := &recordingSink{err: errors.New("down")}
	healthy := &recordingSink{}

	err := Fanout{broken, healthy}.Publish(context.Background(), "room-1", NewOrder, nil)
	assert.EqualError(t, err, "down")
	assert.Equal(t, []string{"room-1"}, broken.rooms)
	assert.Equal(t, []string{"room-1"}, healthy.rooms)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Publish(context.Background(), "r", OrderDelete, "id"))
}

func TestBuildPublishing(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := buildPublishing("d-1", OrderDelete, "order-9", at)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, OrderDelete, msg.Type)
	assert.Equal(t, "d-1", msg.Headers["room"])
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, "order.orderDelete", RoutingKey(OrderDelete))

	var env struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, OrderDelete, env.Event)
	assert.Equal(t, "order-9", env.Data)
}

type pendingConfirm chan bool

func (p pendingConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case ack := <-p:
		return ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type scriptedChannel struct {
	mu       sync.Mutex
	confirms []pendingConfirm
	keys     []string
}

func (s *scriptedChannel) publish(_ context.Context, _, key string, _ amqp.Publishing) (confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conf := make(pendingConfirm, 1)
	s.confirms = append(s.confirms, conf)
	s.keys = append(s.keys, key)
	return conf, nil
}

// resolve answers the n-th publish once it has been made
func (s *scriptedChannel) resolve(t *testing.T, n int, ack bool) {
	t.Helper()
	var conf pendingConfirm
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.confirms) > n {
			conf = s.confirms[n]
			return true
		}
		return false
	}, time.Second, time.Millisecond)
	conf <- ack
}

func TestAMQPMirrorMatchesEachPublishToItsOwnConfirm(t *testing.T) {
	ch := &scriptedChannel{}
	m := &AMQPMirror{exchange: "x", channel: ch}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	err := m.Publish(ctx, "d-1", NewOrder, "first")
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the first message's nack lands after its publisher gave up
	ch.resolve(t, 0, false)

	done := make(chan error, 1)
	go func() { done <- m.Publish(context.Background(), "c-1", OrderUpdate, "second") }()
	ch.resolve(t, 1, true)
	assert.NoError(t, <-done)

	go func() { done <- m.Publish(context.Background(), "d-1", OrderDelete, "third") }()
	ch.resolve(t, 2, false)
	assert.EqualError(t, <-done, "publish NACK from broker")

	assert.Equal(t, []string{"order.newOrder", "order.orderUpdate", "order.orderDelete"}, ch.keys)
}
