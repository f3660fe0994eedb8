package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mailer := email.NewEmailService(&config.Config{}, logger.Discard())
	return NewDispatcher(client, mailer, logger.Discard()), client
}

func TestDispatcher_PushesEnvelope(t *testing.T) {
	d, client := newTestDispatcher(t)

	d.OrderPlaced(OrderEvent{OrderID: 5, Email: "buyer@example.com", Summary: "Parrot", Amount: "2500.00"})
	d.Wait()

	items, err := client.LRange(context.Background(), EventsKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(items[0]), &env))
	assert.Equal(t, EventOrderPlaced, env.Type)

	var data OrderEvent
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, uint(5), data.OrderID)
	assert.Equal(t, "Parrot", data.Summary)
}

func TestDispatcher_NewestFirst(t *testing.T) {
	d, client := newTestDispatcher(t)

	d.BookingStatusChanged(BookingEvent{BookingID: 1, Email: "a@example.com", Status: "confirmed"})
	d.Wait()
	d.PaymentConfirmed(OrderEvent{OrderID: 2, Email: "b@example.com"})
	d.Wait()

	items, err := client.LRange(context.Background(), EventsKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 2)

	var newest Envelope
	require.NoError(t, json.Unmarshal([]byte(items[0]), &newest))
	assert.Equal(t, EventPaymentConfirmed, newest.Type)
}

func TestDispatcher_SurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	d := NewDispatcher(client, email.NewEmailService(&config.Config{}, logger.Discard()), logger.Discard())

	assert.NotPanics(t, func() {
		d.OrderPlaced(OrderEvent{OrderID: 1, Email: "x@example.com"})
		d.Wait()
	})
}

func TestDispatcher_WithoutRedis(t *testing.T) {
	d := NewDispatcher(nil, email.NewEmailService(&config.Config{}, logger.Discard()), logger.Discard())
	d.OrderPlaced(OrderEvent{OrderID: 1, Email: "x@example.com"})
	d.Wait()
}
