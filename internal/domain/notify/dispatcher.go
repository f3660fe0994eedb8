// internal/domain/notify/dispatcher.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	EventOrderPlaced          = "order.placed"
	EventPaymentConfirmed     = "order.payment_confirmed"
	EventBookingStatusChanged = "booking.status_changed"

	// EventsKey is the Redis list other workers consume events from
	EventsKey = "notifications:events"

	maxQueuedEvents = 1000
	dispatchTimeout = 15 * time.Second
)

// OrderEvent describes an order for buyer notifications
type OrderEvent struct {
	OrderID       uint   `json:"order_id"`
	Email         string `json:"email"`
	BuyerName     string `json:"buyer_name"`
	Summary       string `json:"summary"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
	Address       string `json:"address"`
}

// BookingEvent describes a booking whose status changed
type BookingEvent struct {
	BookingID   uint   `json:"booking_id"`
	Email       string `json:"email"`
	PetName     string `json:"pet_name"`
	ServiceName string `json:"service_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

// Envelope is the JSON document pushed onto EventsKey
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Dispatcher delivers notifications in the background. Callers never see
// delivery errors; they are logged.
type Dispatcher struct {
	redisClient *redis.Client
	mailer      *email.EmailService
	logger      *logrus.Logger
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher. redisClient may be nil, in which case
// events are only mailed.
func NewDispatcher(redisClient *redis.Client, mailer *email.EmailService, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		redisClient: redisClient,
		mailer:      mailer,
		logger:      logger,
	}
}

// OrderPlaced announces a newly committed order
func (d *Dispatcher) OrderPlaced(e OrderEvent) {
	d.dispatch(EventOrderPlaced, e, func(ctx context.Context) error {
		return d.mailer.SendOrderPlaced(ctx, e.Email, e.emailData())
	})
}

// PaymentConfirmed announces that a UPI order was marked paid
func (d *Dispatcher) PaymentConfirmed(e OrderEvent) {
	d.dispatch(EventPaymentConfirmed, e, func(ctx context.Context) error {
		return d.mailer.SendPaymentConfirmed(ctx, e.Email, e.emailData())
	})
}

// BookingStatusChanged announces a booking status transition
func (d *Dispatcher) BookingStatusChanged(e BookingEvent) {
	d.dispatch(EventBookingStatusChanged, e, func(ctx context.Context) error {
		return d.mailer.SendBookingStatus(ctx, e.Email, email.BookingData{
			PetName:     e.PetName,
			ServiceName: e.ServiceName,
			Date:        e.Date,
			Time:        e.Time,
			Status:      e.Status,
		})
	})
}

// Wait blocks until every dispatched notification has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(eventType string, data interface{}, send func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		log := d.logger.WithField("event", eventType)

		if err := d.publish(ctx, eventType, data); err != nil {
			log.WithError(err).Warn("failed to publish notification event")
		}

		if d.mailer != nil {
			if err := send(ctx); err != nil {
				log.WithError(err).Warn("failed to send notification email")
				return
			}
		}

		log.Debug("notification dispatched")
	}()
}

func (d *Dispatcher) publish(ctx context.Context, eventType string, data interface{}) error {
	if d.redisClient == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	payload, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: raw})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pipe := d.redisClient.TxPipeline()
	pipe.LPush(ctx, EventsKey, payload)
	pipe.LTrim(ctx, EventsKey, 0, maxQueuedEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push event: %w", err)
	}

	return nil
}

func (e OrderEvent) emailData() email.OrderData {
	return email.OrderData{
		BuyerName:     e.BuyerName,
		OrderID:       e.OrderID,
		Summary:       e.Summary,
		Amount:        e.Amount,
		PaymentMethod: e.PaymentMethod,
		PaymentStatus: e.PaymentStatus,
		Address:       e.Address,
	}
}
