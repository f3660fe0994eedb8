package booking_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/booking"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/pkg/email"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc        *booking.BookingService
	dispatcher *notify.Dispatcher
	redis      *redis.Client
	service    *booking.Service
	center     booking.ServiceCenter
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.Discard()
	dispatcher := notify.NewDispatcher(rdb, email.NewEmailService(&config.Config{}, log), log)
	svc := booking.NewBookingService(db, dispatcher, log)

	service, err := svc.CreateService("Nail Trimming", "Quick and gentle.", "", 1)
	require.NoError(t, err)

	center := booking.ServiceCenter{Name: "Koramangala", Address: "80 Feet Road"}
	require.NoError(t, db.Create(&center).Error)

	return &fixture{svc: svc, dispatcher: dispatcher, redis: rdb, service: service, center: center}
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

func request(serviceID uint) *booking.CreateBookingRequest {
	return &booking.CreateBookingRequest{
		ServiceID:   serviceID,
		Email:       "owner@example.com",
		PetName:     "Coco",
		PetType:     "Dog",
		BookingDate: tomorrow(),
		BookingTime: "10:30",
	}
}

func TestCreateService_DerivesSlug(t *testing.T) {
	f := setup(t)
	assert.Equal(t, "nail-trimming", f.service.Slug)
	assert.Equal(t, "fas fa-paw", f.service.IconClass)

	got, err := f.svc.GetService("nail-trimming")
	require.NoError(t, err)
	assert.Equal(t, f.service.ID, got.ID)

	_, err = f.svc.GetService("missing")
	assert.ErrorIs(t, err, booking.ErrServiceNotFound)
}

func TestListServices_PagesOfSix(t *testing.T) {
	f := setup(t)
	for _, title := range []string{"Bath", "Boarding", "Daycare", "Dental", "Vaccination", "Walking"} {
		_, err := f.svc.CreateService(title, "", "", 2)
		require.NoError(t, err)
	}

	page1, err := f.svc.ListServices(1)
	require.NoError(t, err)
	require.Len(t, page1.Services, 6)
	assert.Equal(t, "Nail Trimming", page1.Services[0].Title)
	assert.Equal(t, "Bath", page1.Services[1].Title)
	assert.True(t, page1.Pagination.HasNext)

	page2, err := f.svc.ListServices(2)
	require.NoError(t, err)
	require.Len(t, page2.Services, 1)
	assert.Equal(t, "Walking", page2.Services[0].Title)
}

func TestCreateBooking_CenterRequiresCenter(t *testing.T) {
	f := setup(t)

	req := request(f.service.ID)
	req.ServiceLocation = "center"
	_, err := f.svc.CreateBooking(1, req)
	assert.ErrorIs(t, err, booking.ErrInvalidBooking)

	missing := uint(999)
	req.ServiceCenterID = &missing
	_, err = f.svc.CreateBooking(1, req)
	assert.ErrorIs(t, err, booking.ErrCenterNotFound)

	req.ServiceCenterID = &f.center.ID
	b, err := f.svc.CreateBooking(1, req)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.LocationCenter, b.ServiceLocation)
}

func TestCreateBooking_HomeRequiresAddressAndContact(t *testing.T) {
	f := setup(t)

	req := request(f.service.ID)
	req.ServiceLocation = "home"
	req.HomeAddress = "12 Lake View"
	_, err := f.svc.CreateBooking(1, req)
	assert.ErrorIs(t, err, booking.ErrInvalidBooking)

	req.ContactNumber = "9999988888"
	b, err := f.svc.CreateBooking(1, req)
	require.NoError(t, err)
	assert.Nil(t, b.ServiceCenterID)
}

func TestCreateBooking_RejectsBadInput(t *testing.T) {
	f := setup(t)

	cases := map[string]func(*booking.CreateBookingRequest){
		"location": func(r *booking.CreateBookingRequest) { r.ServiceLocation = "moon" },
		"date":     func(r *booking.CreateBookingRequest) { r.BookingDate = "31/12/2030" },
		"past":     func(r *booking.CreateBookingRequest) { r.BookingDate = "2001-01-01" },
		"time":     func(r *booking.CreateBookingRequest) { r.BookingTime = "25:99" },
	}
	for name, mutate := range cases {
		req := request(f.service.ID)
		req.ServiceLocation = "center"
		req.ServiceCenterID = &f.center.ID
		mutate(req)
		_, err := f.svc.CreateBooking(1, req)
		assert.ErrorIs(t, err, booking.ErrInvalidBooking, name)
	}

	_, err := f.svc.CreateBooking(1, request(4040))
	assert.ErrorIs(t, err, booking.ErrServiceNotFound)
}

func TestUpdateStatus_NotifiesOnChange(t *testing.T) {
	f := setup(t)

	req := request(f.service.ID)
	req.ServiceLocation = "center"
	req.ServiceCenterID = &f.center.ID
	b, err := f.svc.CreateBooking(7, req)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(b.ID, "teleported")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(b.ID, booking.StatusPending)
	require.NoError(t, err)
	f.dispatcher.Wait()

	updated, err := f.svc.UpdateStatus(b.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	f.dispatcher.Wait()
	assert.Equal(t, booking.StatusConfirmed, updated.Status)

	items, err := f.redis.LRange(context.Background(), notify.EventsKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 1)

	var env notify.Envelope
	require.NoError(t, json.Unmarshal([]byte(items[0]), &env))
	assert.Equal(t, notify.EventBookingStatusChanged, env.Type)

	var event notify.BookingEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, "confirmed", event.Status)
	assert.Equal(t, "Nail Trimming", event.ServiceName)

	bookings, err := f.svc.ListUserBookings(7)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.NotNil(t, bookings[0].ServiceCenter)
	assert.Equal(t, "Koramangala", bookings[0].ServiceCenter.Name)

	_, err = f.svc.UpdateStatus(555, booking.StatusCancelled)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}
