package diagnostics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/notifier"
)

type fakeOrders struct {
	orders map[string]*models.Order
	err    error
}

func (f *fakeOrders) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[id], nil
}

type fakeMessaging struct {
	calls    int
	lastTo   string
	lastBody string
	err      error
}

func (f *fakeMessaging) SendMessage(ctx context.Context, destination, body string) error {
	f.calls++
	f.lastTo = destination
	f.lastBody = body
	return f.err
}

type fakeEmail struct{ err error }

func (f *fakeEmail) SendStatusUpdate(ctx context.Context, order *models.Order, newStatus string, isGuest bool) error {
	return f.err
}

type fakeRecords struct {
	inserted int
	events   []*models.NotificationEvent
}

func (f *fakeRecords) InsertNotification(ctx context.Context, event *models.NotificationEvent) error {
	f.inserted++
	f.events = append(f.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(orders *fakeOrders, wa *fakeMessaging, adminPhone string) (*Harness, *fakeRecords) {
	records := &fakeRecords{}
	n := notifier.New(&fakeEmail{}, wa, records, 0, testLogger())
	return NewHarness(orders, n, wa, adminPhone, testLogger()), records
}

func Test_ConnectionTest(t *testing.T) {
	wa := &fakeMessaging{}
	h, _ := newHarness(&fakeOrders{}, wa, "+221770000000")

	result := h.TestConnection(context.Background())

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, wa.calls)
	assert.Equal(t, "+221770000000", wa.lastTo)
	assert.NotEmpty(t, wa.lastBody)
}

func Test_ConnectionTestProviderFailure(t *testing.T) {
	wa := &fakeMessaging{err: errors.New("auth failed")}
	h, _ := newHarness(&fakeOrders{}, wa, "+221770000000")

	result := h.TestConnection(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "auth failed")
}

func Test_ConnectionTestWithoutAdminContact(t *testing.T) {
	wa := &fakeMessaging{}
	h, _ := newHarness(&fakeOrders{}, wa, "")

	result := h.TestConnection(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, wa.calls)
}

func Test_DebugOrderRunsFullFanOut(t *testing.T) {
	order := &models.Order{
		ID:     "O7",
		Status: models.StatusShipped,
		Shipping: models.ShippingAddress{
			Phone: "+221700000000",
		},
	}
	wa := &fakeMessaging{}
	h, records := newHarness(&fakeOrders{orders: map[string]*models.Order{"O7": order}}, wa, "+221770000000")

	result, err := h.DebugOrder(context.Background(), "O7")

	assert.NoError(t, err)
	assert.Equal(t, 1, wa.calls)
	assert.Contains(t, wa.lastBody, "O7")
	assert.True(t, *result.WhatsApp)
	assert.True(t, result.Internal)
	assert.Equal(t, 1, records.inserted)
}

func Test_DebugOrderOfPendingOrderStaysInHistory(t *testing.T) {
	order := &models.Order{
		ID:     "O8",
		Status: models.StatusPending,
		Shipping: models.ShippingAddress{
			Phone: "+221700000000",
		},
	}
	wa := &fakeMessaging{}
	h, records := newHarness(&fakeOrders{orders: map[string]*models.Order{"O8": order}}, wa, "")

	_, err := h.DebugOrder(context.Background(), "O8")

	assert.NoError(t, err)
	assert.Len(t, records.events, 1)
	assert.Equal(t, models.TypeStatusUpdate, records.events[0].Type,
		"a replay must not land in the order-received stream")
}

func Test_DebugOrderUnknownID(t *testing.T) {
	h, _ := newHarness(&fakeOrders{orders: map[string]*models.Order{}}, &fakeMessaging{}, "")

	_, err := h.DebugOrder(context.Background(), "missing")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func Test_SendDirect(t *testing.T) {
	wa := &fakeMessaging{}
	h, _ := newHarness(&fakeOrders{}, wa, "")

	assert.NoError(t, h.SendDirect(context.Background(), "+221760000000", "ping"))
	assert.Equal(t, "+221760000000", wa.lastTo)
	assert.Equal(t, "ping", wa.lastBody)

	assert.Error(t, h.SendDirect(context.Background(), "", "ping"))

	wa.err = errors.New("unreachable")
	err := h.SendDirect(context.Background(), "+221760000000", "ping")
	assert.ErrorContains(t, err, "unreachable")
}
