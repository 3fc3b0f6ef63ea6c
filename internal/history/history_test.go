package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
)

type fakeStore struct {
	events []models.NotificationEvent
	err    error
}

func (f *fakeStore) ListNotificationsByType(ctx context.Context, eventType string) ([]models.NotificationEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.NotificationEvent
	for _, ev := range f.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(id uint, raw string, createdAt time.Time) models.NotificationEvent {
	return models.NotificationEvent{
		ID:        id,
		Type:      models.TypeStatusUpdate,
		Data:      []byte(raw),
		CreatedAt: createdAt,
	}
}

func Test_HistoryMatchesStringAndNumericIDs(t *testing.T) {
	now := time.Now()
	store := &fakeStore{events: []models.NotificationEvent{
		event(1, `{"orderId":"42","newStatus":"shipped"}`, now.Add(-2*time.Hour)),
		event(2, `{"orderId":42,"newStatus":"delivered"}`, now.Add(-time.Hour)),
		event(3, `{"orderId":"7","newStatus":"shipped"}`, now),
	}}
	reader := NewReader(store, testLogger())

	got := reader.History(context.Background(), "42")

	assert.Len(t, got, 2, "both spellings of 42 must match")
	assert.Equal(t, uint(2), got[0].ID, "most recent first")
	assert.Equal(t, uint(1), got[1].ID)
}

func Test_HistoryUnknownOrderIsEmpty(t *testing.T) {
	store := &fakeStore{events: []models.NotificationEvent{
		event(1, `{"orderId":"42","newStatus":"shipped"}`, time.Now()),
	}}
	reader := NewReader(store, testLogger())

	got := reader.History(context.Background(), "does-not-exist")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_HistoryFetchFailureDegradesToEmpty(t *testing.T) {
	reader := NewReader(&fakeStore{err: errors.New("connection reset")}, testLogger())

	got := reader.History(context.Background(), "42")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_HistoryIgnoresOtherEventTypesAndBadPayloads(t *testing.T) {
	now := time.Now()
	store := &fakeStore{events: []models.NotificationEvent{
		event(1, `{"orderId":"42"}`, now),
		{ID: 2, Type: models.TypeOrderReceived, Data: []byte(`{"orderId":"42"}`), CreatedAt: now},
		event(3, `not json`, now),
		event(4, `{}`, now),
	}}
	reader := NewReader(store, testLogger())

	got := reader.History(context.Background(), "42")

	assert.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func Test_HistoryIsRestartable(t *testing.T) {
	store := &fakeStore{events: []models.NotificationEvent{
		event(1, `{"orderId":"42"}`, time.Now()),
	}}
	reader := NewReader(store, testLogger())

	first := reader.History(context.Background(), "42")
	second := reader.History(context.Background(), "42")

	assert.Equal(t, first, second)
}
