// Package history exposes the per-order notification audit trail used by
// the admin order detail view.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
)

// Store lists persisted notification events of one type.
type Store interface {
	ListNotificationsByType(ctx context.Context, eventType string) ([]models.NotificationEvent, error)
}

type Reader struct {
	store  Store
	logger *slog.Logger
}

func NewReader(store Store, logger *slog.Logger) *Reader {
	return &Reader{store: store, logger: logger}
}

// History returns the status update events for one order, most recent
// first. The history is a non-critical read path: any fetch failure
// degrades to an empty list instead of an error.
func (r *Reader) History(ctx context.Context, orderID string) []models.NotificationEvent {
	events, err := r.store.ListNotificationsByType(ctx, models.TypeStatusUpdate)
	if err != nil {
		r.logger.Warn("Notification history fetch failed", "order_id", orderID, "error", err)
		return []models.NotificationEvent{}
	}

	matched := []models.NotificationEvent{}
	for _, ev := range events {
		if matchesOrder(ev.Data, orderID) {
			matched = append(matched, ev)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

// matchesOrder compares an event payload's orderId against the requested
// id. New records always store orderId as a string, but records written by
// the previous storefront may hold a JSON number, so both spellings of
// "42" must match.
func matchesOrder(data []byte, orderID string) bool {
	var probe struct {
		OrderID json.RawMessage `json:"orderId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || len(probe.OrderID) == 0 {
		return false
	}

	var s string
	if err := json.Unmarshal(probe.OrderID, &s); err == nil {
		return s == orderID
	}
	var n json.Number
	if err := json.Unmarshal(probe.OrderID, &n); err == nil {
		return n.String() == orderID
	}
	return false
}
