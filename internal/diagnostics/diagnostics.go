// Package diagnostics is the admin troubleshooting harness: ad-hoc sends
// that reuse the production channel senders so an operator can tell a
// configuration problem from a provider outage. None of these operations
// are reachable outside admin surfaces.
package diagnostics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/notifier"
)

// OrderStore loads one order by id; nil, nil means not found.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// TestResult is the flat success/error shape surfaced to the admin UI.
type TestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Harness struct {
	orders     OrderStore
	notifier   *notifier.Notifier
	whatsapp   notifier.MessagingSender
	adminPhone string
	logger     *slog.Logger
}

func NewHarness(orders OrderStore, n *notifier.Notifier, whatsapp notifier.MessagingSender, adminPhone string, logger *slog.Logger) *Harness {
	return &Harness{
		orders:     orders,
		notifier:   n,
		whatsapp:   whatsapp,
		adminPhone: adminPhone,
		logger:     logger,
	}
}

// TestConnection sends a fixed diagnostic message to the configured admin
// contact and reports whether the messaging provider accepted it.
func (h *Harness) TestConnection(ctx context.Context) TestResult {
	if h.adminPhone == "" {
		return TestResult{Success: false, Error: "no admin contact configured"}
	}
	err := h.whatsapp.SendMessage(ctx, h.adminPhone, "🔧 KStores : test de connexion WhatsApp")
	if err != nil {
		h.logger.Error("Connection test failed", "error", err)
		return TestResult{Success: false, Error: err.Error()}
	}
	return TestResult{Success: true}
}

// DebugOrder replays the full notification fan-out for an existing order
// at its current status and returns the aggregated result. Replays are
// recorded as status updates regardless of the order's status.
func (h *Harness) DebugOrder(ctx context.Context, orderID string) (notifier.Result, error) {
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		return notifier.Result{}, fmt.Errorf("load order for debug: %w", err)
	}
	if order == nil {
		return notifier.Result{}, fmt.Errorf("order %s not found", orderID)
	}
	h.logger.Info("Debug fan-out requested", "order_id", orderID, "status", order.Status)
	return h.notifier.Replay(ctx, order)
}

// SendDirect pushes an arbitrary body straight through the messaging
// sender, surfacing the provider's raw error.
func (h *Harness) SendDirect(ctx context.Context, destination, body string) error {
	if destination == "" {
		return fmt.Errorf("destination is required")
	}
	return h.whatsapp.SendMessage(ctx, destination, body)
}
