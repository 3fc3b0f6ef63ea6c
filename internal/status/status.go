// Package status holds the static display configuration for order
// statuses: the label, emoji, description and accent color used both in
// notification message bodies and in the admin UI.
package status

// DisplayInfo describes how one order status is presented to a customer.
type DisplayInfo struct {
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// The storefront is French-speaking, so labels and descriptions are French.
var configs = map[string]DisplayInfo{
	"pending": {
		Label:       "En attente",
		Emoji:       "⏳",
		Description: "Votre commande est en attente de confirmation",
		Color:       "#f59e0b",
	},
	"processing": {
		Label:       "En préparation",
		Emoji:       "📦",
		Description: "Votre commande est en cours de préparation",
		Color:       "#3b82f6",
	},
	"shipped": {
		Label:       "Expédiée",
		Emoji:       "🚚",
		Description: "Votre commande a été expédiée",
		Color:       "#8b5cf6",
	},
	"delivered": {
		Label:       "Livrée",
		Emoji:       "✅",
		Description: "Votre commande a été livrée",
		Color:       "#10b981",
	},
	"cancelled": {
		Label:       "Annulée",
		Emoji:       "❌",
		Description: "Votre commande a été annulée",
		Color:       "#ef4444",
	},
}

// For returns the display configuration for a status. An unknown status is
// never an error: it gets a generic entry built from the raw string so the
// notification still reads sensibly.
func For(rawStatus string) DisplayInfo {
	if cfg, ok := configs[rawStatus]; ok {
		return cfg
	}
	return DisplayInfo{
		Label:       rawStatus,
		Emoji:       "📋",
		Description: "Statut: " + rawStatus,
		Color:       "#6b7280",
	}
}
