package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KnownStatuses(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		cfg := For(s)
		assert.NotEmpty(t, cfg.Label, s)
		assert.NotEmpty(t, cfg.Emoji, s)
		assert.NotEmpty(t, cfg.Description, s)
		assert.NotEmpty(t, cfg.Color, s)
		assert.NotEqual(t, s, cfg.Label, "known statuses get a translated label")
	}

	assert.Equal(t, "Expédiée", For("shipped").Label)
}

func Test_UnknownStatusFallback(t *testing.T) {
	cfg := For("on_hold")

	assert.Equal(t, "on_hold", cfg.Label)
	assert.Equal(t, "📋", cfg.Emoji)
	assert.Equal(t, "Statut: on_hold", cfg.Description)
	assert.NotEmpty(t, cfg.Color)
}

func Test_LookupIsIdempotent(t *testing.T) {
	assert.Equal(t, For("shipped"), For("shipped"))
	assert.Equal(t, For("no-such-status"), For("no-such-status"))
}
