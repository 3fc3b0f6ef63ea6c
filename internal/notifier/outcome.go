package notifier

import "github.com/khalidIbrahima/kstores-sub002/internal/models"

const (
	channelEmail    = "email"
	channelWhatsApp = "whatsapp"
	channelInternal = "internal"
)

// Result is the aggregated outcome of one fan-out. Email and WhatsApp are
// nil when the channel was skipped for lack of contact info — a skipped
// channel is not a failed one. Internal reports whether the admin-facing
// record was persisted.
type Result struct {
	Email    *bool                 `json:"email"`
	WhatsApp *bool                 `json:"whatsapp"`
	Internal bool                  `json:"internal"`
	Errors   []models.ChannelError `json:"errors"`
}

// outcome accumulates per-channel results during a fan-out and finalizes
// them into a Result. Keeping the bookkeeping here keeps Notify itself
// down to the actual channel calls.
type outcome struct {
	email    *bool
	whatsapp *bool
	internal bool
	errors   []models.ChannelError
}

func newOutcome() *outcome {
	return &outcome{errors: []models.ChannelError{}}
}

// record stores one channel attempt. A nil err marks the channel as sent.
func (o *outcome) record(channel string, err error) {
	ok := err == nil
	switch channel {
	case channelEmail:
		o.email = &ok
	case channelWhatsApp:
		o.whatsapp = &ok
	}
	if err != nil {
		o.errors = append(o.errors, models.ChannelError{Type: channel, Error: err.Error()})
	}
}

// recordInternal tracks persistence of the admin-facing event. Customer
// record failures go through recordInternalError only; they do not clear
// the internal flag.
func (o *outcome) recordInternal(err error) {
	o.internal = err == nil
	if err != nil {
		o.errors = append(o.errors, models.ChannelError{Type: channelInternal, Error: err.Error()})
	}
}

func (o *outcome) recordInternalError(err error) {
	if err != nil {
		o.errors = append(o.errors, models.ChannelError{Type: channelInternal, Error: err.Error()})
	}
}

// sent reports whether a channel completed successfully; skipped counts as
// not sent.
func (o *outcome) sent(channel string) bool {
	switch channel {
	case channelEmail:
		return o.email != nil && *o.email
	case channelWhatsApp:
		return o.whatsapp != nil && *o.whatsapp
	}
	return false
}

// channelErrors returns a copy of the errors gathered so far, so neither
// the persisted payload nor the returned Result aliases the builder's
// slice.
func (o *outcome) channelErrors() []models.ChannelError {
	errs := make([]models.ChannelError, len(o.errors))
	copy(errs, o.errors)
	return errs
}

func (o *outcome) result() Result {
	return Result{
		Email:    o.email,
		WhatsApp: o.whatsapp,
		Internal: o.internal,
		Errors:   o.channelErrors(),
	}
}
