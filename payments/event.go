package payments

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rabicho/rabicho-server/providers/mercadopago"
)

// Event is the canonical shape of one confirmed payment. All known
// historical metadata key spellings are folded into it up front, so the
// reconciler never touches the raw metadata bag.
type Event struct {
	PaymentId         string
	Status            string
	DateApproved      *time.Time
	ExternalReference string
	InviteId          string
	PlanId            int64
	PayerEmail        string
}

// Mercado Pago rewrites camelCase metadata keys to snake_case, and
// older checkout versions sent different names. Every spelling seen in
// production is listed here.
var (
	inviteKeys = []string{"convite_id", "conviteId", "invitation_id", "invite_id"}
	planKeys   = []string{"plano_id", "planoId", "plan_id"}
	emailKeys  = []string{"user_email", "userEmail", "payer_email"}
)

func FromPayment(payment *mercadopago.Payment) Event {
	return Event{
		PaymentId:         strconv.FormatInt(payment.Id, 10),
		Status:            payment.Status,
		DateApproved:      payment.DateApproved,
		ExternalReference: payment.ExternalReference,
		InviteId:          metadataString(payment.Metadata, inviteKeys),
		PlanId:            metadataInt(payment.Metadata, planKeys),
		PayerEmail:        metadataString(payment.Metadata, emailKeys),
	}
}

// Approved models the two settlement flows: card payments carry an
// explicit approved status, instant transfers only set date_approved.
func (e Event) Approved() bool {
	return e.Status == "approved" || e.DateApproved != nil
}

func metadataString(metadata map[string]interface{}, keys []string) string {
	for _, key := range keys {
		switch v := metadata[key].(type) {
		case string:
			if s := strings.TrimSpace(v); len(s) > 0 {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func metadataInt(metadata map[string]interface{}, keys []string) int64 {
	for _, key := range keys {
		switch v := metadata[key].(type) {
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return id
			}
		case json.Number:
			if id, err := v.Int64(); err == nil {
				return id
			}
		case float64:
			return int64(v)
		}
	}
	return 0
}
