package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/payments"
	"github.com/rabicho/rabicho-server/providers/mercadopago"
	"github.com/rabicho/rabicho-server/utils"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type WebhookController struct {
	fx.In

	Api        mercadopago.Api
	Reconciler *payments.Reconciler
}

type webhookNotification struct {
	Type string `json:"type"`
	Data struct {
		Id interface{} `json:"id"`
	} `json:"data"`
}

var webhookSecret string

func RegisterWebhookController(r *utils.Router, config *config.Config, c WebhookController) {
	webhookSecret = config.MercadoPago.WebhookSecret

	r.Post("/webhooks/mercado-pago", c.handleNotification)
}

// handleNotification always acknowledges with 200: the processor
// redelivers on anything else, and an unprocessable event would be
// redelivered forever. Internal failures are logged, never surfaced.
func (r *WebhookController) handleNotification(c *fiber.Ctx) error {
	notification := new(webhookNotification)
	if err := json.Unmarshal(c.Body(), notification); err != nil {
		log.Warn().Err(err).Msg("Webhook body is not valid JSON")
		return c.JSON(fiber.Map{"received": true})
	}

	dataId := asString(notification.Data.Id)

	// Verification failures do not block processing: sandbox
	// notifications arrive unsigned, and rejecting them would also
	// drop real payments whenever the secret rotates.
	if len(webhookSecret) > 0 {
		if err := mercadopago.VerifySignature(webhookSecret, c.Get("x-signature"), c.Get("x-request-id"), dataId); err != nil {
			log.Warn().Err(err).Str("data_id", dataId).Msg("Webhook signature verification failed")
		}
	}

	switch notification.Type {
	case "payment":
		r.processPayment(c, dataId)
	default:
		log.Info().Str("type", notification.Type).Msg("Ignoring webhook event type")
	}

	return c.JSON(fiber.Map{"received": true})
}

func (r *WebhookController) processPayment(c *fiber.Ctx, dataId string) {
	if len(dataId) == 0 {
		log.Warn().Msg("Payment webhook without data.id")
		return
	}

	// The notification body is not trusted: fetch the payment record
	// from the processor and decide on that.
	payment, err := r.Api.GetPayment(c.Context(), dataId)
	if err != nil {
		log.Error().Err(err).Str("payment_id", dataId).Msg("Failed to fetch payment, waiting for redelivery")
		return
	}

	event := payments.FromPayment(payment)
	if !event.Approved() {
		log.Info().
			Str("payment_id", dataId).
			Str("status", event.Status).
			Msg("Payment not approved, skipping")
		return
	}

	if err := r.Reconciler.Process(c.Context(), event); err != nil {
		log.Error().Err(err).Str("payment_id", dataId).Msg("Entitlement reconciliation failed")
	}
}

func asString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
