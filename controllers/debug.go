package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/payments"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/utils"
	"go.uber.org/fx"
)

type DebugController struct {
	fx.In

	Invites    InviteStore
	Reconciler *payments.Reconciler
}

type debugPaymentRequest struct {
	ConviteId string `json:"conviteId" validate:"required"`
	PlanoId   int64  `json:"planoId"`
}

var debugDisabled bool

func RegisterDebugController(r *utils.Router, config *config.Config, c DebugController) {
	debugDisabled = config.IsProduction

	r.Post("/debug/payment", utils.Protected(ownerRoute), c.simulatePayment)
}

// simulatePayment runs the real reconciliation path against a
// synthesized approved payment. Test tooling only.
func (r *DebugController) simulatePayment(c *fiber.Ctx) error {
	if debugDisabled {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not available in production",
		})
	}

	request := new(debugPaymentRequest)

	if err := c.BodyParser(request); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errors := validateStruct(*request); len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errors)
	}

	now := time.Now()
	event := payments.Event{
		PaymentId:         "debug_" + strconv.FormatInt(now.UnixNano(), 10),
		Status:            "approved",
		DateApproved:      &now,
		ExternalReference: request.ConviteId,
		InviteId:          request.ConviteId,
		PlanId:            request.PlanoId,
	}

	if err := r.Reconciler.Process(c.Context(), event); err != nil {
		return utils.StandardInternalError(c, err)
	}

	invite, err := r.Invites.GetInvite(c.Context(), request.ConviteId)
	if err != nil {
		if errors.Is(err, repos.ErrInviteNotFound) {
			return utils.StandardNotFound(c, "Invite not found")
		}

		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":        "Debug payment processed",
		"updatedConvite": invite,
	})
}
