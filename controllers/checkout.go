package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/providers/mercadopago"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/utils"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type CheckoutController struct {
	fx.In

	Invites InviteStore
	Api     mercadopago.Api
}

type checkoutRequest struct {
	InvitationId   string `json:"invitationId" validate:"required"`
	PurchaserEmail string `json:"purchaserEmail" validate:"omitempty,email"`
}

var (
	checkoutCurrency  string
	checkoutPublicUrl string
)

func RegisterCheckoutController(r *utils.Router, config *config.Config, c CheckoutController) {
	checkoutCurrency = config.Currency
	checkoutPublicUrl = config.PublicUrl

	r.Post("/checkout", c.createCheckout)
}

func (r *CheckoutController) createCheckout(c *fiber.Ctx) error {
	request := new(checkoutRequest)

	if err := c.BodyParser(request); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errors := validateStruct(*request); len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errors)
	}

	details, err := r.Invites.PlanDetails(c.Context(), request.InvitationId)
	if err != nil {
		switch {
		case errors.Is(err, repos.ErrPlanNotAssigned):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No plan assigned to this invite, select a plan first",
			})
		case errors.Is(err, repos.ErrInviteNotFound):
			return utils.StandardNotFound(c, "Invite not found")
		case errors.Is(err, repos.ErrPlanMissing):
			return utils.StandardNotFound(c, "Plan not found for this invite")
		default:
			return utils.StandardInternalError(c, err)
		}
	}

	preference, err := r.Api.CreatePreference(c.Context(), buildPreference(details, request.PurchaserEmail))
	if err != nil {
		log.Error().Err(err).Str("invite_id", request.InvitationId).Msg("Preference creation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout",
		})
	}

	if len(preference.Id) == 0 || len(preference.InitPoint) == 0 {
		log.Error().Str("invite_id", request.InvitationId).Msg("Preference response missing id or redirect url")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout",
		})
	}

	return c.JSON(fiber.Map{
		"preferenceId": preference.Id,
		"redirectUrl":  preference.InitPoint,
	})
}

// buildPreference embeds the invite and plan ids both in the metadata
// and in external_reference, so the webhook can recover context even
// when metadata propagation drops fields.
func buildPreference(details repos.PlanDetails, purchaserEmail string) mercadopago.PreferenceRequest {
	description := details.PlanDescription
	if len(description) == 0 {
		description = fmt.Sprintf("Convite com %d respostas", details.ResponseQuota)
	}

	title := details.PlanName
	if len(title) == 0 {
		title = "Plano de respostas"
	}

	request := mercadopago.PreferenceRequest{
		ExternalReference: details.InviteId,
		Metadata: map[string]interface{}{
			"convite_id": details.InviteId,
			"plano_id":   details.PlanId,
			"user_email": purchaserEmail,
		},
		Items: []mercadopago.Item{
			{
				Id:          details.InviteId,
				Title:       title,
				Description: description,
				Quantity:    1,
				UnitPrice:   details.Price,
				CurrencyId:  checkoutCurrency,
				CategoryId:  "payment",
			},
		},
		PaymentMethods: &mercadopago.PaymentMethods{Installments: 6},
		AutoReturn:     "approved",
		BackUrls: &mercadopago.BackUrls{
			Success: checkoutPublicUrl + "/?status=sucesso",
			Failure: checkoutPublicUrl + "/?status=falha",
			Pending: checkoutPublicUrl + "/?status=pendente",
		},
	}

	if len(purchaserEmail) > 0 {
		request.Payer = &mercadopago.Payer{Email: purchaserEmail}
	}

	return request
}
