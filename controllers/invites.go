package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/utils"
	"go.uber.org/fx"
)

type InvitesController struct {
	fx.In

	Invites InviteStore
	Plans   PlanCatalog
}

type selectPlanRequest struct {
	PlanId int64 `json:"planId" validate:"required,gt=0"`
}

var ownerRoute = utils.JwtMiddlewareConfig{
	ReadFrom: "header",
	Subject:  "access",
	Scopes:   []string{"basic"},
}

func RegisterInvitesController(r *utils.Router, config *config.Config, c InvitesController) {
	invites := r.Group("/invites")

	invites.Get("/:id/plan", c.checkPlan)
	invites.Put("/:id/plan", utils.Protected(ownerRoute), c.selectPlan)
	invites.Get("/:id/entitlement", c.entitlement)
	invites.Post("/:id/responses", c.consumeResponse)
}

func (r *InvitesController) checkPlan(c *fiber.Ctx) error {
	invite, err := r.Invites.GetInviteWithPlan(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repos.ErrInviteNotFound) {
			return utils.StandardNotFound(c, "Invite not found")
		}

		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":     invite.Id,
		"planId": invite.PlanId,
		"plan":   invite.Plan,
	})
}

func (r *InvitesController) selectPlan(c *fiber.Ctx) error {
	request := new(selectPlanRequest)

	if err := c.BodyParser(request); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errors := validateStruct(*request); len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errors)
	}

	if _, err := r.Plans.GetPlan(c.Context(), request.PlanId); err != nil {
		if errors.Is(err, repos.ErrPlanNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown plan",
			})
		}

		return utils.StandardInternalError(c, err)
	}

	if err := r.Invites.SetPlan(c.Context(), c.Params("id"), request.PlanId); err != nil {
		if errors.Is(err, repos.ErrInviteNotFound) {
			return utils.StandardNotFound(c, "Invite not found")
		}

		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (r *InvitesController) entitlement(c *fiber.Ctx) error {
	invite, err := r.Invites.GetInvite(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repos.ErrInviteNotFound) {
			return utils.StandardNotFound(c, "Invite not found")
		}

		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"paid":             invite.Paid,
		"allowedResponses": invite.AllowedResponses,
		"usedResponses":    invite.UsedResponses,
	})
}

func (r *InvitesController) consumeResponse(c *fiber.Ctx) error {
	invite, err := r.Invites.ConsumeResponse(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, repos.ErrInviteNotFound):
			return utils.StandardNotFound(c, "Invite not found")
		case errors.Is(err, repos.ErrNotPaid):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "Invite is not paid",
			})
		case errors.Is(err, repos.ErrQuotaExhausted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Response quota exhausted",
			})
		default:
			return utils.StandardInternalError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"remaining": invite.AllowedResponses - invite.UsedResponses,
	})
}
