package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/utils"
	"go.uber.org/fx"
)

type PlansController struct {
	fx.In

	Plans PlanCatalog
}

func RegisterPlansController(r *utils.Router, config *config.Config, c PlansController) {
	r.Get("/plans", c.listPlans)
}

func (r *PlansController) listPlans(c *fiber.Ctx) error {
	plans, err := r.Plans.List(c.Context())
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(plans)
}
