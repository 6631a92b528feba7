package controllers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/utils"
)

// InviteStore is the slice of InviteRepo the controllers need. Kept as
// an interface so handler tests run against fakes.
type InviteStore interface {
	GetInvite(ctx context.Context, id string) (*billing.Invite, error)
	GetInviteWithPlan(ctx context.Context, id string) (*billing.Invite, error)
	PlanDetails(ctx context.Context, id string) (repos.PlanDetails, error)
	SetPlan(ctx context.Context, id string, planId int64) error
	ConsumeResponse(ctx context.Context, id string) (*billing.Invite, error)
}

type PlanCatalog interface {
	GetPlan(ctx context.Context, id int64) (*billing.Plan, error)
	List(ctx context.Context) ([]billing.Plan, error)
}

var validate = validator.New()

func validateStruct(s interface{}) []*utils.ErrorResponse {
	return utils.ValidateStruct(validate.Struct(s))
}
