package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/uptrace/bun"
)

var ErrPlanNotFound = errors.New("plan not found")

type PlanRepo struct {
	db *bun.DB
}

func NewPlanRepo(db *bun.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

func (c *PlanRepo) GetPlan(ctx context.Context, id int64) (*billing.Plan, error) {
	plan := new(billing.Plan)

	err := c.db.NewSelect().Model(plan).Where("plano.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}

		return nil, err
	}

	return plan, nil
}

func (c *PlanRepo) List(ctx context.Context) ([]billing.Plan, error) {
	plans := make([]billing.Plan, 0)

	err := c.db.NewSelect().Model(&plans).Order("preco ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return plans, nil
}
