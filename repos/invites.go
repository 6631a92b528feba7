package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/uptrace/bun"
)

var (
	ErrInviteNotFound  = errors.New("invite not found")
	ErrPlanNotAssigned = errors.New("invite has no plan assigned")
	ErrPlanMissing     = errors.New("plan referenced by invite does not exist")
	ErrNotPaid         = errors.New("invite is not paid")
	ErrQuotaExhausted  = errors.New("response quota exhausted")
)

// PlanDetails is the checkout view of an invite and its selected plan.
type PlanDetails struct {
	InviteId        string
	PlanId          int64
	PlanName        string
	PlanDescription string
	ResponseQuota   int
	Price           float64
}

type InviteRepo struct {
	db *bun.DB
}

func NewInviteRepo(db *bun.DB) *InviteRepo {
	return &InviteRepo{db: db}
}

func (c *InviteRepo) GetInvite(ctx context.Context, id string) (*billing.Invite, error) {
	invite := new(billing.Invite)

	err := c.db.NewSelect().Model(invite).Where("convite.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}

		return nil, err
	}

	return invite, nil
}

func (c *InviteRepo) GetInviteWithPlan(ctx context.Context, id string) (*billing.Invite, error) {
	invite := new(billing.Invite)

	err := c.db.NewSelect().Model(invite).Relation("Plan").Where("convite.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}

		return nil, err
	}

	return invite, nil
}

// PlanDetails resolves the invite's selected plan and its terms. The
// three failure modes stay distinguishable: unknown invite, no plan
// selected yet, and a dangling plan reference.
func (c *InviteRepo) PlanDetails(ctx context.Context, id string) (PlanDetails, error) {
	invite, err := c.GetInviteWithPlan(ctx, id)
	if err != nil {
		return PlanDetails{}, err
	}

	if invite.PlanId == 0 {
		return PlanDetails{}, ErrPlanNotAssigned
	}

	if invite.Plan == nil {
		return PlanDetails{}, ErrPlanMissing
	}

	return PlanDetails{
		InviteId:        invite.Id,
		PlanId:          invite.PlanId,
		PlanName:        invite.Plan.Name,
		PlanDescription: invite.Plan.Description,
		ResponseQuota:   invite.Plan.ResponseQuota,
		Price:           invite.Plan.Price,
	}, nil
}

func (c *InviteRepo) SetPlan(ctx context.Context, id string, planId int64) error {
	res, err := c.db.NewUpdate().Model((*billing.Invite)(nil)).
		Set("plano_id = ?", planId).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrInviteNotFound
	}

	return nil
}

// GrantEntitlement marks the invite paid and overwrites the quota
// counters. An overwrite rather than an increment, so webhook replays
// converge to the same state.
func (c *InviteRepo) GrantEntitlement(ctx context.Context, id string, quota int) error {
	res, err := c.db.NewUpdate().Model((*billing.Invite)(nil)).
		Set("pago = TRUE").
		Set("respostas_permitidas = ?", quota).
		Set("respostas_utilizadas = 0").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrInviteNotFound
	}

	return nil
}

// ConsumeResponse admits one guest response against the paid quota in
// a single guarded update. When nothing matches, the invite is re-read
// to tell the caller why.
func (c *InviteRepo) ConsumeResponse(ctx context.Context, id string) (*billing.Invite, error) {
	invite := new(billing.Invite)

	res, err := c.db.NewUpdate().Model(invite).
		Set("respostas_utilizadas = respostas_utilizadas + 1").
		Where("id = ?", id).
		Where("pago = TRUE").
		Where("respostas_utilizadas < respostas_permitidas").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, _ := res.RowsAffected(); rows > 0 {
		return invite, nil
	}

	existing, err := c.GetInvite(ctx, id)
	if err != nil {
		return nil, err
	}

	if !existing.Paid {
		return nil, ErrNotPaid
	}

	return nil, ErrQuotaExhausted
}
