package payments

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoInviteReference = errors.New("payment carries no invite reference")
	ErrQuotaUnresolved   = errors.New("could not resolve a response quota for payment")
)

const markerTtl = 48 * time.Hour

type InviteStore interface {
	GetInviteWithPlan(ctx context.Context, id string) (*billing.Invite, error)
	GrantEntitlement(ctx context.Context, id string, quota int) error
}

type PlanStore interface {
	GetPlan(ctx context.Context, id int64) (*billing.Plan, error)
}

type Notifier interface {
	SendPaymentConfirmation(to, inviteId string, quota int) error
}

// Reconciler turns one confirmed payment into an entitlement grant.
// The grant is an overwrite scoped by invite id, so replays of the same
// payment converge to the same row state. The redis marker only skips
// redundant work; correctness never depends on it.
type Reconciler struct {
	invites InviteStore
	plans   PlanStore
	markers *redis.Client
	mailer  Notifier
}

func NewReconciler(invites InviteStore, plans PlanStore, markers *redis.Client, mailer Notifier) *Reconciler {
	return &Reconciler{
		invites: invites,
		plans:   plans,
		markers: markers,
		mailer:  mailer,
	}
}

func (r *Reconciler) Process(ctx context.Context, event Event) error {
	inviteId := event.InviteId
	if len(inviteId) == 0 {
		// Metadata propagation is not reliable across all payment
		// methods; external_reference is set at checkout as a backstop.
		inviteId = event.ExternalReference
	}

	if len(inviteId) == 0 {
		return ErrNoInviteReference
	}

	if r.alreadyProcessed(ctx, event.PaymentId) {
		log.Info().
			Str("payment_id", event.PaymentId).
			Str("invite_id", inviteId).
			Msg("Payment already processed, skipping replay")
		return nil
	}

	quota, err := r.resolveQuota(ctx, event.PlanId, inviteId)
	if err != nil {
		return err
	}

	if err := r.invites.GrantEntitlement(ctx, inviteId, quota); err != nil {
		return err
	}

	log.Info().
		Str("payment_id", event.PaymentId).
		Str("invite_id", inviteId).
		Int("quota", quota).
		Msg("Entitlement granted")

	r.markProcessed(ctx, event.PaymentId)

	if r.mailer != nil && len(event.PayerEmail) > 0 {
		if err := r.mailer.SendPaymentConfirmation(event.PayerEmail, inviteId, quota); err != nil {
			log.Warn().Err(err).Str("invite_id", inviteId).Msg("Failed to send confirmation email")
		}
	}

	return nil
}

// resolveQuota prefers the metadata plan id and falls back to the plan
// stored on the invite itself.
func (r *Reconciler) resolveQuota(ctx context.Context, planId int64, inviteId string) (int, error) {
	if planId != 0 {
		plan, err := r.plans.GetPlan(ctx, planId)
		if err == nil {
			return plan.ResponseQuota, nil
		}

		log.Warn().
			Err(err).
			Int64("plan_id", planId).
			Str("invite_id", inviteId).
			Msg("Metadata plan lookup failed, falling back to invite plan")
	}

	invite, err := r.invites.GetInviteWithPlan(ctx, inviteId)
	if err != nil {
		return 0, err
	}

	if invite.Plan == nil {
		return 0, ErrQuotaUnresolved
	}

	return invite.Plan.ResponseQuota, nil
}

func (r *Reconciler) alreadyProcessed(ctx context.Context, paymentId string) bool {
	if r.markers == nil || len(paymentId) == 0 {
		return false
	}

	seen, err := r.markers.Exists(ctx, markerKey(paymentId)).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Replay marker lookup failed")
		return false
	}

	return seen > 0
}

func (r *Reconciler) markProcessed(ctx context.Context, paymentId string) {
	if r.markers == nil || len(paymentId) == 0 {
		return
	}

	if err := r.markers.Set(ctx, markerKey(paymentId), "1", markerTtl).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to write replay marker")
	}
}

func markerKey(paymentId string) string {
	return "payments:processed:" + paymentId
}
