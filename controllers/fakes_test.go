package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/rabicho/rabicho-server/providers/mercadopago"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/utils"
)

// fakeStore backs both the controller store interfaces and the
// reconciler, mirroring the repo semantics including the sentinel
// errors.
type fakeStore struct {
	invites map[string]*billing.Invite
	plans   map[int64]*billing.Plan

	setPlanCalls int
	grants       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invites: map[string]*billing.Invite{
			"inv-1": {Id: "inv-1", Title: "Aniversário", PlanId: 5},
			"inv-2": {Id: "inv-2", Title: "Sem plano"},
		},
		plans: map[int64]*billing.Plan{
			5: {Id: 5, Name: "Festa", Description: "Convite com 10 respostas", ResponseQuota: 10, Price: 29.90},
		},
	}
}

func (f *fakeStore) GetInvite(ctx context.Context, id string) (*billing.Invite, error) {
	invite, ok := f.invites[id]
	if !ok {
		return nil, repos.ErrInviteNotFound
	}
	return invite, nil
}

func (f *fakeStore) GetInviteWithPlan(ctx context.Context, id string) (*billing.Invite, error) {
	invite, err := f.GetInvite(ctx, id)
	if err != nil {
		return nil, err
	}

	if invite.PlanId != 0 {
		invite.Plan = f.plans[invite.PlanId]
	}

	return invite, nil
}

func (f *fakeStore) PlanDetails(ctx context.Context, id string) (repos.PlanDetails, error) {
	invite, err := f.GetInviteWithPlan(ctx, id)
	if err != nil {
		return repos.PlanDetails{}, err
	}

	if invite.PlanId == 0 {
		return repos.PlanDetails{}, repos.ErrPlanNotAssigned
	}
	if invite.Plan == nil {
		return repos.PlanDetails{}, repos.ErrPlanMissing
	}

	return repos.PlanDetails{
		InviteId:        invite.Id,
		PlanId:          invite.PlanId,
		PlanName:        invite.Plan.Name,
		PlanDescription: invite.Plan.Description,
		ResponseQuota:   invite.Plan.ResponseQuota,
		Price:           invite.Plan.Price,
	}, nil
}

func (f *fakeStore) SetPlan(ctx context.Context, id string, planId int64) error {
	invite, ok := f.invites[id]
	if !ok {
		return repos.ErrInviteNotFound
	}

	invite.PlanId = planId
	f.setPlanCalls++
	return nil
}

func (f *fakeStore) ConsumeResponse(ctx context.Context, id string) (*billing.Invite, error) {
	invite, ok := f.invites[id]
	if !ok {
		return nil, repos.ErrInviteNotFound
	}

	if !invite.Paid {
		return nil, repos.ErrNotPaid
	}
	if invite.UsedResponses >= invite.AllowedResponses {
		return nil, repos.ErrQuotaExhausted
	}

	invite.UsedResponses++
	return invite, nil
}

func (f *fakeStore) GrantEntitlement(ctx context.Context, id string, quota int) error {
	invite, ok := f.invites[id]
	if !ok {
		return repos.ErrInviteNotFound
	}

	invite.Paid = true
	invite.AllowedResponses = quota
	invite.UsedResponses = 0
	f.grants++
	return nil
}

func (f *fakeStore) GetPlan(ctx context.Context, id int64) (*billing.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repos.ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakeStore) List(ctx context.Context) ([]billing.Plan, error) {
	plans := make([]billing.Plan, 0, len(f.plans))
	for _, plan := range f.plans {
		plans = append(plans, *plan)
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Price < plans[j].Price })
	return plans, nil
}

type fakeApi struct {
	payments map[string]*mercadopago.Payment

	preference *mercadopago.Preference
	prefErr    error

	createCalls    int
	lastPreference mercadopago.PreferenceRequest
}

func (f *fakeApi) CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	f.createCalls++
	f.lastPreference = req

	if f.prefErr != nil {
		return nil, f.prefErr
	}
	if f.preference != nil {
		return f.preference, nil
	}

	return &mercadopago.Preference{Id: "pref-1", InitPoint: "https://mp.example/init"}, nil
}

func (f *fakeApi) GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, fiber.ErrNotFound
	}
	return payment, nil
}

func newTestRouter() (*fiber.App, *utils.Router) {
	app := fiber.New()
	return app, utils.GetDefaultRouter(app)
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	return res
}

func decodeBody(t *testing.T, res *http.Response, out interface{}) {
	t.Helper()

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
