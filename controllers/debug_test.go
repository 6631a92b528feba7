package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/rabicho/rabicho-server/payments"
)

func setupDebug(store *fakeStore, isProduction bool) *fiber.App {
	app, r := newTestRouter()
	cfg := &config.Config{IsProduction: isProduction}
	reconciler := payments.NewReconciler(store, store, nil, nil)

	RegisterDebugController(r, cfg, DebugController{Invites: store, Reconciler: reconciler})
	return app
}

func TestDebugPayment_RequiresToken(t *testing.T) {
	store := newFakeStore()
	app := setupDebug(store, false)

	res := doRequest(t, app, http.MethodPost, "/debug/payment", map[string]interface{}{
		"conviteId": "inv-1",
		"planoId":   5,
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	if store.grants != 0 {
		t.Fatal("no entitlement should be granted without a token")
	}
	if store.invites["inv-1"].Paid {
		t.Fatal("invite must stay unpaid without a token")
	}
}

func TestDebugPayment_RunsReconciliation(t *testing.T) {
	store := newFakeStore()
	app := setupDebug(store, false)
	headers := map[string]string{"Authorization": "Bearer " + ownerToken(t)}

	res := doRequest(t, app, http.MethodPost, "/debug/payment", map[string]interface{}{
		"conviteId": "inv-1",
		"planoId":   5,
	}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var body struct {
		Message        string          `json:"message"`
		UpdatedConvite *billing.Invite `json:"updatedConvite"`
	}
	decodeBody(t, res, &body)

	if body.UpdatedConvite == nil || !body.UpdatedConvite.Paid || body.UpdatedConvite.AllowedResponses != 10 {
		t.Fatalf("unexpected invite state: %+v", body.UpdatedConvite)
	}
}

func TestDebugPayment_PlanFallback(t *testing.T) {
	store := newFakeStore()
	app := setupDebug(store, false)
	headers := map[string]string{"Authorization": "Bearer " + ownerToken(t)}

	res := doRequest(t, app, http.MethodPost, "/debug/payment", map[string]interface{}{
		"conviteId": "inv-1",
	}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	if !store.invites["inv-1"].Paid {
		t.Fatal("reconciliation should fall back to the invite's plan")
	}
}

func TestDebugPayment_DisabledInProduction(t *testing.T) {
	store := newFakeStore()
	app := setupDebug(store, true)
	headers := map[string]string{"Authorization": "Bearer " + ownerToken(t)}

	res := doRequest(t, app, http.MethodPost, "/debug/payment", map[string]interface{}{
		"conviteId": "inv-1",
		"planoId":   5,
	}, headers)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}

	if store.grants != 0 {
		t.Fatal("no entitlement should be granted in production")
	}
}

func TestDebugPayment_MissingConviteId(t *testing.T) {
	app := setupDebug(newFakeStore(), false)
	headers := map[string]string{"Authorization": "Bearer " + ownerToken(t)}

	res := doRequest(t, app, http.MethodPost, "/debug/payment", map[string]interface{}{}, headers)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}
