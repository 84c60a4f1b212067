package http

import (
	"encoding/json"
	stdhttp "net/http"
	"testing"

	drawerUC "backed-protocol/internal/usecase/drawer"
	"backed-protocol/pkg/id"
)

func TestDrawerBalance_Handler(t *testing.T) {
	env := newTestEnv(t)
	borrower := id.NewID32()
	env.createLoan(t, borrower)
	env.underwrite(t, "1", id.NewID32())

	c, rec := env.request(stdhttp.MethodGet, "/drawer/dai", "", nil, "asset", "dai")
	if err := env.drawer.GetBalance(c); err != nil {
		t.Fatalf("GetBalance error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto drawerUC.BalanceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	// 1% of 50.5e18.
	if dto.Balance != "505000000000000000" {
		t.Fatalf("balance = %s, want 505000000000000000", dto.Balance)
	}
}

func TestDrawerWithdraw_Handler(t *testing.T) {
	env := newTestEnv(t)
	borrower := id.NewID32()
	env.createLoan(t, borrower)
	env.underwrite(t, "1", id.NewID32())

	// Only the administrator may withdraw.
	c, rec := env.request(stdhttp.MethodPost, "/drawer/dai/withdraw", id.NewID32(),
		mustJSON(map[string]string{"amount": "1"}), "asset", "dai")
	if err := env.drawer.Withdraw(c); err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	c, rec = env.request(stdhttp.MethodPost, "/drawer/dai/withdraw", env.adminID,
		mustJSON(map[string]string{"amount": "505000000000000000"}), "asset", "dai")
	if err := env.drawer.Withdraw(c); err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var dto drawerUC.BalanceDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Balance != "0" {
		t.Fatalf("balance = %s, want 0 after exact withdrawal", dto.Balance)
	}

	// Drawer is empty now.
	c, rec = env.request(stdhttp.MethodPost, "/drawer/dai/withdraw", env.adminID,
		mustJSON(map[string]string{"amount": "1"}), "asset", "dai")
	if err := env.drawer.Withdraw(c); err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestAdminSetFeeRate_Handler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.request(stdhttp.MethodPut, "/admin/origination-fee-rate", id.NewID32(),
		mustJSON(map[string]uint64{"fee_rate": 0}))
	if err := env.admin.SetOriginationFeeRate(c); err != nil {
		t.Fatalf("SetOriginationFeeRate error: %v", err)
	}
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	c, rec = env.request(stdhttp.MethodPut, "/admin/origination-fee-rate", env.adminID,
		mustJSON(map[string]uint64{"fee_rate": 20_000_000_000}))
	if err := env.admin.SetOriginationFeeRate(c); err != nil {
		t.Fatalf("SetOriginationFeeRate error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := env.settings.OriginationFeeRate(); got != 20_000_000_000 {
		t.Fatalf("fee rate = %d, want 20000000000", got)
	}

	// Above the 5% cap.
	c, rec = env.request(stdhttp.MethodPut, "/admin/origination-fee-rate", env.adminID,
		mustJSON(map[string]uint64{"fee_rate": 60_000_000_000}))
	if err := env.admin.SetOriginationFeeRate(c); err != nil {
		t.Fatalf("SetOriginationFeeRate error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestAdminSetImprovementPercent_Handler(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.request(stdhttp.MethodPut, "/admin/improvement-percent", env.adminID,
		mustJSON(map[string]uint64{"percent": 20}))
	if err := env.admin.SetImprovementPercent(c); err != nil {
		t.Fatalf("SetImprovementPercent error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := env.settings.ImprovementPercent(); got != 20 {
		t.Fatalf("percent = %d, want 20", got)
	}

	c, rec = env.request(stdhttp.MethodPut, "/admin/improvement-percent", env.adminID,
		mustJSON(map[string]uint64{"percent": 101}))
	if err := env.admin.SetImprovementPercent(c); err != nil {
		t.Fatalf("SetImprovementPercent error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
