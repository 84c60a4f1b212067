package protocol

import (
	"errors"
	"strings"
	"testing"

	"backed-protocol/pkg/rate"
)

const admin = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := NewSettings(admin, rate.Scalar/100, 10, "borrow-tickets", "lend-tickets")
	if err != nil {
		t.Fatalf("NewSettings err: %v", err)
	}
	return s
}

func TestNewSettings_RejectsExcessiveFee(t *testing.T) {
	if _, err := NewSettings(admin, rate.MaxFeeRate+1, 10, "b", "l"); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("err = %v, want ErrFeeTooHigh", err)
	}
}

func TestSetOriginationFeeRate(t *testing.T) {
	s := newSettings(t)

	if err := s.SetOriginationFeeRate(strings.Repeat("b", 32), rate.Scalar/50); !errors.Is(err, ErrNotAdministrator) {
		t.Fatalf("err = %v, want ErrNotAdministrator", err)
	}
	if err := s.SetOriginationFeeRate(admin, rate.MaxFeeRate+1); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("err = %v, want ErrFeeTooHigh", err)
	}
	if err := s.SetOriginationFeeRate(admin, rate.MaxFeeRate); err != nil {
		t.Fatalf("SetOriginationFeeRate err: %v", err)
	}
	if got := s.OriginationFeeRate(); got != rate.MaxFeeRate {
		t.Fatalf("fee rate = %d, want %d", got, rate.MaxFeeRate)
	}
}

func TestSetImprovementPercent_Bounds(t *testing.T) {
	s := newSettings(t)
	if err := s.SetImprovementPercent(admin, 0); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("err = %v, want ErrInvalidRate", err)
	}
	if err := s.SetImprovementPercent(admin, 101); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("err = %v, want ErrInvalidRate", err)
	}
	if err := s.SetImprovementPercent(admin, 25); err != nil {
		t.Fatalf("SetImprovementPercent err: %v", err)
	}
	if got := s.ImprovementPercent(); got != 25 {
		t.Fatalf("improvement = %d, want 25", got)
	}
}

func TestForbiddenCollateral(t *testing.T) {
	s := newSettings(t)
	if !s.ForbiddenCollateral("borrow-tickets") || !s.ForbiddenCollateral("lend-tickets") {
		t.Fatal("claim contracts must be forbidden collateral")
	}
	if s.ForbiddenCollateral("punks") {
		t.Fatal("ordinary assets must be allowed")
	}
}

func TestIsAdmin(t *testing.T) {
	s := newSettings(t)
	if !s.IsAdmin(admin) {
		t.Fatal("admin id should match")
	}
	if s.IsAdmin("") || s.IsAdmin(strings.Repeat("c", 32)) {
		t.Fatal("non-admin ids should not match")
	}
}
