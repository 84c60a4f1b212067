package protocol

import (
	"errors"
	"sync"

	"backed-protocol/pkg/rate"
)

var (
	ErrNotAdministrator = errors.New("caller is not the administrator")
	ErrFeeTooHigh       = errors.New("origination fee rate exceeds maximum")
	ErrInvalidRate      = errors.New("invalid improvement rate")
)

// Settings holds the administrator-controlled protocol configuration. It is
// constructed once at startup and read on every ledger operation; the only
// mutations go through the administrator-gated setters.
type Settings struct {
	mu sync.RWMutex

	adminID            string
	originationFeeRate uint64
	improvementPercent uint64

	// Claim registry asset identifiers. Loans collateralized by the claim
	// contracts themselves are rejected at creation.
	borrowTicketAsset string
	lendTicketAsset   string
}

func NewSettings(adminID string, feeRate, improvementPercent uint64, borrowTicketAsset, lendTicketAsset string) (*Settings, error) {
	if feeRate > rate.MaxFeeRate {
		return nil, ErrFeeTooHigh
	}
	if improvementPercent == 0 || improvementPercent > 100 {
		return nil, ErrInvalidRate
	}
	return &Settings{
		adminID:            adminID,
		originationFeeRate: feeRate,
		improvementPercent: improvementPercent,
		borrowTicketAsset:  borrowTicketAsset,
		lendTicketAsset:    lendTicketAsset,
	}, nil
}

func (s *Settings) AdminID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminID
}

func (s *Settings) IsAdmin(actorID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return actorID != "" && actorID == s.adminID
}

func (s *Settings) OriginationFeeRate() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.originationFeeRate
}

func (s *Settings) ImprovementPercent() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.improvementPercent
}

// ForbiddenCollateral reports whether asset is one of the claim contracts.
func (s *Settings) ForbiddenCollateral(asset string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return asset == s.borrowTicketAsset || asset == s.lendTicketAsset
}

// SetOriginationFeeRate is the administrator-gated fee setter; the rate is
// capped at rate.MaxFeeRate (5% of the scalar).
func (s *Settings) SetOriginationFeeRate(callerID string, feeRate uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callerID != s.adminID {
		return ErrNotAdministrator
	}
	if feeRate > rate.MaxFeeRate {
		return ErrFeeTooHigh
	}
	s.originationFeeRate = feeRate
	return nil
}

func (s *Settings) SetImprovementPercent(callerID string, pct uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callerID != s.adminID {
		return ErrNotAdministrator
	}
	if pct == 0 || pct > 100 {
		return ErrInvalidRate
	}
	s.improvementPercent = pct
	return nil
}
