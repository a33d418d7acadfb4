package enums

import "fmt"

// EscrowEventType labels entries in the append-only escrow audit trail.
type EscrowEventType string

const (
	EscrowEventTypeEscrowLocked      EscrowEventType = "escrow_locked"
	EscrowEventTypeDeliveryMarked    EscrowEventType = "delivery_marked"
	EscrowEventTypeEscrowReleased    EscrowEventType = "escrow_released"
	EscrowEventTypeDisputeRaised     EscrowEventType = "dispute_raised"
	EscrowEventTypeAdminForceRelease EscrowEventType = "admin_force_release"
	EscrowEventTypeWalletDeposit     EscrowEventType = "wallet_deposit"
	EscrowEventTypeWalletWithdrawal  EscrowEventType = "wallet_withdrawal"
)

var validEscrowEventTypes = []EscrowEventType{
	EscrowEventTypeEscrowLocked,
	EscrowEventTypeDeliveryMarked,
	EscrowEventTypeEscrowReleased,
	EscrowEventTypeDisputeRaised,
	EscrowEventTypeAdminForceRelease,
	EscrowEventTypeWalletDeposit,
	EscrowEventTypeWalletWithdrawal,
}

// String implements fmt.Stringer.
func (t EscrowEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known EscrowEventType.
func (t EscrowEventType) IsValid() bool {
	for _, candidate := range validEscrowEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEscrowEventType converts raw input into an EscrowEventType.
func ParseEscrowEventType(value string) (EscrowEventType, error) {
	for _, candidate := range validEscrowEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid escrow event type %q", value)
}
