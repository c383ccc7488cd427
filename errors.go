package compliance

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the ledger and its engines. They are all recoverable: the
// ledger is left untouched whenever one of them is returned.
var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrNoSurplusToBank          = errors.New("no surplus to bank")
	ErrNotInDeficit             = errors.New("not in deficit")
	ErrInsufficientBankedAmount = errors.New("insufficient banked amount")
	ErrInsufficientMembers      = errors.New("insufficient pool members")
	ErrPoolDeficit              = errors.New("pool is net deficient")
	ErrPoolRuleViolation        = errors.New("pool rule violation")

	ErrShipNotFound    = errors.New("ship not found")
	ErrPeriodNotFound  = errors.New("period not found")
	ErrInvalidShip     = errors.New("invalid ship id")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrAlreadySeeded   = errors.New("period already seeded")
	ErrDuplicateMember = errors.New("duplicate pool member")
	ErrPeriodMismatch  = errors.New("pool members belong to different periods")
	ErrStaleBalance    = errors.New("balance changed since snapshot")
	ErrPoolImbalance   = errors.New("pool allocation does not conserve the total balance")
	ErrCorruptJournal  = errors.New("corrupt journal")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrNoSurplusToBank, "no_surplus_to_bank"},
	{ErrNotInDeficit, "not_in_deficit"},
	{ErrInsufficientBankedAmount, "insufficient_banked_amount"},
	{ErrInsufficientMembers, "insufficient_members"},
	{ErrPoolDeficit, "pool_deficit"},
	{ErrPoolRuleViolation, "pool_rule_violation"},
	{ErrShipNotFound, "ship_not_found"},
	{ErrPeriodNotFound, "period_not_found"},
	{ErrInvalidShip, "invalid_ship"},
	{ErrInvalidPeriod, "invalid_period"},
	{ErrAlreadySeeded, "already_seeded"},
	{ErrDuplicateMember, "duplicate_member"},
	{ErrPeriodMismatch, "period_mismatch"},
	{ErrStaleBalance, "stale_balance"},
	{ErrPoolImbalance, "pool_imbalance"},
	{ErrCorruptJournal, "corrupt_journal"},
}

// Kind maps an error to a stable snake_case reason, suitable as a log field or
// a metric label. It returns "" for nil and "unknown" for foreign errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unknown"
}

// BankingError is returned by Banking operations. It carries the numeric
// context an operator needs to correct the request.
type BankingError struct {
	Op        CommandType // Op is the rejected operation.
	Ship      string      // Ship is the target ship.
	Requested CB          // Requested is the amount asked for.
	Available CB          // Available is the balance or banked amount that limited the request.
	Err       error       // Err is one of the sentinel errors.
}

func (e *BankingError) Error() string {
	switch e.Err {
	case ErrInsufficientBalance, ErrInsufficientBankedAmount:
		return fmt.Sprintf("%s %s: %v: requested %s, available %s", e.Op, e.Ship, e.Err, e.Requested, e.Available)
	case ErrNoSurplusToBank, ErrNotInDeficit:
		return fmt.Sprintf("%s %s: %v: balance is %s", e.Op, e.Ship, e.Err, e.Available.SignedString())
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Ship, e.Err)
	}
}

func (e *BankingError) Unwrap() error { return e.Err }

// Violation describes a pool member that breaks a pooling rule.
type Violation struct {
	Ship   string
	Before CB
	After  CB
	Rule   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (before %s, after %s)", v.Ship, v.Rule, v.Before.SignedString(), v.After.SignedString())
}

// PoolRuleViolation is returned when an allocation breaks the pooling rules.
// It lists every offending ship.
type PoolRuleViolation struct {
	Violations []Violation
}

func (e *PoolRuleViolation) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%v: %s", ErrPoolRuleViolation, strings.Join(parts, "; "))
}

// Ships returns the offending ship ids in allocation order.
func (e *PoolRuleViolation) Ships() []string {
	ships := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		ships[i] = v.Ship
	}
	return ships
}

func (e *PoolRuleViolation) Is(target error) bool { return target == ErrPoolRuleViolation }
