package vesting

import "github.com/pkg/errors"

// Codec failures. These indicate malformed bytes rather than a rejected
// state transition.
var (
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)

// VestingError is the set of conditions under which an instruction is
// rejected. Every rejection aborts the instruction with no state change.
type VestingError uint32

const (
	// Unknown instruction tag or a payload inconsistent with its declared contents
	ErrInvalidInstruction VestingError = iota

	// Supplied account does not match the canonical derived address
	ErrInvalidSeeds

	// Account is not owned by the expected program
	ErrIllegalOwner

	// Vesting account has already been created
	ErrAccountInUse

	// Vesting account has not been created yet
	ErrUninitializedAccount

	// Vault is not owned by the vesting account, or has a delegate
	ErrInvalidVaultOwner

	// Vault balance or close authority is configured, or the balance is nonzero
	ErrInvalidVaultAmount

	// Destination token account is not owned by the beneficiary
	ErrInvalidBeneficiary

	// Funding balance is below the schedule total
	ErrInsufficientFunds

	// Accumulated release sum exceeds the representable range
	ErrOverflow

	// Release schedule is empty or its timestamps regress
	ErrInvalidSchedule

	// A required signature is missing or the signer is not the authority
	ErrUnauthorized

	// No vesting periods have elapsed. Retryable once more time passes.
	ErrNoEligibleRelease
)

func (e VestingError) Error() string {
	switch e {
	case ErrInvalidInstruction:
		return "invalid instruction"
	case ErrInvalidSeeds:
		return "derived address mismatch"
	case ErrIllegalOwner:
		return "account not owned by the expected program"
	case ErrAccountInUse:
		return "vesting account already in use"
	case ErrUninitializedAccount:
		return "vesting account is not initialized"
	case ErrInvalidVaultOwner:
		return "invalid vault owner"
	case ErrInvalidVaultAmount:
		return "vault amount must be zero"
	case ErrInvalidBeneficiary:
		return "invalid beneficiary account"
	case ErrInsufficientFunds:
		return "insufficient funds"
	case ErrOverflow:
		return "release amount overflow"
	case ErrInvalidSchedule:
		return "invalid release schedule"
	case ErrUnauthorized:
		return "missing required signature"
	case ErrNoEligibleRelease:
		return "no vesting periods have elapsed"
	}

	return "unknown vesting error"
}
