package vesting

import (
	"bytes"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/synchrony-fi/vesting-server/pkg/solana/system"
	"github.com/synchrony-fi/vesting-server/pkg/solana/token"
)

// Account is the processor's view of a ledger account named by an
// instruction. Data aliases the live account buffer, so writes through it are
// the state rewrite.
type Account struct {
	Address  ed25519.PublicKey
	Owner    ed25519.PublicKey
	Data     []byte
	IsSigner bool
}

// TokenTransferrer moves asset balance between token accounts. When
// signerSeeds are provided the authority is a derived address signing through
// its derivation rather than a private key.
type TokenTransferrer interface {
	Transfer(source, dest, authority ed25519.PublicKey, amount uint64, signerSeeds ...[]byte) error
}

// AccountAllocator allocates a rent-funded account of the given size at a
// derived address, owned by the requesting program.
type AccountAllocator interface {
	Allocate(payer, address ed25519.PublicKey, size uint64, owner ed25519.PublicKey, signerSeeds ...[]byte) error
}

// Clock is the ledger time oracle read by Unlock's eligibility test.
type Clock interface {
	Now() time.Time
}

// Processor executes vesting instructions against ledger accounts. Each call
// either fully applies its transition or returns an error having written
// nothing.
type Processor struct {
	log     *logrus.Entry
	program ed25519.PublicKey
	token   TokenTransferrer
	system  AccountAllocator
	clock   Clock
}

func NewProcessor(program ed25519.PublicKey, token TokenTransferrer, system AccountAllocator, clock Clock) *Processor {
	return &Processor{
		log:     logrus.StandardLogger().WithField("type", "solana/vesting/processor"),
		program: program,
		token:   token,
		system:  system,
		clock:   clock,
	}
}

// Process decodes and dispatches a single instruction.
func (p *Processor) Process(accounts []*Account, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandInit:
		args, err := InitInstructionFromBinary(data)
		if err != nil {
			return err
		}
		return p.initAccount(accounts, args)
	case CommandCreate:
		args, err := CreateInstructionFromBinary(data)
		if err != nil {
			return err
		}
		return p.create(accounts, args)
	case CommandUnlock:
		args, err := UnlockInstructionFromBinary(data)
		if err != nil {
			return err
		}
		return p.unlock(accounts, args)
	case CommandSetBeneficiary:
		args, err := SetBeneficiaryInstructionFromBinary(data)
		if err != nil {
			return err
		}
		return p.setBeneficiary(accounts, args)
	}

	return ErrInvalidInstruction
}

func (p *Processor) initAccount(accounts []*Account, args *InitArgs) error {
	if len(accounts) < 2 {
		return ErrInvalidInstruction
	}
	payer, vestingAccount := accounts[0], accounts[1]

	if args.PeriodCount == 0 {
		return ErrInvalidSchedule
	}

	derived, bump, err := GetVestingAccountAddress(p.program, args.Seed)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, vestingAccount.Address) {
		return ErrInvalidSeeds
	}

	if !payer.IsSigner {
		return ErrUnauthorized
	}

	// A fresh address has no data and belongs to the system program.
	if len(vestingAccount.Data) > 0 || !bytes.Equal(vestingAccount.Owner, system.ProgramKey) {
		return ErrAccountInUse
	}

	size := AccountSize(uint64(args.PeriodCount))
	err = p.system.Allocate(payer.Address, vestingAccount.Address, size, p.program, args.Seed[:SeedSize-1], []byte{bump})
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"account": base58.Encode(vestingAccount.Address),
		"periods": args.PeriodCount,
	}).Debug("allocated vesting account")

	return nil
}

func (p *Processor) create(accounts []*Account, args *CreateArgs) error {
	if len(accounts) < 5 {
		return ErrInvalidInstruction
	}
	vestingAccount, vault, authority, depositor, metadata := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	derived, bump, err := GetVestingAccountAddress(p.program, args.Seed)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, vestingAccount.Address) || args.Nonce != bump {
		return ErrInvalidSeeds
	}

	if !bytes.Equal(vestingAccount.Owner, p.program) {
		return ErrIllegalOwner
	}
	if uint64(len(vestingAccount.Data)) != AccountSize(args.PeriodCount) {
		return ErrInvalidAccountData
	}

	var state VestingState
	if err := state.Unmarshal(vestingAccount.Data); err != nil {
		return err
	}
	if state.IsInitialized {
		// A racing Create committed first.
		return ErrAccountInUse
	}

	if !authority.IsSigner {
		return ErrUnauthorized
	}

	var vaultToken token.Account
	if !vaultToken.Unmarshal(vault.Data) {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(vaultToken.Owner, derived) || len(vaultToken.Delegate) > 0 {
		return ErrInvalidVaultOwner
	}
	if len(vaultToken.CloseAuthority) > 0 || vaultToken.Amount != 0 {
		return ErrInvalidVaultAmount
	}

	for i := 1; i < len(args.Releases); i++ {
		if args.Releases[i].Timestamp < args.Releases[i-1].Timestamp {
			return ErrInvalidSchedule
		}
	}
	total, err := ScheduleTotal(args.Releases)
	if err != nil {
		return err
	}
	if total != args.Amount {
		return ErrInvalidInstruction
	}

	var depositorToken token.Account
	if !depositorToken.Unmarshal(depositor.Data) {
		return ErrInvalidAccountData
	}
	if depositorToken.Amount < total {
		return ErrInsufficientFunds
	}

	if err := p.token.Transfer(depositor.Address, vault.Address, authority.Address, total); err != nil {
		return err
	}

	state = VestingState{
		IsInitialized: true,
		Authority:     authority.Address,
		Beneficiary:   args.Beneficiary,
		Vault:         vault.Address,
		Mint:          vaultToken.Mint,
		Grantor:       depositorToken.Owner,
		Metadata:      metadata.Address,
		Outstanding:   total,
		StartBalance:  total,
		CreatedTs:     uint64(p.clock.Now().Unix()),
		StartTs:       args.StartTs,
		EndTs:         args.EndTs,
		PeriodCount:   args.PeriodCount,
		Nonce:         args.Nonce,
		Releases:      args.Releases,
	}
	copy(vestingAccount.Data, state.Marshal())

	p.log.WithFields(logrus.Fields{
		"account": base58.Encode(vestingAccount.Address),
		"amount":  total,
		"periods": args.PeriodCount,
	}).Debug("created vesting schedule")

	return nil
}

func (p *Processor) unlock(accounts []*Account, args *UnlockArgs) error {
	if len(accounts) < 3 {
		return ErrInvalidInstruction
	}
	vestingAccount, vault, destination := accounts[0], accounts[1], accounts[2]

	derived, bump, err := GetVestingAccountAddress(p.program, args.Seed)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, vestingAccount.Address) {
		return ErrInvalidSeeds
	}
	if !bytes.Equal(vestingAccount.Owner, p.program) {
		return ErrIllegalOwner
	}

	var state VestingState
	if err := state.Unmarshal(vestingAccount.Data); err != nil {
		return err
	}
	if !state.IsInitialized {
		return ErrUninitializedAccount
	}

	if !bytes.Equal(vault.Address, state.Vault) {
		return ErrInvalidVaultOwner
	}

	var destinationToken token.Account
	if !destinationToken.Unmarshal(destination.Data) {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(destinationToken.Owner, state.Beneficiary) {
		return ErrInvalidBeneficiary
	}

	now := p.clock.Now().Unix()

	var eligible uint64
	for i := range state.Releases {
		release := &state.Releases[i]
		if int64(release.Timestamp) > now || release.Quantity == 0 {
			continue
		}

		sum := eligible + release.Quantity
		if sum < eligible {
			return ErrOverflow
		}
		eligible = sum
		release.Quantity = 0
	}

	if eligible == 0 {
		return ErrNoEligibleRelease
	}
	if eligible > state.Outstanding {
		return ErrOverflow
	}

	// The vesting account is the vault's owner and signs through its
	// derivation.
	err = p.token.Transfer(vault.Address, destination.Address, derived, eligible, args.Seed[:SeedSize-1], []byte{bump})
	if err != nil {
		return err
	}

	state.Outstanding -= eligible
	copy(vestingAccount.Data, state.Marshal())

	p.log.WithFields(logrus.Fields{
		"account":     base58.Encode(vestingAccount.Address),
		"amount":      eligible,
		"outstanding": state.Outstanding,
	}).Debug("unlocked vested releases")

	return nil
}

func (p *Processor) setBeneficiary(accounts []*Account, args *SetBeneficiaryArgs) error {
	if len(accounts) < 2 {
		return ErrInvalidInstruction
	}
	authority, vestingAccount := accounts[0], accounts[1]

	derived, _, err := GetVestingAccountAddress(p.program, args.Seed)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, vestingAccount.Address) {
		return ErrInvalidSeeds
	}
	if !bytes.Equal(vestingAccount.Owner, p.program) {
		return ErrIllegalOwner
	}

	var state VestingState
	if err := state.Unmarshal(vestingAccount.Data); err != nil {
		return err
	}
	if !state.IsInitialized {
		return ErrUninitializedAccount
	}

	if !authority.IsSigner || !bytes.Equal(authority.Address, state.Authority) {
		return ErrUnauthorized
	}

	state.Beneficiary = args.NewBeneficiary
	copy(vestingAccount.Data, state.Marshal())

	return nil
}
