package vesting

import (
	"crypto/ed25519"

	"github.com/synchrony-fi/vesting-server/pkg/solana"
	"github.com/synchrony-fi/vesting-server/pkg/solana/binary"
	"github.com/synchrony-fi/vesting-server/pkg/solana/system"
	"github.com/synchrony-fi/vesting-server/pkg/solana/token"
)

type Command byte

const (
	CommandInit Command = iota
	CommandCreate
	CommandUnlock
	CommandSetBeneficiary
)

const (
	InitInstructionSize = (1 + // tag
		SeedSize + // seed
		4) // period_count

	createInstructionHeaderSize = (1 + // tag
		32 + // beneficiary
		8 + // start_ts
		8 + // end_ts
		8 + // period_count
		1 + // nonce
		8 + // amount
		SeedSize) // seed

	UnlockInstructionSize = (1 + // tag
		8 + // amount
		SeedSize) // seed

	SetBeneficiaryInstructionSize = (1 + // tag
		32 + // new_beneficiary
		SeedSize) // seed
)

type InitArgs struct {
	Seed        []byte
	PeriodCount uint32
}

type CreateArgs struct {
	Beneficiary ed25519.PublicKey
	StartTs     uint64
	EndTs       uint64
	PeriodCount uint64
	Nonce       uint8
	Amount      uint64
	Seed        []byte
	Releases    []Release
}

type UnlockArgs struct {
	Amount uint64
	Seed   []byte
}

type SetBeneficiaryArgs struct {
	NewBeneficiary ed25519.PublicKey
	Seed           []byte
}

// NewInitInstruction allocates the vesting account at the seed's derived
// address, sized for periodCount release slots.
func NewInitInstruction(program, payer, vestingAccount ed25519.PublicKey, args *InitArgs) solana.Instruction {
	data := make([]byte, InitInstructionSize)

	var offset int
	binary.PutUint8(data, uint8(CommandInit), &offset)
	binary.PutKey32(data, args.Seed, &offset)
	binary.PutUint32(data, args.PeriodCount, &offset)

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(payer, true),
		solana.NewAccountMeta(vestingAccount, false),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
	)
}

// NewCreateInstruction loads the schedule into an Init'ed vesting account and
// funds the vault from the depositor's token account in the same atomic step.
func NewCreateInstruction(program, vestingAccount, vault, authority, depositor, metadata ed25519.PublicKey, args *CreateArgs) solana.Instruction {
	data := make([]byte, createInstructionHeaderSize+len(args.Releases)*ReleaseSize)

	var offset int
	binary.PutUint8(data, uint8(CommandCreate), &offset)
	binary.PutKey32(data, args.Beneficiary, &offset)
	binary.PutUint64(data, args.StartTs, &offset)
	binary.PutUint64(data, args.EndTs, &offset)
	binary.PutUint64(data, args.PeriodCount, &offset)
	binary.PutUint8(data, args.Nonce, &offset)
	binary.PutUint64(data, args.Amount, &offset)
	binary.PutKey32(data, args.Seed, &offset)
	for _, release := range args.Releases {
		binary.PutUint32(data, release.Timestamp, &offset)
		binary.PutUint64(data, release.Quantity, &offset)
	}

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(vestingAccount, false),
		solana.NewAccountMeta(vault, false),
		solana.NewAccountMeta(authority, true),
		solana.NewAccountMeta(depositor, false),
		solana.NewReadonlyAccountMeta(metadata, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

// NewUnlockInstruction pays every elapsed, unclaimed release to the
// beneficiary's token account.
func NewUnlockInstruction(program, vestingAccount, vault, destination ed25519.PublicKey, args *UnlockArgs) solana.Instruction {
	data := make([]byte, UnlockInstructionSize)

	var offset int
	binary.PutUint8(data, uint8(CommandUnlock), &offset)
	binary.PutUint64(data, args.Amount, &offset)
	binary.PutKey32(data, args.Seed, &offset)

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(vestingAccount, false),
		solana.NewAccountMeta(vault, false),
		solana.NewAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(system.ClockSysVar, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

// NewSetBeneficiaryInstruction reassigns the beneficiary. Only the creating
// authority may do so.
func NewSetBeneficiaryInstruction(program, authority, vestingAccount ed25519.PublicKey, args *SetBeneficiaryArgs) solana.Instruction {
	data := make([]byte, SetBeneficiaryInstructionSize)

	var offset int
	binary.PutUint8(data, uint8(CommandSetBeneficiary), &offset)
	binary.PutKey32(data, args.NewBeneficiary, &offset)
	binary.PutKey32(data, args.Seed, &offset)

	return solana.NewInstruction(
		program,
		data,
		solana.NewReadonlyAccountMeta(authority, true),
		solana.NewAccountMeta(vestingAccount, false),
	)
}

func InitInstructionFromBinary(data []byte) (*InitArgs, error) {
	if len(data) != InitInstructionSize || Command(data[0]) != CommandInit {
		return nil, ErrInvalidInstructionData
	}

	var args InitArgs
	var seed ed25519.PublicKey

	offset := 1
	binary.GetKey32(data, &seed, &offset)
	binary.GetUint32(data, &args.PeriodCount, &offset)

	args.Seed = seed
	return &args, nil
}

func CreateInstructionFromBinary(data []byte) (*CreateArgs, error) {
	if len(data) < createInstructionHeaderSize || Command(data[0]) != CommandCreate {
		return nil, ErrInvalidInstructionData
	}

	var args CreateArgs
	var seed ed25519.PublicKey

	offset := 1
	binary.GetKey32(data, &args.Beneficiary, &offset)
	binary.GetUint64(data, &args.StartTs, &offset)
	binary.GetUint64(data, &args.EndTs, &offset)
	binary.GetUint64(data, &args.PeriodCount, &offset)
	binary.GetUint8(data, &args.Nonce, &offset)
	binary.GetUint64(data, &args.Amount, &offset)
	binary.GetKey32(data, &seed, &offset)
	args.Seed = seed

	if args.PeriodCount > uint64(len(data))/ReleaseSize ||
		uint64(len(data)-createInstructionHeaderSize) != args.PeriodCount*ReleaseSize {
		return nil, ErrInvalidInstructionData
	}

	args.Releases = make([]Release, args.PeriodCount)
	for i := range args.Releases {
		binary.GetUint32(data, &args.Releases[i].Timestamp, &offset)
		binary.GetUint64(data, &args.Releases[i].Quantity, &offset)
	}

	return &args, nil
}

func UnlockInstructionFromBinary(data []byte) (*UnlockArgs, error) {
	if len(data) != UnlockInstructionSize || Command(data[0]) != CommandUnlock {
		return nil, ErrInvalidInstructionData
	}

	var args UnlockArgs
	var seed ed25519.PublicKey

	offset := 1
	binary.GetUint64(data, &args.Amount, &offset)
	binary.GetKey32(data, &seed, &offset)

	args.Seed = seed
	return &args, nil
}

func SetBeneficiaryInstructionFromBinary(data []byte) (*SetBeneficiaryArgs, error) {
	if len(data) != SetBeneficiaryInstructionSize || Command(data[0]) != CommandSetBeneficiary {
		return nil, ErrInvalidInstructionData
	}

	var args SetBeneficiaryArgs
	var seed ed25519.PublicKey

	offset := 1
	binary.GetKey32(data, &args.NewBeneficiary, &offset)
	binary.GetKey32(data, &seed, &offset)

	args.Seed = seed
	return &args, nil
}
