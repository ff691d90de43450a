package vesting

import (
	"crypto/ed25519"
	"strconv"

	"github.com/mr-tron/base58/base58"

	"github.com/synchrony-fi/vesting-server/pkg/solana/binary"
)

const (
	HeaderSize = (1 + // is_initialized
		32 + // authority
		32 + // beneficiary
		32 + // vault
		32 + // mint
		32 + // grantor
		32 + // metadata
		8 + // outstanding
		8 + // start_balance
		8 + // created_ts
		8 + // start_ts
		8 + // end_ts
		8 + // period_count
		1) // nonce

	ReleaseSize = (4 + // timestamp
		8) // quantity
)

// AccountSize returns the full account size for a schedule of periodCount
// releases. The slot count is fixed at Init and never changes.
func AccountSize(periodCount uint64) uint64 {
	return HeaderSize + periodCount*ReleaseSize
}

// Release is one schedule entry. Quantity is zeroed in place as the
// installment is claimed; Timestamp persists as an audit trail.
type Release struct {
	Timestamp uint32
	Quantity  uint64
}

// VestingState is the full state of a vesting account.
type VestingState struct {
	// True once Create has succeeded. Never reset.
	IsInitialized bool
	// The signer that created the vesting account and may reassign the beneficiary.
	Authority ed25519.PublicKey
	// The account entitled to released funds.
	Beneficiary ed25519.PublicKey
	// The token account holding the locked balance. Owned by the vesting
	// account's derived address.
	Vault ed25519.PublicKey
	// The mint of the asset under vesting.
	Mint ed25519.PublicKey
	// The owner of the token account that funded the vault.
	Grantor ed25519.PublicKey
	// The pool metadata account this agreement was created under.
	Metadata ed25519.PublicKey
	// Total unclaimed quantity across all releases.
	Outstanding uint64
	// Total quantity deposited at creation.
	StartBalance uint64
	// Unix time the account was created.
	CreatedTs uint64
	// Unix time of the first release.
	StartTs uint64
	// Unix time of the last release.
	EndTs uint64
	// Number of release slots.
	PeriodCount uint64
	// The derivation bump for the vesting account's address.
	Nonce uint8

	Releases []Release
}

func (obj *VestingState) String() string {
	var authority, beneficiary, vault, mint, grantor, metadata string

	if obj.Authority != nil {
		authority = base58.Encode(obj.Authority)
	}
	if obj.Beneficiary != nil {
		beneficiary = base58.Encode(obj.Beneficiary)
	}
	if obj.Vault != nil {
		vault = base58.Encode(obj.Vault)
	}
	if obj.Mint != nil {
		mint = base58.Encode(obj.Mint)
	}
	if obj.Grantor != nil {
		grantor = base58.Encode(obj.Grantor)
	}
	if obj.Metadata != nil {
		metadata = base58.Encode(obj.Metadata)
	}

	return "VestingState{" +
		"is_initialized='" + strconv.FormatBool(obj.IsInitialized) + "'" +
		", authority='" + authority + "'" +
		", beneficiary='" + beneficiary + "'" +
		", vault='" + vault + "'" +
		", mint='" + mint + "'" +
		", grantor='" + grantor + "'" +
		", metadata='" + metadata + "'" +
		", outstanding='" + strconv.FormatUint(obj.Outstanding, 10) + "'" +
		", start_balance='" + strconv.FormatUint(obj.StartBalance, 10) + "'" +
		", created_ts='" + strconv.FormatUint(obj.CreatedTs, 10) + "'" +
		", start_ts='" + strconv.FormatUint(obj.StartTs, 10) + "'" +
		", end_ts='" + strconv.FormatUint(obj.EndTs, 10) + "'" +
		", period_count='" + strconv.FormatUint(obj.PeriodCount, 10) + "'" +
		", nonce='" + strconv.Itoa(int(obj.Nonce)) + "'" +
		"}"
}

func (obj *VestingState) Marshal() []byte {
	data := make([]byte, AccountSize(uint64(len(obj.Releases))))

	var offset int

	if obj.IsInitialized {
		binary.PutUint8(data, 1, &offset)
	} else {
		binary.PutUint8(data, 0, &offset)
	}
	binary.PutKey32(data, obj.Authority, &offset)
	binary.PutKey32(data, obj.Beneficiary, &offset)
	binary.PutKey32(data, obj.Vault, &offset)
	binary.PutKey32(data, obj.Mint, &offset)
	binary.PutKey32(data, obj.Grantor, &offset)
	binary.PutKey32(data, obj.Metadata, &offset)
	binary.PutUint64(data, obj.Outstanding, &offset)
	binary.PutUint64(data, obj.StartBalance, &offset)
	binary.PutUint64(data, obj.CreatedTs, &offset)
	binary.PutUint64(data, obj.StartTs, &offset)
	binary.PutUint64(data, obj.EndTs, &offset)
	binary.PutUint64(data, obj.PeriodCount, &offset)
	binary.PutUint8(data, obj.Nonce, &offset)

	for _, release := range obj.Releases {
		binary.PutUint32(data, release.Timestamp, &offset)
		binary.PutUint64(data, release.Quantity, &offset)
	}

	return data
}

// Unmarshal decodes a vesting account. Uninitialized accounts only guarantee
// header space (Init allocates the full buffer zeroed), so the release array
// is decoded, and its length enforced, only once IsInitialized is set.
func (obj *VestingState) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return ErrInvalidAccountData
	}

	var offset int
	var initialized uint8

	binary.GetUint8(data, &initialized, &offset)
	switch initialized {
	case 0:
		obj.IsInitialized = false
	case 1:
		obj.IsInitialized = true
	default:
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.Authority, &offset)
	binary.GetKey32(data, &obj.Beneficiary, &offset)
	binary.GetKey32(data, &obj.Vault, &offset)
	binary.GetKey32(data, &obj.Mint, &offset)
	binary.GetKey32(data, &obj.Grantor, &offset)
	binary.GetKey32(data, &obj.Metadata, &offset)
	binary.GetUint64(data, &obj.Outstanding, &offset)
	binary.GetUint64(data, &obj.StartBalance, &offset)
	binary.GetUint64(data, &obj.CreatedTs, &offset)
	binary.GetUint64(data, &obj.StartTs, &offset)
	binary.GetUint64(data, &obj.EndTs, &offset)
	binary.GetUint64(data, &obj.PeriodCount, &offset)
	binary.GetUint8(data, &obj.Nonce, &offset)

	obj.Releases = nil
	if !obj.IsInitialized {
		return nil
	}

	if uint64(len(data)) != AccountSize(obj.PeriodCount) {
		return ErrInvalidAccountData
	}

	obj.Releases = make([]Release, obj.PeriodCount)
	for i := range obj.Releases {
		binary.GetUint32(data, &obj.Releases[i].Timestamp, &offset)
		binary.GetUint64(data, &obj.Releases[i].Quantity, &offset)
	}

	return nil
}
