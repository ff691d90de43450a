package vesting

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/synchrony-fi/vesting-server/pkg/solana"
	"github.com/synchrony-fi/vesting-server/pkg/solana/token"
)

// SeedSize is the size of a vesting account seed. The first 31 bytes are
// random derivation material; the final byte records the bump so the seed
// alone reconstructs the address.
const SeedSize = 32

// NewSeed generates a fresh seed whose final byte holds the derivation bump
// for the given program.
func NewSeed(program ed25519.PublicKey) ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(err, "failed to generate seed")
	}

	_, bump, err := solana.FindProgramAddressAndBump(program, seed[:SeedSize-1])
	if err != nil {
		return nil, err
	}

	seed[SeedSize-1] = bump
	return seed, nil
}

// GetVestingAccountAddress returns the canonical vesting account address and
// bump for a seed.
func GetVestingAccountAddress(program ed25519.PublicKey, seed []byte) (ed25519.PublicKey, uint8, error) {
	if len(seed) != SeedSize {
		return nil, 0, ErrInvalidSeeds
	}

	return solana.FindProgramAddressAndBump(program, seed[:SeedSize-1])
}

// GetVaultAddress returns the vault address for a seed, the associated token
// account of the vesting account's derived address.
func GetVaultAddress(program ed25519.PublicKey, seed []byte, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	vestingAccount, _, err := GetVestingAccountAddress(program, seed)
	if err != nil {
		return nil, err
	}

	return token.GetAssociatedAccount(vestingAccount, mint)
}
