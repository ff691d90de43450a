// Package ledger is an in-memory stand-in for the shared ledger. It applies
// token transfers and account allocations atomically under a single lock and
// exposes a controllable clock, which is what the vesting processor consumes
// through its collaborator interfaces.
package ledger

import (
	"bytes"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/synchrony-fi/vesting-server/pkg/solana"
	"github.com/synchrony-fi/vesting-server/pkg/solana/system"
	"github.com/synchrony-fi/vesting-server/pkg/solana/token"
	"github.com/synchrony-fi/vesting-server/pkg/solana/vesting"
)

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidSigner       = errors.New("signer seeds do not derive the authority")
	ErrInsufficientLamport = errors.New("payer cannot fund rent")
	ErrBalanceOverflow     = errors.New("destination balance overflow")
)

// Rent charged per allocated byte.
const lamportsPerByte = 10

type account struct {
	owner    ed25519.PublicKey
	data     []byte
	lamports uint64
}

type Ledger struct {
	mu       sync.Mutex
	program  ed25519.PublicKey
	accounts map[string]*account
	now      time.Time
}

// New returns a ledger whose derived-address authorities resolve against the
// provided vesting program.
func New(program ed25519.PublicKey) *Ledger {
	return &Ledger{
		program:  program,
		accounts: make(map[string]*account),
		now:      time.Now(),
	}
}

func (l *Ledger) SetClock(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.now = t
}

func (l *Ledger) Advance(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.now = l.now.Add(d)
}

func (l *Ledger) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.now
}

// FundWallet credits lamports to an address, creating a system-owned account
// if none exists.
func (l *Ledger) FundWallet(address ed25519.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[string(address)]
	if !ok {
		acc = &account{owner: system.ProgramKey}
		l.accounts[string(address)] = acc
	}
	acc.lamports += lamports
}

// CreateTokenAccount creates an empty token account for the given mint and
// owner at the provided address.
func (l *Ledger) CreateTokenAccount(address, mint, owner ed25519.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[string(address)]; ok {
		return ErrAccountExists
	}

	state := token.Account{
		Mint:  mint,
		Owner: owner,
		State: token.AccountStateInitialized,
	}
	l.accounts[string(address)] = &account{
		owner: token.ProgramKey,
		data:  state.Marshal(),
	}
	return nil
}

// MintTo credits raw units to a token account.
func (l *Ledger) MintTo(address ed25519.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[string(address)]
	if !ok {
		return ErrAccountNotFound
	}

	var state token.Account
	if !state.Unmarshal(acc.data) {
		return vesting.ErrInvalidAccountData
	}
	state.Amount += amount
	copy(acc.data, state.Marshal())
	return nil
}

// TokenAccount returns a decoded copy of the token account at address.
func (l *Ledger) TokenAccount(address ed25519.PublicKey) (*token.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[string(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}

	var state token.Account
	if !state.Unmarshal(acc.data) {
		return nil, vesting.ErrInvalidAccountData
	}
	return &state, nil
}

// Transfer moves raw units between token accounts. When signerSeeds are
// provided, the authority must be the program address they derive; otherwise
// the authority is treated as having signed the transaction.
func (l *Ledger) Transfer(source, dest, authority ed25519.PublicKey, amount uint64, signerSeeds ...[]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(signerSeeds) > 0 {
		derived, err := solana.CreateProgramAddress(l.program, signerSeeds...)
		if err != nil {
			return err
		}
		if !bytes.Equal(derived, authority) {
			return ErrInvalidSigner
		}
	}

	sourceAccount, ok := l.accounts[string(source)]
	if !ok {
		return ErrAccountNotFound
	}
	destAccount, ok := l.accounts[string(dest)]
	if !ok {
		return ErrAccountNotFound
	}

	var sourceToken, destToken token.Account
	if !sourceToken.Unmarshal(sourceAccount.data) || !destToken.Unmarshal(destAccount.data) {
		return vesting.ErrInvalidAccountData
	}

	if !bytes.Equal(sourceToken.Owner, authority) {
		return token.ErrorOwnerMismatch
	}
	if !bytes.Equal(sourceToken.Mint, destToken.Mint) {
		return token.ErrorMintMismatch
	}
	if sourceToken.Amount < amount {
		return token.ErrorInsufficientFunds
	}
	if destToken.Amount+amount < destToken.Amount {
		return ErrBalanceOverflow
	}

	sourceToken.Amount -= amount
	destToken.Amount += amount
	copy(sourceAccount.data, sourceToken.Marshal())
	copy(destAccount.data, destToken.Marshal())
	return nil
}

// Allocate creates a zeroed, rent-funded account at a derived address. Rent
// is charged to the payer at a flat per-byte rate.
func (l *Ledger) Allocate(payer, address ed25519.PublicKey, size uint64, owner ed25519.PublicKey, signerSeeds ...[]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.accounts[string(address)]; ok && len(existing.data) > 0 {
		return ErrAccountExists
	}

	derived, err := solana.CreateProgramAddress(owner, signerSeeds...)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, address) {
		return ErrInvalidSigner
	}

	payerAccount, ok := l.accounts[string(payer)]
	if !ok {
		return ErrAccountNotFound
	}

	rent := size * lamportsPerByte
	if payerAccount.lamports < rent {
		return ErrInsufficientLamport
	}
	payerAccount.lamports -= rent

	l.accounts[string(address)] = &account{
		owner:    owner,
		data:     make([]byte, size),
		lamports: rent,
	}
	return nil
}

// Lamports returns the lamport balance of an account, zero if absent.
func (l *Ledger) Lamports(address ed25519.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[string(address)]; ok {
		return acc.lamports
	}
	return 0
}

// View returns the processor's view of an account. Data aliases the live
// account buffer. Absent addresses view as empty system-owned accounts.
func (l *Ledger) View(address ed25519.PublicKey, isSigner bool) *vesting.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	view := &vesting.Account{
		Address:  address,
		Owner:    system.ProgramKey,
		IsSigner: isSigner,
	}
	if acc, ok := l.accounts[string(address)]; ok {
		view.Owner = acc.owner
		view.Data = acc.data
	}
	return view
}
