package domain

import (
	"crypto/subtle"
	"fmt"

	"fusionswap/pkg/units"

	"github.com/ethereum/go-ethereum/crypto"
)

// HashLen is the fixed digest width. Keccak-256, matching the EVM-side escrow.
const HashLen = 32

// HashLock binds settlement to revelation of a pre-committed secret.
// Revealed flips exactly once, on the transition that consumes the secret.
type HashLock struct {
	SecretHash [HashLen]byte
	Revealed   bool
	RevealTime *units.Timestamp
}

// TimeLock gates when the secret may be revealed: not before the finality
// lock has elapsed, not after the cancellation timeout. All durations are
// seconds relative to CreatedAt.
type TimeLock struct {
	CreatedAt                 units.Timestamp
	FinalityLockDuration      units.Duration
	ExclusiveWithdrawDuration units.Duration
	CancellationTimeout       units.Duration
}

// RevealWindow returns the inclusive bounds within which a reveal is valid.
func (t *TimeLock) RevealWindow() (open, close units.Timestamp) {
	return t.CreatedAt.Add(t.FinalityLockDuration), t.CreatedAt.Add(t.CancellationTimeout)
}

// ExclusiveUntil is the end of the window during which only the recorded
// taker may withdraw.
func (t *TimeLock) ExclusiveUntil() units.Timestamp {
	return t.CreatedAt.Add(t.FinalityLockDuration).Add(t.ExclusiveWithdrawDuration)
}

// MakeHashLock commits to secret. The digest is Keccak-256 of the raw bytes.
func MakeHashLock(secret []byte) HashLock {
	digest := crypto.Keccak256(secret)
	if len(digest) != HashLen {
		panic(fmt.Sprintf("hashlock digest is %d bytes, want %d", len(digest), HashLen))
	}
	var lock HashLock
	copy(lock.SecretHash[:], digest)
	return lock
}

// VerifyAndReveal consumes the secret. On success the returned lock has
// Revealed set and RevealTime stamped with now; the input lock is unchanged.
// A second reveal attempt fails with ErrInvalidOrderState no matter the secret.
func VerifyAndReveal(lock HashLock, secret []byte, tl TimeLock, now units.Timestamp) (HashLock, error) {
	if lock.Revealed {
		return lock, fmt.Errorf("%w: hashlock already revealed", ErrInvalidOrderState)
	}

	digest := crypto.Keccak256(secret)
	if subtle.ConstantTimeCompare(digest, lock.SecretHash[:]) != 1 {
		return lock, fmt.Errorf("%w: digest mismatch", ErrInvalidSecret)
	}

	open, close := tl.RevealWindow()
	if now < open {
		return lock, fmt.Errorf("%w: finality lock active until %d", ErrTimelockViolation, open)
	}
	if now > close {
		return lock, fmt.Errorf("%w: cancellation timeout passed at %d", ErrTimelockViolation, close)
	}

	t := now
	lock.Revealed = true
	lock.RevealTime = &t
	return lock, nil
}
