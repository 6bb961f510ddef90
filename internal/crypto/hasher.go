package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"io"
	"sync"
)

// opaqueTokenBytes is the entropy carried by every generated token.
// 32 bytes = 256 bits, encoded to a fixed 43-character base64url string.
const opaqueTokenBytes = 32

// Hasher computes keyed HMAC-SHA256 digests for opaque session tokens.
// The key is the process-wide session secret; equal inputs always produce
// equal digests, so stores can index rows by digest equality.
//
// Hasher keeps a pool of reusable HMAC instances to avoid repeated
// allocations on hot validation paths. It is constructed once at process
// start and injected into the stores that need it, never accessed as an
// ambient global.
type Hasher struct {
	pool sync.Pool
}

// NewHasher constructs a Hasher keyed with secret.
func NewHasher(secret string) *Hasher {
	return &Hasher{
		pool: sync.Pool{
			New: func() any {
				return hmac.New(sha256.New, []byte(secret))
			},
		},
	}
}

// TokenDigest computes the keyed digest of a plaintext session token and
// returns it hex-encoded. The digest is what gets persisted and looked up;
// the plaintext never reaches the store.
func (h *Hasher) TokenDigest(token string) string {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write([]byte(token))
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return hex.EncodeToString(sum)
}

// SetupDigest computes the unkeyed SHA-256 digest of a password-setup
// token, hex-encoded. Setup tokens are single-use and short-lived; a plain
// digest keeps them verifiable by any process without sharing the session
// secret.
func SetupDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewOpaqueToken generates a cryptographically secure opaque token:
// 256 bits from the OS CSPRNG encoded as a fixed-length base64url string.
// Returns an error only if the random source fails.
func NewOpaqueToken() (string, error) {
	raw := make([]byte, opaqueTokenBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
