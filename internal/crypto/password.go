package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	passwordSaltBytes = 16
	passwordKeyBytes  = 32
)

// PasswordHasher hashes and verifies human-chosen passwords with Argon2id.
// Cost parameters are stored in the struct so they can be tuned per
// deployment; the encoded hash records the parameters it was produced
// with, so verification keeps working after a cost change.
type PasswordHasher struct {
	memoryKiB uint32
	time      uint32
	threads   uint8
}

// NewPasswordHasher constructs a PasswordHasher with the given Argon2id
// costs. Zero values fall back to the OWASP (2024) recommendation:
// 1 iteration, 64 MiB, 4 threads.
func NewPasswordHasher(memoryKiB, timeCost uint32, threads uint8) *PasswordHasher {
	if memoryKiB == 0 {
		memoryKiB = 64 * 1024
	}
	if timeCost == 0 {
		timeCost = 1
	}
	if threads == 0 {
		threads = 4
	}

	return &PasswordHasher{
		memoryKiB: memoryKiB,
		time:      timeCost,
		threads:   threads,
	}
}

// Hash derives an Argon2id hash of password under a fresh random salt and
// returns it in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Returns an error only if the random salt read fails.
func (p *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, passwordSaltBytes)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("error generating password salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.time, p.memoryKiB, p.threads, passwordKeyBytes)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memoryKiB,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify reports whether password matches the PHC-encoded hash. It re-runs
// the derivation with the parameters recorded in the hash and compares in
// constant time. A malformed or truncated hash yields false, never an
// error or a panic — callers treat any mismatch identically.
func (p *PasswordHasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memoryKiB, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &timeCost, &threads); err != nil {
		return false
	}
	if memoryKiB == 0 || timeCost == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memoryKiB, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1
}
