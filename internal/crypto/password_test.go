package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// low costs keep the test suite fast; parameters are recorded in the hash
// so verification is unaffected.
func newTestPasswordHasher() *PasswordHasher {
	return NewPasswordHasher(8*1024, 1, 1)
}

func TestPasswordHash_VerifyRoundTrip(t *testing.T) {
	p := newTestPasswordHasher()

	encoded, err := p.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))
	assert.True(t, p.Verify("correct horse battery staple", encoded))
	assert.False(t, p.Verify("wrong password", encoded))
}

func TestPasswordHash_SaltedPerCall(t *testing.T) {
	p := newTestPasswordHasher()

	first, err := p.Hash("same password")
	require.NoError(t, err)
	second, err := p.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, p.Verify("same password", first))
	assert.True(t, p.Verify("same password", second))
}

func TestPasswordVerify_SurvivesCostChange(t *testing.T) {
	old := NewPasswordHasher(8*1024, 1, 1)
	encoded, err := old.Hash("password")
	require.NoError(t, err)

	// a rehash-tuned process must still verify old hashes
	current := NewPasswordHasher(16*1024, 2, 2)
	assert.True(t, current.Verify("password", encoded))
}

func TestPasswordVerify_MalformedHashReturnsFalse(t *testing.T) {
	p := newTestPasswordHasher()

	malformed := []string{
		"",
		"not a hash",
		"$argon2id$",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",  // wrong variant
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA", // wrong version
		"$argon2id$v=19$m=zero,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA", // bad salt encoding
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!", // bad key encoding
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA", // zero costs
	}

	for _, encoded := range malformed {
		assert.False(t, p.Verify("password", encoded), "hash %q must not verify", encoded)
	}
}
