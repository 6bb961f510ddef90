package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature verification errors. All of them collapse to a single
// authenticity failure at the API boundary; the distinction exists for
// structured logs only.
var (
	ErrSignatureMissing   = errors.New("signature header is missing")
	ErrSignatureMalformed = errors.New("signature header is malformed")
	ErrSignatureMismatch  = errors.New("signature does not match payload")
	ErrSignatureExpired   = errors.New("signature timestamp outside tolerance")
)

// VerifyEventSignature checks the authenticity of a raw payment event
// against the shared secret.
//
// The header carries the provider's signing scheme:
//
//	t=<unix timestamp>,v1=<hex hmac-sha256>
//
// where the MAC is computed over "<timestamp>.<body>". The timestamp must
// be within tolerance of now to defeat replay of captured deliveries;
// tolerance <= 0 disables the freshness check.
func VerifyEventSignature(body []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrSignatureMissing
	}

	var timestamp string
	var signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return ErrSignatureMalformed
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return ErrSignatureMalformed
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMalformed, err)
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrSignatureExpired
		}
	}

	want, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMalformed, err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	if !hmac.Equal(mac.Sum(nil), want) {
		return ErrSignatureMismatch
	}

	return nil
}
