package otp

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

var base32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Code is a TOTP value together with its position in the time window.
type Code struct {
	Value            string
	Counter          uint64
	Period           int
	RemainingSeconds int
	At               time.Time
}

// DecodeSecret decodes Base32 secret text into key bytes.
//
// Decoding is case-insensitive and trailing padding is optional. Any other
// character outside A-Z and 2-7, or an empty result, yields ErrInvalidSecret.
func DecodeSecret(secret string) ([]byte, error) {
	text := strings.TrimRight(strings.ToUpper(secret), "=")
	if text == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidSecret)
	}

	for _, r := range text {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
			return nil, fmt.Errorf("%w: character %q is not base32", ErrInvalidSecret, r)
		}
	}

	key, err := base32NoPadding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}

	if len(key) == 0 {
		return nil, fmt.Errorf("%w: secret decodes to zero bytes", ErrInvalidSecret)
	}

	return key, nil
}

// Counter returns the TOTP moving factor floor(unix(at) / period).
func Counter(at time.Time, period int) uint64 {
	return uint64(at.Unix()) / uint64(period)
}

// GenerateHOTP computes an RFC 4226 code for key and counter.
func GenerateHOTP(key []byte, counter uint64, alg Algorithm, digits int) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: empty key", ErrInvalidSecret)
	}

	if digits < MinDigits || digits > MaxDigits {
		return "", fmt.Errorf("%w: digits must be between %d and %d, got %d", ErrInvalidParameter, MinDigits, MaxDigits, digits)
	}

	mac, err := alg.mac(key)
	if err != nil {
		return "", err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// dynamic truncation, RFC 4226 section 5.3
	offset := sum[len(sum)-1] & 0x0f
	value := uint64(binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff)

	mod := uint64(1)
	for range digits {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, value%mod), nil
}

// GenerateTOTP computes the RFC 6238 code for key at the given instant.
func GenerateTOTP(key []byte, p Params, at time.Time) (Code, error) {
	if err := p.Validate(); err != nil {
		return Code{}, err
	}

	unix := at.Unix()
	if unix < 0 {
		return Code{}, fmt.Errorf("%w: time %s is before the unix epoch", ErrInvalidParameter, at.UTC().Format(time.RFC3339))
	}

	counter := Counter(at, p.Period)
	value, err := GenerateHOTP(key, counter, p.Algorithm, p.Digits)
	if err != nil {
		return Code{}, err
	}

	return Code{
		Value:            value,
		Counter:          counter,
		Period:           p.Period,
		RemainingSeconds: p.Period - int(unix%int64(p.Period)),
		At:               at,
	}, nil
}
