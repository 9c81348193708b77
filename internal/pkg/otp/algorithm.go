package otp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 4226 mandates HMAC-SHA1 as the default
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

var (
	// ErrInvalidParameter is returned when digits, period, algorithm or time
	// fall outside the supported range.
	ErrInvalidParameter = errors.New("otp: invalid parameter")
	// ErrInvalidSecret is returned when a secret is not valid Base32 or
	// decodes to zero bytes.
	ErrInvalidSecret = errors.New("otp: invalid secret")
)

// Algorithm names the HMAC hash function used to derive codes.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmSHA1   Algorithm = "sha1"
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

// Defaults applied when a credential leaves a parameter unset.
const (
	DefaultDigits    = 6
	DefaultPeriod    = 30
	DefaultAlgorithm = AlgorithmSHA1

	MinDigits = 1
	MaxDigits = 10
)

// ParseAlgorithm maps a case-insensitive algorithm name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	switch alg {
	case AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512:
		return alg, nil
	default:
		return "", fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidParameter, s)
	}
}

// String returns the lowercase algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

func (a Algorithm) hasher() (func() hash.Hash, error) {
	switch a {
	case AlgorithmSHA1:
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidParameter, string(a))
	}
}

func (a Algorithm) mac(key []byte) (hash.Hash, error) {
	h, err := a.hasher()
	if err != nil {
		return nil, err
	}

	return hmac.New(h, key), nil
}

// Params holds the code shape of a credential.
type Params struct {
	// Digits is the code length. Default 6, valid range 1..10.
	Digits int
	// Period is the TOTP step in seconds. Default 30, must be positive.
	Period int
	// Algorithm is the HMAC hash. Default sha1.
	Algorithm Algorithm
}

// DefaultParams returns the parameters most authenticator apps assume.
func DefaultParams() Params {
	return Params{
		Digits:    DefaultDigits,
		Period:    DefaultPeriod,
		Algorithm: DefaultAlgorithm,
	}
}

// Validate reports ErrInvalidParameter for any field out of range.
func (p Params) Validate() error {
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return fmt.Errorf("%w: digits must be between %d and %d, got %d", ErrInvalidParameter, MinDigits, MaxDigits, p.Digits)
	}

	if p.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %d", ErrInvalidParameter, p.Period)
	}

	if _, err := p.Algorithm.hasher(); err != nil {
		return err
	}

	return nil
}
