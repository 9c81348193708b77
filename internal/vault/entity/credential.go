package entity

import (
	"errors"
	"time"

	"github.com/shandysiswandi/totphog/internal/pkg/otp"
)

// DefaultIssuer is used when a credential is added without an issuer.
const DefaultIssuer = "TOTPHog"

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("vault: validation failed")

// ValidationError reports the field that broke a credential invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "vault: invalid " + e.Field + ": " + e.Reason
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Credential is one enrolled TOTP secret. It is never mutated after creation.
type Credential struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Secret    string        `json:"secret"`
	Issuer    string        `json:"issuer"`
	Digits    int           `json:"digits"`
	Period    int           `json:"period"`
	Algorithm otp.Algorithm `json:"algorithm"`
	CreatedAt time.Time     `json:"created_at"`
}

// Params returns the code generation parameters of c.
func (c Credential) Params() otp.Params {
	return otp.Params{
		Digits:    c.Digits,
		Period:    c.Period,
		Algorithm: c.Algorithm,
	}
}

// Key returns c in the shape used by the otpauth URI codec.
func (c Credential) Key() otp.Key {
	return otp.Key{
		Name:      c.Name,
		Issuer:    c.Issuer,
		Secret:    c.Secret,
		Digits:    c.Digits,
		Period:    c.Period,
		Algorithm: c.Algorithm.String(),
	}
}

// NewCredential is the input of an add. Zero values mean "use the default";
// negative or out of range values are rejected.
type NewCredential struct {
	// Name is the account label. Required.
	Name string
	// Secret is the Base32 shared key, stored verbatim. Required.
	Secret string
	// Issuer defaults to the store's default issuer (TOTPHog).
	Issuer string
	// Digits is the code length, 1..10, default 6.
	Digits int
	// Period is the time step in seconds, default 30.
	Period int
	// Algorithm is sha1, sha256 or sha512 in any case, default sha1.
	Algorithm string
}

// NewCredentialFromKey converts a decoded otpauth URI into add input.
func NewCredentialFromKey(k otp.Key) NewCredential {
	return NewCredential{
		Name:      k.Name,
		Secret:    k.Secret,
		Issuer:    k.Issuer,
		Digits:    k.Digits,
		Period:    k.Period,
		Algorithm: k.Algorithm,
	}
}

// CodeResult is a freshly generated code. It is never cached.
type CodeResult struct {
	Code             string    `json:"code"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Period           int       `json:"period"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// CredentialCode pairs a credential with its current code. Err is set
// instead of Code when generation failed for that credential.
type CredentialCode struct {
	Credential Credential
	Code       *CodeResult
	Err        error
}
