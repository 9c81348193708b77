package otp

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	libOTP "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP defines the authenticator-facing TOTP operations.
type OTP interface {
	// Generate creates a random secret and its provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// Validate checks whether a code is valid at the given time, allowing clock skew.
	Validate(code, secret string, p Params, at time.Time) (bool, error)
	// QRCode renders a provisioning URI as a square PNG image.
	QRCode(uri string) ([]byte, error)
}

// TOTP implements OTP on top of github.com/pquerna/otp.
type TOTP struct {
	issuer string
	skew   uint
	qrSize int
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// A skew of 0 accepts codes from the adjacent period on either side. A qrSize
// of 0 renders 256x256 images.
func NewTOTP(issuer string, skew uint, qrSize int) *TOTP {
	if skew == 0 {
		skew = 1
	}

	if qrSize <= 0 {
		qrSize = 256
	}

	return &TOTP{
		issuer: issuer,
		skew:   skew,
		qrSize: qrSize,
	}
}

// Generate creates a random secret and its provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      DefaultPeriod,
		SecretSize:  20, // RFC 4226/6238 recommendation
		Digits:      libOTP.DigitsSix,
		Algorithm:   libOTP.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	uri = EncodeURI(Key{
		Name:      accountName,
		Issuer:    o.issuer,
		Secret:    key.Secret(),
		Digits:    DefaultDigits,
		Period:    DefaultPeriod,
		Algorithm: string(DefaultAlgorithm),
	})

	return key.Secret(), uri, nil
}

// Validate checks whether a code is valid at the given time, allowing clock skew.
func (o *TOTP) Validate(code, secret string, p Params, at time.Time) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	if _, err := DecodeSecret(secret); err != nil {
		return false, err
	}

	alg, err := p.Algorithm.lib()
	if err != nil {
		return false, err
	}

	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    uint(p.Period),
		Skew:      o.skew,
		Digits:    libOTP.Digits(p.Digits),
		Algorithm: alg,
	})
	if err != nil {
		// a code of the wrong length is simply not valid
		return false, nil //nolint:nilerr // mismatch is a negative result
	}

	return ok, nil
}

// QRCode renders a provisioning URI as a square PNG image.
func (o *TOTP) QRCode(uri string) ([]byte, error) {
	key, err := libOTP.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	img, err := key.Image(o.qrSize, o.qrSize)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (a Algorithm) lib() (libOTP.Algorithm, error) {
	switch a {
	case AlgorithmSHA1:
		return libOTP.AlgorithmSHA1, nil
	case AlgorithmSHA256:
		return libOTP.AlgorithmSHA256, nil
	case AlgorithmSHA512:
		return libOTP.AlgorithmSHA512, nil
	default:
		return 0, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidParameter, string(a))
	}
}
