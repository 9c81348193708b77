// Package otp implements one-time passwords for authenticator apps.
//
// The package has two layers. The pure layer computes HOTP (RFC 4226) and
// TOTP (RFC 6238) codes from raw key bytes and translates credentials to and
// from otpauth:// provisioning URIs. It holds no state and is safe for
// concurrent use.
//
// The TOTP type on top of it covers the authenticator-facing helpers: random
// secret generation, code verification with clock skew, and QR code
// rendering of a provisioning URI.
package otp
