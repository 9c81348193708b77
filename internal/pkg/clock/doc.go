// Package clock provides a tiny time abstraction.
//
// Code generation depends on the current time, so anything that derives a
// TOTP value should read time through Clocker. Tests freeze time with
// NewFixed to assert exact codes and remaining seconds.
package clock
