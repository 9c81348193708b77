// Package validator provides a small validation abstraction for request
// structs.
//
// Business code should depend on the Validator interface. The v10
// implementation reports failures keyed by json field name and adds the
// base32 and otpalg rules used by credential payloads.
package validator
