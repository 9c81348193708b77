package config

import (
	"io"
	"time"
)

// Config defines the contract for reading configuration values.
//
// Implementations of this interface should handle the retrieval and type conversion
// of values, returning the zero value when a key is absent.
type Config interface {
	io.Closer

	// GetSecond retrieves the value associated with key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetInt retrieves the value associated with key as an int.
	GetInt(key string) int

	// GetUint retrieves the value associated with key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value associated with key as a float64.
	GetFloat64(key string) float64

	// GetBool retrieves the value associated with key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value associated with key as a string.
	GetString(key string) string

	// GetBinary retrieves the value associated with key decoded from base64.
	GetBinary(key string) []byte

	// GetArray retrieves the value associated with key as a slice of strings.
	// Both YAML lists and comma separated strings are accepted; blank items are dropped.
	GetArray(key string) []string
}
