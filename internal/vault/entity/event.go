package entity

import "time"

// EventType names a credential lifecycle change.
type EventType string

const (
	EventCredentialCreated EventType = "credential.created"
	EventCredentialDeleted EventType = "credential.deleted"
	EventCredentialCleared EventType = "credential.cleared"
)

// CredentialEvent describes a committed store mutation.
type CredentialEvent struct {
	Type         EventType
	CredentialID string
	Name         string
	Issuer       string
	Count        int
	OccurredAt   time.Time
}
