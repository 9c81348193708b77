package event

import "time"

// CredentialDestination is the default topic/subject for credential lifecycle events.
const CredentialDestination string = "totphog.credential"

// CredentialMessage is the wire body of a credential lifecycle event.
// It never carries the secret.
type CredentialMessage struct {
	Type         string    `json:"type"`
	CredentialID string    `json:"credential_id,omitempty"`
	Name         string    `json:"name,omitempty"`
	Issuer       string    `json:"issuer,omitempty"`
	Count        int       `json:"count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
