package entity

import "time"

// Snapshot is an archived copy of the credential file in object storage.
type Snapshot struct {
	Bucket    string
	Key       string
	Size      int64
	Count     int
	CreatedAt time.Time
}
