package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewAt generates a ULID whose timestamp part is t, so the ID sorts together
// with a record's created_at. ULIDs are safe for use as DynamoDB keys.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
