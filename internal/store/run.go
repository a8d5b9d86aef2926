package store

import (
	"time"

	"github.com/google/uuid"
)

// Run is one verified trace: where it came from, its content-addressed
// fingerprint, and the verdict of the reduction.
type Run struct {
	ID          string
	Fingerprint string
	Source      string
	Policy      string
	Timing      string
	Verdict     string
	Invariants  int
	Residue     string
	Trace       string
	Routes      []int
	CreatedAt   time.Time
}

// NewRunID returns a time-ordered unique run ID.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
