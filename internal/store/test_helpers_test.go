package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with plausible fields.
func createTestRun(fingerprint string) Run {
	return Run{
		ID:          NewRunID(),
		Fingerprint: fingerprint,
		Source:      "sim",
		Policy:      "prioritized",
		Timing:      "fast",
		Verdict:     "success",
		Invariants:  2,
		Residue:     "",
		Trace:       "T0 T1 T2 T5 T6 T9 T10 T11 ",
		Routes:      []int{0, 0, 0, 2},
		CreatedAt:   time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
}
