package store

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded reconciliation run.
type Run struct {
	// ID is a UUIDv7 assigned by RecordRun when empty.
	ID string `json:"id"`

	// Seq orders runs; assigned by the database.
	Seq int64 `json:"seq"`

	// Truth is the view kind that was canonical.
	Truth string `json:"truth"`

	// Fingerprint is ir.Fingerprint of the canonical IR.
	Fingerprint string `json:"fingerprint"`

	// Canonical is the canonical IR as JSON text.
	Canonical string `json:"canonical"`

	// DryRun is true when no file was written.
	DryRun bool `json:"dry_run"`

	// CreatedAt is display-only; see package docs.
	CreatedAt time.Time `json:"created_at"`

	// Results are in report order.
	Results []Result `json:"results"`
}

// Result is the recorded outcome for one representation.
type Result struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// Modified counts the modified results.
func (r *Run) Modified() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == "modified" {
			n++
		}
	}
	return n
}
