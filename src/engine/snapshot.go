package engine

import (
	"crypto/sha256"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// ChangeTracker decides whether the live graph differs meaningfully from
// the last persisted baseline. Instead of diffing deep clones it compares
// content fingerprints of the normalized graph, so a check costs one
// canonical encoding rather than a structural walk of two copies.
type ChangeTracker struct {
	baseline [sha256.Size]byte
}

// NewChangeTracker captures the baseline fingerprint of a freshly loaded
// graph.
func NewChangeTracker(g *SchemaGraph) (*ChangeTracker, error) {
	fp, err := Fingerprint(g)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint baseline: %w", err)
	}
	return &ChangeTracker{baseline: fp}, nil
}

// HasChanges reports whether a save would persist anything. Volatile
// bookkeeping (timestamps, isModified) never trips it, but a non-empty
// deleted-keys accumulator always does, even when the rest of the graph is
// unchanged.
func (c *ChangeTracker) HasChanges(g *SchemaGraph) (bool, error) {
	if len(g.deletedHeaderKeys) > 0 {
		return true, nil
	}
	fp, err := Fingerprint(g)
	if err != nil {
		return false, fmt.Errorf("failed to fingerprint graph: %w", err)
	}
	return fp != c.baseline, nil
}

// Rebaseline replaces the baseline with the current graph state. This is
// the only point at which the working set and baseline are reconciled, and
// it runs solely after the persistence service acknowledged a submission.
func (c *ChangeTracker) Rebaseline(g *SchemaGraph) error {
	fp, err := Fingerprint(g)
	if err != nil {
		return fmt.Errorf("failed to fingerprint new baseline: %w", err)
	}
	c.baseline = fp
	return nil
}

// Fingerprint hashes the canonical BSON encoding of the graph's sync shape
// with every volatile field zeroed: template updatedAt is already stripped
// by the sync builder, pipeline timestamps and isModified flags are cleared
// here. A save is never suggested purely because a timestamp would differ.
func Fingerprint(g *SchemaGraph) ([sha256.Size]byte, error) {
	req := BuildSyncRequest(g)
	req.DeletedHeaderKeys = nil
	for i := range req.Objects {
		req.Objects[i].IsModified = false
		for j := range req.Objects[i].Pipelines {
			req.Objects[i].Pipelines[j].CreatedAt = time.Time{}
			req.Objects[i].Pipelines[j].UpdatedAt = time.Time{}
		}
	}

	raw, err := bson.Marshal(req)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("failed to encode graph for fingerprinting: %w", err)
	}
	return sha256.Sum256(raw), nil
}
