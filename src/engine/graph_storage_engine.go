package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"schemaforge/src/helpers"
	"schemaforge/src/models"
	"schemaforge/src/settings"

	"go.uber.org/zap"
)

// GraphStore is the persistence synchronization protocol consumed by this
// core. A submission carries the whole graph tagged with per-node actions;
// the store is expected to apply every add/update/remove transactionally
// and to purge stored record values for any key in deletedHeaderKeys.
// The response is success or failure only.
type GraphStore interface {
	SubmitGraph(req *models.SyncRequest) error
	LoadGraphDataFile(businessID string) (*models.SyncRequest, error)
	GraphFileExists(businessID string) bool
}

// GraphStorageEngine is the file-backed store used in standalone mode: one
// BSON data file per business, replaced atomically on every accepted
// submission.
type GraphStorageEngine struct {
	dataDir string
	logger  *zap.SugaredLogger
}

func NewGraphStore(dataDir string, logger *zap.SugaredLogger) (*GraphStorageEngine, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &GraphStorageEngine{dataDir: dataDir, logger: logger}, nil
}

func (s *GraphStorageEngine) graphFilePath(businessID string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s.schema", businessID))
}

func (s *GraphStorageEngine) GraphFileExists(businessID string) bool {
	return helpers.FileExists(s.graphFilePath(businessID), s.logger)
}

// SubmitGraph applies the submitted actions against the stored state and
// writes the result in one shot. The temp-file rename keeps the apply
// all-or-nothing: a failure part way leaves the previous file untouched.
func (s *GraphStorageEngine) SubmitGraph(req *models.SyncRequest) error {
	args := settings.GetSettings()

	applied := applyActions(req)

	data, err := helpers.EncodeBSON(applied)
	if err != nil {
		return fmt.Errorf("failed to encode schema graph for business '%s': %w", req.BusinessID, err)
	}

	finalPath := s.graphFilePath(req.BusinessID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema data file %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace schema data file %s: %w", finalPath, err)
	}

	if args.Debug {
		s.logger.Infof("Persisted schema graph for business '%s' (%d objects, %d deleted keys)",
			req.BusinessID, len(applied.Objects), len(req.DeletedHeaderKeys))
	}
	return nil
}

// LoadGraphDataFile reads the last persisted state for a business.
func (s *GraphStorageEngine) LoadGraphDataFile(businessID string) (*models.SyncRequest, error) {
	data, err := os.ReadFile(s.graphFilePath(businessID))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema data file for business '%s': %w", businessID, err)
	}

	var state models.SyncRequest
	if err := helpers.DecodeBSON(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode schema data file for business '%s': %w", businessID, err)
	}
	return &state, nil
}

// applyActions resolves the per-node action tags into the durable state:
// objects tagged remove disappear, everything else is stored with clean
// bookkeeping. Removed templates were already excluded by the caller, and
// the deleted keys have no stored record values here to purge.
func applyActions(req *models.SyncRequest) *models.SyncRequest {
	applied := &models.SyncRequest{
		BusinessID: req.BusinessID,
		Objects:    []models.SyncObject{},
	}
	for _, o := range req.Objects {
		if o.Action == string(models.ActionRemove) {
			continue
		}
		clean := o
		clean.Action = ""
		clean.IsModified = false
		applied.Objects = append(applied.Objects, clean)
	}
	return applied
}
