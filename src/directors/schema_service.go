package directors

import (
	"fmt"
	"log"

	"schemaforge/src/engine"
	"schemaforge/src/models"
	"schemaforge/src/settings"

	"go.uber.org/zap"
)

// SchemaService owns the live schema graph of one editing session. It
// wraps the engine's mutation API with logging and drives the submission
// flow against the persistence store.
type SchemaService struct {
	store    engine.GraphStore
	settings *settings.Arguments
	logger   *zap.SugaredLogger

	graph   *engine.SchemaGraph
	tracker *engine.ChangeTracker
}

func NewSchemaService(store engine.GraphStore, logger *zap.SugaredLogger,
	settings *settings.Arguments) (*SchemaService, error) {
	graph := engine.NewSchemaGraph(settings.BusinessID)

	// Resume from the last persisted baseline when one exists
	if store.GraphFileExists(settings.BusinessID) {
		state, err := store.LoadGraphDataFile(settings.BusinessID)
		if err != nil {
			log.Printf("Warning: Error loading schema graph: %v", err)
		} else {
			graph = engine.HydrateGraph(state)
			log.Printf("Schema service loaded %d objects for business '%s'", len(graph.Objects), settings.BusinessID)
		}
	}

	tracker, err := engine.NewChangeTracker(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to baseline schema graph: %w", err)
	}

	return &SchemaService{
		store:    store,
		settings: settings,
		logger:   logger,
		graph:    graph,
		tracker:  tracker,
	}, nil
}

func (s *SchemaService) Graph() *engine.SchemaGraph {
	return s.graph
}

// AddObject creates an object and immediately submits the graph. If the
// remote step errors the pre-operation object list is restored, so a
// failed create leaves no phantom object behind.
func (s *SchemaService) AddObject(name string) (*models.Object, error) {
	prev := append([]*models.Object(nil), s.graph.Objects...)

	object, err := s.graph.AddObject(name)
	if err != nil {
		return nil, err
	}

	if err := s.submit(); err != nil {
		s.graph.Objects = prev
		return nil, fmt.Errorf("failed to persist new object '%s': %w", name, err)
	}

	if s.settings.Debug {
		s.logger.Infof("Created object '%s' (ID: %s)", object.Name, object.ObjectID)
	}
	return object, nil
}

// RemoveObject tags an object for removal and submits. Like AddObject this
// is a revert-on-failure flow: a remote error restores the pre-operation
// array.
func (s *SchemaService) RemoveObject(id string) error {
	prev := make([]*models.Object, 0, len(s.graph.Objects))
	for _, o := range s.graph.Objects {
		prev = append(prev, o.Clone())
	}

	if err := s.graph.RemoveObject(id); err != nil {
		return err
	}

	if err := s.submit(); err != nil {
		s.graph.Objects = prev
		return fmt.Errorf("failed to persist object removal: %w", err)
	}

	if s.settings.Debug {
		s.logger.Infof("Removed object with ID %s", id)
	}
	return nil
}

func (s *SchemaService) RenameObject(id, newName string) error {
	return s.graph.RenameObject(id, newName)
}

func (s *SchemaService) AddTemplate(objectID, name string) (*models.Template, error) {
	t, err := s.graph.AddTemplate(objectID, name)
	if err != nil {
		return nil, err
	}
	if s.settings.Debug {
		s.logger.Infof("Created template '%s' (docId: %s)", t.Name, t.DocID)
	}
	return t, nil
}

func (s *SchemaService) RemoveTemplate(objectID, docID string) error {
	return s.graph.RemoveTemplate(objectID, docID)
}

func (s *SchemaService) RenameTemplate(docID, newName string) error {
	return s.graph.RenameTemplate(docID, newName)
}

func (s *SchemaService) AddSection(docID, name string) (*models.Section, error) {
	return s.graph.AddSection(docID, name)
}

func (s *SchemaService) RenameSection(docID, oldName, newName string) error {
	return s.graph.RenameSection(docID, oldName, newName)
}

func (s *SchemaService) RemoveSection(docID, name string) error {
	return s.graph.RemoveSection(docID, name)
}

func (s *SchemaService) AddHeader(docID, name string, headerType models.HeaderType, options []string) (*models.Header, error) {
	return s.graph.AddHeader(docID, name, headerType, options)
}

func (s *SchemaService) UpdateHeader(docID, key string, change engine.HeaderChange) error {
	return s.graph.UpdateHeader(docID, key, change)
}

func (s *SchemaService) RemoveHeader(docID, key string) error {
	return s.graph.RemoveHeader(docID, key)
}

func (s *SchemaService) ToggleHeaderMembership(docID, sectionName, key string) error {
	return s.graph.ToggleHeaderMembership(docID, sectionName, key)
}

func (s *SchemaService) ReorderSectionKeys(docID, sectionName string, fromIndex, toIndex int) error {
	return s.graph.ReorderSectionKeys(docID, sectionName, fromIndex, toIndex)
}

func (s *SchemaService) ReorderSections(docID string, fromIndex, toIndex int) error {
	return s.graph.ReorderSections(docID, fromIndex, toIndex)
}

// HasUnsavedChanges reports whether the live graph differs meaningfully
// from the baseline.
func (s *SchemaService) HasUnsavedChanges() (bool, error) {
	return s.tracker.HasChanges(s.graph)
}

// Save submits the accumulated session changes. It returns false when the
// graph matches the baseline and nothing was sent. On a remote failure the
// graph is left untouched so the user can simply retry.
func (s *SchemaService) Save() (bool, error) {
	hasChanges, err := s.tracker.HasChanges(s.graph)
	if err != nil {
		return false, err
	}
	if !hasChanges {
		if s.settings.Debug {
			s.logger.Infof("No schema changes to save for business '%s'", s.settings.BusinessID)
		}
		return false, nil
	}

	if err := s.submit(); err != nil {
		return false, fmt.Errorf("failed to save schema graph: %w", err)
	}
	return true, nil
}

// ExportTemplateCSV serializes records against a template's current header
// definitions. The record list is supplied by the caller, pre-filtered to
// the template's record type.
func (s *SchemaService) ExportTemplateCSV(docID string, records []map[string]interface{}) (string, error) {
	_, t, err := s.graph.TemplateByID(docID)
	if err != nil {
		return "", err
	}
	return engine.ExportTemplateCSV(t, records), nil
}

// submit sends the whole tagged graph to the store and, on success,
// reconciles the working set with the new baseline.
func (s *SchemaService) submit() error {
	req := engine.BuildSyncRequest(s.graph)
	if err := s.store.SubmitGraph(req); err != nil {
		return err
	}

	s.graph.Compact()
	if err := s.tracker.Rebaseline(s.graph); err != nil {
		return fmt.Errorf("failed to rebaseline after save: %w", err)
	}

	if s.settings.Debug {
		s.logger.Infof("Submitted schema graph for business '%s' (%d objects)", s.settings.BusinessID, len(req.Objects))
	}
	return nil
}
