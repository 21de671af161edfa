package directors

import (
	"fmt"

	"schemaforge/src/engine"
	"schemaforge/src/models"
	"schemaforge/src/settings"

	"go.uber.org/zap"
)

// PipelineService manages the conversion rules owned by objects. It
// resolves the names admin commands speak in to the identifiers the graph
// speaks in, and restricts the template/header pickers to live nodes.
type PipelineService struct {
	schema   *SchemaService
	settings *settings.Arguments
	logger   *zap.SugaredLogger
}

func NewPipelineService(schema *SchemaService, logger *zap.SugaredLogger,
	settings *settings.Arguments) *PipelineService {
	return &PipelineService{
		schema:   schema,
		settings: settings,
		logger:   logger,
	}
}

// AddPipeline creates a conversion rule from a parsed command.
func (s *PipelineService) AddPipeline(cmd *engine.PipelineCommand) (*models.Pipeline, error) {
	objectID, change, err := s.resolve(cmd)
	if err != nil {
		return nil, err
	}

	p, err := s.schema.Graph().AddPipeline(objectID, change)
	if err != nil {
		return nil, err
	}
	if s.settings.Debug {
		s.logger.Infof("Created pipeline '%s' (%s -> %s)", p.Name, cmd.SourceTemplate, cmd.TargetTemplate)
	}
	return p, nil
}

// UpdatePipeline replaces an existing rule's definition.
func (s *PipelineService) UpdatePipeline(cmd *engine.PipelineCommand) error {
	objectID, change, err := s.resolve(cmd)
	if err != nil {
		return err
	}
	existing, err := s.schema.Graph().PipelineByName(objectID, cmd.PipelineName)
	if err != nil {
		return err
	}
	return s.schema.Graph().UpdatePipeline(objectID, existing.PipelineID, change)
}

func (s *PipelineService) RemovePipeline(objectName, pipelineName string) error {
	object, err := s.schema.Graph().ObjectByName(objectName)
	if err != nil {
		return err
	}
	p, err := s.schema.Graph().PipelineByName(object.ObjectID, pipelineName)
	if err != nil {
		return err
	}
	return s.schema.Graph().RemovePipeline(object.ObjectID, p.PipelineID)
}

// TemplateChoices returns the templates a pipeline picker may offer for an
// object: the non-removed ones.
func (s *PipelineService) TemplateChoices(objectName string) ([]*models.Template, error) {
	object, err := s.schema.Graph().ObjectByName(objectName)
	if err != nil {
		return nil, err
	}
	return s.schema.Graph().ActiveTemplates(object.ObjectID)
}

// HeaderChoices returns the header keys a mapping picker may offer for a
// template.
func (s *PipelineService) HeaderChoices(templateName string) ([]string, error) {
	_, t, err := s.schema.Graph().TemplateByName(templateName)
	if err != nil {
		return nil, err
	}
	return s.schema.Graph().HeaderChoices(t.DocID)
}

// resolve maps command names onto graph identifiers. Source and target
// templates must be live; this is the picker-side guard that keeps most
// mappings referentially sound.
func (s *PipelineService) resolve(cmd *engine.PipelineCommand) (string, engine.PipelineChange, error) {
	object, err := s.schema.Graph().ObjectByName(cmd.ObjectName)
	if err != nil {
		return "", engine.PipelineChange{}, err
	}

	change := engine.PipelineChange{
		Name:     cmd.PipelineName,
		Mappings: cmd.Mappings,
	}
	if cmd.SourceTemplate != "" {
		_, src, err := s.schema.Graph().TemplateByName(cmd.SourceTemplate)
		if err != nil {
			return "", engine.PipelineChange{}, fmt.Errorf("source template: %w", err)
		}
		change.SourceTemplateID = src.DocID
	}
	if cmd.TargetTemplate != "" {
		_, dst, err := s.schema.Graph().TemplateByName(cmd.TargetTemplate)
		if err != nil {
			return "", engine.PipelineChange{}, fmt.Errorf("target template: %w", err)
		}
		change.TargetTemplateID = dst.DocID
	}

	return object.ObjectID, change, nil
}
