package engine

import (
	"fmt"
	"strings"
	"time"

	"schemaforge/src/models"
)

// PipelineChange carries the definition of a conversion rule: which
// template shape maps onto which, field by field. The engine never executes
// a pipeline; it only validates and stores the configuration a downstream
// executor consumes.
type PipelineChange struct {
	Name             string
	SourceTemplateID string
	TargetTemplateID string
	Mappings         []models.FieldMapping
}

// AddPipeline creates a validated pipeline under an object.
func (g *SchemaGraph) AddPipeline(objectID string, change PipelineChange) (*models.Pipeline, error) {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return nil, err
	}
	if err := validatePipeline(change); err != nil {
		return nil, err
	}

	p := g.factory.NewPipeline(change.Name, change.SourceTemplateID, change.TargetTemplateID, change.Mappings)
	o.Pipelines = append(o.Pipelines, p)
	touchObject(o)
	return p, nil
}

// UpdatePipeline replaces a pipeline's definition after revalidating it.
// Mapped keys are deliberately not checked against current header existence;
// the pickers exposed to callers are restricted to valid keys instead.
func (g *SchemaGraph) UpdatePipeline(objectID, pipelineID string, change PipelineChange) error {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return err
	}
	p, err := pipelineByID(o, pipelineID)
	if err != nil {
		return err
	}
	if err := validatePipeline(change); err != nil {
		return err
	}
	if pipelineUnchanged(p, change) {
		return nil
	}

	p.Name = change.Name
	p.SourceTemplateID = change.SourceTemplateID
	p.TargetTemplateID = change.TargetTemplateID
	p.Mappings = append([]models.FieldMapping(nil), change.Mappings...)
	p.UpdatedAt = time.Now()
	touchObject(o)
	return nil
}

func (g *SchemaGraph) RemovePipeline(objectID, pipelineID string) error {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return err
	}
	for i, p := range o.Pipelines {
		if p.PipelineID == pipelineID {
			o.Pipelines = append(o.Pipelines[:i], o.Pipelines[i+1:]...)
			touchObject(o)
			return nil
		}
	}
	return fmt.Errorf("pipeline with ID %s not found in object '%s'", pipelineID, o.Name)
}

// PipelineByName retrieves a pipeline by name (case insensitive).
func (g *SchemaGraph) PipelineByName(objectID, name string) (*models.Pipeline, error) {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return nil, err
	}
	for _, p := range o.Pipelines {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("pipeline '%s' not found in object '%s'", name, o.Name)
}

// validatePipeline names the first violated rule.
func validatePipeline(change PipelineChange) error {
	if strings.TrimSpace(change.Name) == "" {
		return &EmptyNameError{Entity: "pipeline"}
	}
	if change.SourceTemplateID == "" {
		return &InvalidPipelineError{Rule: "source template is required"}
	}
	if change.TargetTemplateID == "" {
		return &InvalidPipelineError{Rule: "target template is required"}
	}
	if change.SourceTemplateID == change.TargetTemplateID {
		return &InvalidPipelineError{Rule: "source and target template must differ"}
	}
	if len(change.Mappings) == 0 {
		return &InvalidPipelineError{Rule: "at least one field mapping is required"}
	}
	for _, m := range change.Mappings {
		if m.Source == "" || m.Target == "" {
			return &InvalidPipelineError{Rule: "every field mapping needs both source and target"}
		}
	}
	return nil
}

// pipelineUnchanged reports whether a replacement definition matches the
// stored one field for field, so re-applying it can skip the update.
func pipelineUnchanged(p *models.Pipeline, change PipelineChange) bool {
	if p.Name != change.Name ||
		p.SourceTemplateID != change.SourceTemplateID ||
		p.TargetTemplateID != change.TargetTemplateID ||
		len(p.Mappings) != len(change.Mappings) {
		return false
	}
	for i := range p.Mappings {
		if p.Mappings[i] != change.Mappings[i] {
			return false
		}
	}
	return true
}

func pipelineByID(o *models.Object, pipelineID string) (*models.Pipeline, error) {
	for _, p := range o.Pipelines {
		if p.PipelineID == pipelineID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("pipeline with ID %s not found in object '%s'", pipelineID, o.Name)
}
