package engine

import (
	"time"

	"schemaforge/src/helpers"
	"schemaforge/src/models"
)

// SchemaFactory builds fresh graph nodes with their identifiers assigned.
type SchemaFactory interface {
	NewObject(name string) *models.Object
	NewTemplate(name, objectName string) *models.Template
	NewPipeline(name, sourceTemplateID, targetTemplateID string, mappings []models.FieldMapping) *models.Pipeline
}

type SchemaFactoryImpl struct{}

// newHeaderKey mints the immutable key for a non-protected header.
func newHeaderKey() string {
	return helpers.GenerateUUID()
}

func NewSchemaFactory() SchemaFactory {
	return &SchemaFactoryImpl{}
}

func (f *SchemaFactoryImpl) NewObject(name string) *models.Object {
	return &models.Object{
		ObjectID:   helpers.GenerateUUID(),
		Name:       name,
		Templates:  []*models.Template{},
		Pipelines:  []*models.Pipeline{},
		IsModified: true,
		Action:     models.ActionAdd,
	}
}

// NewTemplate pre-populates the five protected headers and the two default
// sections. "Record Data" owns the protected keys from birth; the primary
// section starts empty.
func (f *SchemaFactoryImpl) NewTemplate(name, objectName string) *models.Template {
	t := &models.Template{
		DocID:        helpers.GenerateUUID(),
		Name:         name,
		TypeOfRecord: name,
		ObjectName:   objectName,
		IsModified:   true,
		Action:       models.ActionAdd,
		UpdatedAt:    time.Now(),
	}

	recordData := &models.Section{Name: models.RecordDataSection}
	for _, key := range models.ProtectedHeaderKeys {
		t.Headers = append(t.Headers, &models.Header{
			Key:  key,
			Name: key,
			Type: models.HeaderTypeText,
		})
		recordData.Keys = append(recordData.Keys, key)
	}

	t.Sections = []*models.Section{
		{Name: models.PrimarySection},
		recordData,
	}
	return t
}

func (f *SchemaFactoryImpl) NewPipeline(name, sourceTemplateID, targetTemplateID string, mappings []models.FieldMapping) *models.Pipeline {
	now := time.Now()
	return &models.Pipeline{
		PipelineID:       helpers.GenerateUUID(),
		Name:             name,
		SourceTemplateID: sourceTemplateID,
		TargetTemplateID: targetTemplateID,
		Mappings:         append([]models.FieldMapping(nil), mappings...),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
