package engine

import (
	"fmt"
	"strings"
	"time"

	"schemaforge/src/models"
)

// SchemaGraph is the live, in-memory schema of one business: objects owning
// templates and pipelines, plus the accumulator of header keys deleted
// during the session. Exactly one editor session mutates a graph at a time;
// every mutation is synchronous and all-or-nothing.
type SchemaGraph struct {
	BusinessID string
	Objects    []*models.Object

	factory           SchemaFactory
	deletedHeaderKeys []string
}

func NewSchemaGraph(businessID string) *SchemaGraph {
	return &SchemaGraph{
		BusinessID: businessID,
		Objects:    []*models.Object{},
		factory:    NewSchemaFactory(),
	}
}

// DeletedHeaderKeys returns the keys removed during this session, in
// deletion order. The persistence service uses them to purge stored record
// values for those fields.
func (g *SchemaGraph) DeletedHeaderKeys() []string {
	return append([]string(nil), g.deletedHeaderKeys...)
}

// ActiveObjects returns the objects not tagged for removal.
func (g *SchemaGraph) ActiveObjects() []*models.Object {
	objects := make([]*models.Object, 0, len(g.Objects))
	for _, o := range g.Objects {
		if !o.Removed() {
			objects = append(objects, o)
		}
	}
	return objects
}

// ObjectByID retrieves an object by its ID.
func (g *SchemaGraph) ObjectByID(id string) (*models.Object, error) {
	for _, o := range g.Objects {
		if o.ObjectID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("object with ID %s not found", id)
}

// ObjectByName retrieves a non-removed object by name (case insensitive).
func (g *SchemaGraph) ObjectByName(name string) (*models.Object, error) {
	for _, o := range g.Objects {
		if !o.Removed() && strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("object '%s' not found", name)
}

// TemplateByID retrieves a non-removed template and its owning object.
func (g *SchemaGraph) TemplateByID(docID string) (*models.Object, *models.Template, error) {
	for _, o := range g.Objects {
		for _, t := range o.Templates {
			if t.DocID == docID && !t.Removed() {
				return o, t, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("template with ID %s not found", docID)
}

// TemplateByName retrieves a non-removed template by name (case insensitive).
func (g *SchemaGraph) TemplateByName(name string) (*models.Object, *models.Template, error) {
	for _, o := range g.Objects {
		for _, t := range o.Templates {
			if !t.Removed() && strings.EqualFold(t.Name, name) {
				return o, t, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("template '%s' not found", name)
}

// ActiveTemplates returns the non-removed templates of an object, the view
// pipeline template pickers are restricted to.
func (g *SchemaGraph) ActiveTemplates(objectID string) ([]*models.Template, error) {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return nil, err
	}
	templates := make([]*models.Template, 0, len(o.Templates))
	for _, t := range o.Templates {
		if !t.Removed() {
			templates = append(templates, t)
		}
	}
	return templates, nil
}

// HeaderChoices returns the keys a field mapping picker may offer for a
// template. Stale mappings can only arise from headers deleted after a
// pipeline referenced them.
func (g *SchemaGraph) HeaderChoices(docID string) ([]string, error) {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		keys = append(keys, h.Key)
	}
	return keys, nil
}

// AddObject appends a new object with empty template and pipeline lists.
func (g *SchemaGraph) AddObject(name string) (*models.Object, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyNameError{Entity: "object"}
	}
	for _, o := range g.Objects {
		if !o.Removed() && strings.EqualFold(o.Name, name) {
			return nil, &DuplicateNameError{Entity: "object", Name: name}
		}
	}

	object := g.factory.NewObject(name)
	g.Objects = append(g.Objects, object)
	return object, nil
}

// RemoveObject tags an object for removal. The object must not own any
// live template. Nothing is ever physically deleted here.
func (g *SchemaGraph) RemoveObject(id string) error {
	o, err := g.ObjectByID(id)
	if err != nil {
		return err
	}
	for _, t := range o.Templates {
		if !t.Removed() {
			return &NotEmptyError{ObjectName: o.Name}
		}
	}

	o.Action = models.ActionRemove
	o.IsModified = true
	return nil
}

// RenameObject renames an object and rewrites the cached objectName mirror
// on every owned template.
func (g *SchemaGraph) RenameObject(id, newName string) error {
	o, err := g.ObjectByID(id)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &EmptyNameError{Entity: "object"}
	}
	if o.Name == newName {
		return nil
	}
	for _, other := range g.Objects {
		if other != o && !other.Removed() && strings.EqualFold(other.Name, newName) {
			return &DuplicateNameError{Entity: "object", Name: newName}
		}
	}

	o.Name = newName
	for _, t := range o.Templates {
		t.ObjectName = newName
	}
	touchObject(o)
	return nil
}

// AddTemplate creates a template under an object. Template names are unique
// across the whole system, not just within the owning object.
func (g *SchemaGraph) AddTemplate(objectID, name string) (*models.Template, error) {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyNameError{Entity: "template"}
	}
	if g.templateNameTaken(name, "") {
		return nil, &DuplicateNameError{Entity: "template", Name: name}
	}

	t := g.factory.NewTemplate(name, o.Name)
	o.Templates = append(o.Templates, t)
	o.IsModified = true
	return t, nil
}

// RemoveTemplate tags a template for removal and marks the owning object
// modified so the backend knows an owned child changed.
func (g *SchemaGraph) RemoveTemplate(objectID, docID string) error {
	o, err := g.ObjectByID(objectID)
	if err != nil {
		return err
	}
	for _, t := range o.Templates {
		if t.DocID == docID {
			t.Action = models.ActionRemove
			t.IsModified = true
			o.IsModified = true
			return nil
		}
	}
	return fmt.Errorf("template with ID %s not found in object '%s'", docID, o.Name)
}

func (g *SchemaGraph) RenameTemplate(docID, newName string) error {
	o, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &EmptyNameError{Entity: "template"}
	}
	if t.Name == newName {
		return nil
	}
	if g.templateNameTaken(newName, docID) {
		return &DuplicateNameError{Entity: "template", Name: newName}
	}

	t.Name = newName
	t.TypeOfRecord = newName
	touchTemplate(t)
	o.IsModified = true
	return nil
}

func (g *SchemaGraph) templateNameTaken(name, excludeDocID string) bool {
	for _, o := range g.Objects {
		for _, t := range o.Templates {
			if t.DocID == excludeDocID || t.Removed() {
				continue
			}
			if strings.EqualFold(t.Name, name) {
				return true
			}
		}
	}
	return false
}

// AddSection appends an empty section to a template.
func (g *SchemaGraph) AddSection(docID, name string) (*models.Section, error) {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyNameError{Entity: "section"}
	}
	if t.SectionByName(name) != nil {
		return nil, &DuplicateNameError{Entity: "section", Name: name}
	}

	section := &models.Section{Name: name}
	t.Sections = append(t.Sections, section)
	touchTemplate(t)
	return section, nil
}

func (g *SchemaGraph) RenameSection(docID, oldName, newName string) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	section := t.SectionByName(oldName)
	if section == nil {
		return fmt.Errorf("section '%s' not found in template '%s'", oldName, t.Name)
	}
	if strings.EqualFold(section.Name, models.RecordDataSection) {
		return &ProtectedFieldViolation{Field: models.RecordDataSection, Reason: "section cannot be renamed"}
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &EmptyNameError{Entity: "section"}
	}
	if section.Name == newName {
		return nil
	}
	if existing := t.SectionByName(newName); existing != nil && existing != section {
		return &DuplicateNameError{Entity: "section", Name: newName}
	}

	section.Name = newName
	touchTemplate(t)
	return nil
}

// RemoveSection deletes a section. Headers that referenced it become
// orphaned, not deleted, and every key the section held is fed to the
// deleted-keys accumulator for record-value cleanup.
func (g *SchemaGraph) RemoveSection(docID, name string) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	section := t.SectionByName(name)
	if section == nil {
		return fmt.Errorf("section '%s' not found in template '%s'", name, t.Name)
	}
	if strings.EqualFold(section.Name, models.RecordDataSection) {
		return &ProtectedFieldViolation{Field: models.RecordDataSection, Reason: "section cannot be deleted"}
	}
	for _, key := range section.Keys {
		if models.IsProtectedKey(key) {
			return &ProtectedFieldViolation{Field: key, Reason: "section holding a protected header cannot be deleted"}
		}
	}

	g.deletedHeaderKeys = append(g.deletedHeaderKeys, section.Keys...)
	for i, s := range t.Sections {
		if s == section {
			t.Sections = append(t.Sections[:i], t.Sections[i+1:]...)
			break
		}
	}
	touchTemplate(t)
	return nil
}

// AddHeader creates a new unassigned header. The key is generated here and
// never changes afterwards.
func (g *SchemaGraph) AddHeader(docID, name string, headerType models.HeaderType, options []string) (*models.Header, error) {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyNameError{Entity: "header"}
	}
	if t.HeaderByName(name) != nil {
		return nil, &DuplicateNameError{Entity: "header", Name: name}
	}
	if !models.ValidHeaderType(headerType) {
		return nil, fmt.Errorf("unknown header type '%s'", headerType)
	}

	header := &models.Header{
		Key:  newHeaderKey(),
		Name: name,
		Type: headerType,
	}
	if headerType == models.HeaderTypeDropdown || headerType == models.HeaderTypeMultiSelect {
		header.Options = append([]string(nil), options...)
	}
	t.Headers = append(t.Headers, header)
	touchTemplate(t)
	return header, nil
}

// HeaderChange carries the updatable parts of a header. A zero Name or nil
// Options means "leave unchanged"; a non-empty Type must match the existing
// one or the call fails.
type HeaderChange struct {
	Name    string
	Type    models.HeaderType
	Options []string
}

func (g *SchemaGraph) UpdateHeader(docID, key string, change HeaderChange) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	header := t.HeaderByKey(key)
	if header == nil {
		return fmt.Errorf("header with key %s not found in template '%s'", key, t.Name)
	}
	if models.IsProtectedKey(key) {
		return &ProtectedFieldViolation{Field: key, Reason: "header cannot be updated"}
	}
	if change.Type != "" && change.Type != header.Type {
		return &TypeImmutabilityError{Key: key, From: string(header.Type), To: string(change.Type)}
	}
	newName := strings.TrimSpace(change.Name)
	if newName != "" && !strings.EqualFold(newName, header.Name) {
		if t.HeaderByName(newName) != nil {
			return &DuplicateNameError{Entity: "header", Name: newName}
		}
	}

	changed := false
	if newName != "" && newName != header.Name {
		header.Name = newName
		changed = true
	}
	if change.Options != nil && !equalStrings(change.Options, header.Options) {
		header.Options = append([]string(nil), change.Options...)
		changed = true
	}
	if changed {
		touchTemplate(t)
	}
	return nil
}

// RemoveHeader deletes a header, pulls its key out of whatever section held
// it and records the key for record-value cleanup.
func (g *SchemaGraph) RemoveHeader(docID, key string) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	if models.IsProtectedKey(key) {
		return &ProtectedFieldViolation{Field: key, Reason: "header cannot be deleted"}
	}
	header := t.HeaderByKey(key)
	if header == nil {
		return fmt.Errorf("header with key %s not found in template '%s'", key, t.Name)
	}

	for i, h := range t.Headers {
		if h == header {
			t.Headers = append(t.Headers[:i], t.Headers[i+1:]...)
			break
		}
	}
	for _, s := range t.Sections {
		removeKey(s, key)
	}
	g.deletedHeaderKeys = append(g.deletedHeaderKeys, key)
	touchTemplate(t)
	return nil
}

// ToggleHeaderMembership moves a header's key into a section, or out of it
// when the section already holds the key. A header belongs to at most one
// section at a time.
func (g *SchemaGraph) ToggleHeaderMembership(docID, sectionName, key string) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	section := t.SectionByName(sectionName)
	if section == nil {
		return fmt.Errorf("section '%s' not found in template '%s'", sectionName, t.Name)
	}
	if models.IsProtectedKey(key) {
		return &ProtectedFieldViolation{Field: key, Reason: "header cannot leave '" + models.RecordDataSection + "'"}
	}
	if t.HeaderByKey(key) == nil {
		return fmt.Errorf("header with key %s not found in template '%s'", key, t.Name)
	}

	if removeKey(section, key) {
		touchTemplate(t)
		return nil
	}
	for _, s := range t.Sections {
		removeKey(s, key)
	}
	section.Keys = append(section.Keys, key)
	touchTemplate(t)
	return nil
}

// ReorderSectionKeys moves the key at fromIndex to toIndex within a section
// using remove-then-insert semantics. Key order is display and export order.
func (g *SchemaGraph) ReorderSectionKeys(docID, sectionName string, fromIndex, toIndex int) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	section := t.SectionByName(sectionName)
	if section == nil {
		return fmt.Errorf("section '%s' not found in template '%s'", sectionName, t.Name)
	}
	if fromIndex < 0 || fromIndex >= len(section.Keys) || toIndex < 0 || toIndex >= len(section.Keys) {
		return fmt.Errorf("reorder index out of range for section '%s'", sectionName)
	}
	if models.IsProtectedKey(section.Keys[fromIndex]) {
		return &ProtectedFieldViolation{Field: section.Keys[fromIndex], Reason: "header cannot be moved"}
	}
	if fromIndex == toIndex {
		return nil
	}

	key := section.Keys[fromIndex]
	section.Keys = append(section.Keys[:fromIndex], section.Keys[fromIndex+1:]...)
	section.Keys = append(section.Keys[:toIndex], append([]string{key}, section.Keys[toIndex:]...)...)
	touchTemplate(t)
	return nil
}

// ReorderSections moves the section at fromIndex to toIndex.
func (g *SchemaGraph) ReorderSections(docID string, fromIndex, toIndex int) error {
	_, t, err := g.TemplateByID(docID)
	if err != nil {
		return err
	}
	if fromIndex < 0 || fromIndex >= len(t.Sections) || toIndex < 0 || toIndex >= len(t.Sections) {
		return fmt.Errorf("reorder index out of range for template '%s'", t.Name)
	}
	if fromIndex == toIndex {
		return nil
	}

	section := t.Sections[fromIndex]
	t.Sections = append(t.Sections[:fromIndex], t.Sections[fromIndex+1:]...)
	t.Sections = append(t.Sections[:toIndex], append([]*models.Section{section}, t.Sections[toIndex:]...)...)
	touchTemplate(t)
	return nil
}

// Compact physically drops removed nodes and clears the session bookkeeping.
// Called only after the persistence service acknowledged a submission.
func (g *SchemaGraph) Compact() {
	objects := g.Objects[:0]
	for _, o := range g.Objects {
		if o.Removed() {
			continue
		}
		templates := o.Templates[:0]
		for _, t := range o.Templates {
			if t.Removed() {
				continue
			}
			t.Action = models.ActionNone
			t.IsModified = false
			templates = append(templates, t)
		}
		o.Templates = templates
		o.Action = models.ActionNone
		o.IsModified = false
		objects = append(objects, o)
	}
	g.Objects = objects
	g.deletedHeaderKeys = nil
}

func touchObject(o *models.Object) {
	o.IsModified = true
	if o.Action == models.ActionNone {
		o.Action = models.ActionUpdate
	}
}

// An existing add/remove action is preserved, never downgraded to update.
func touchTemplate(t *models.Template) {
	t.IsModified = true
	t.UpdatedAt = time.Now()
	if t.Action == models.ActionNone {
		t.Action = models.ActionUpdate
	}
}

func removeKey(s *models.Section, key string) bool {
	for i, k := range s.Keys {
		if k == key {
			s.Keys = append(s.Keys[:i], s.Keys[i+1:]...)
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
