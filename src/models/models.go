package models

import (
	"strings"
	"time"
)

// Action marks what the persistence service should do with a node when the
// graph is submitted. Nodes tagged ActionRemove stay in memory until a
// successful submission establishes a fresh baseline.
type Action string

const (
	ActionNone   Action = ""
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// HeaderType is the value type of a field. It is decided at creation and
// fixed forever.
type HeaderType string

const (
	HeaderTypeText        HeaderType = "text"
	HeaderTypeNumber      HeaderType = "number"
	HeaderTypeDate        HeaderType = "date"
	HeaderTypeCurrency    HeaderType = "currency"
	HeaderTypeDropdown    HeaderType = "dropdown"
	HeaderTypeMultiSelect HeaderType = "multi-select"
)

// ValidHeaderType reports whether t is one of the known header types.
func ValidHeaderType(t HeaderType) bool {
	switch t {
	case HeaderTypeText, HeaderTypeNumber, HeaderTypeDate,
		HeaderTypeCurrency, HeaderTypeDropdown, HeaderTypeMultiSelect:
		return true
	}
	return false
}

// The five headers every template is born with. They live in the
// "Record Data" section and can never be deleted, retyped or moved.
const (
	RecordDataSection = "Record Data"
	PrimarySection    = "Primary Section"
)

var ProtectedHeaderKeys = []string{"docId", "linkId", "typeOfRecord", "typeOfObject", "assignedTo"}

// IsProtectedKey reports whether key is one of the five system field keys.
func IsProtectedKey(key string) bool {
	for _, k := range ProtectedHeaderKeys {
		if k == key {
			return true
		}
	}
	return false
}

type Object struct {
	// ObjectID is the unique identifier for the object.
	ObjectID string

	// Name is the name of the object. Unique across all objects,
	// case-insensitively.
	Name string

	Templates []*Template
	Pipelines []*Pipeline

	IsModified bool
	Action     Action
}

func (o *Object) Removed() bool { return o.Action == ActionRemove }

type Template struct {
	// DocID is the template identifier. Newly created templates carry a
	// locally generated UUID until the persistence service assigns a
	// permanent one.
	DocID string

	// Name is unique across all templates system-wide, case-insensitively.
	Name string

	// TypeOfRecord is kept identical to Name.
	TypeOfRecord string

	// ObjectName mirrors the owning object's name for the persistence payload.
	ObjectName string

	Headers  []*Header
	Sections []*Section

	IsModified bool
	Action     Action
	UpdatedAt  time.Time
}

func (t *Template) Removed() bool { return t.Action == ActionRemove }

// SectionOf returns the name of the section holding key, or "" when the
// header is not a member of any section. Section membership is stored only
// on the section side; this is the derived view.
func (t *Template) SectionOf(key string) string {
	for _, s := range t.Sections {
		for _, k := range s.Keys {
			if k == key {
				return s.Name
			}
		}
	}
	return ""
}

// HeaderUsed reports whether key belongs to any section of the template.
func (t *Template) HeaderUsed(key string) bool {
	return t.SectionOf(key) != ""
}

// HeaderByKey returns the header with the given key, or nil.
func (t *Template) HeaderByKey(key string) *Header {
	for _, h := range t.Headers {
		if h.Key == key {
			return h
		}
	}
	return nil
}

// HeaderByName returns the header with the given name (case-insensitive), or nil.
func (t *Template) HeaderByName(name string) *Header {
	for _, h := range t.Headers {
		if strings.EqualFold(h.Name, name) {
			return h
		}
	}
	return nil
}

// SectionByName returns the section with the given name (case-insensitive), or nil.
func (t *Template) SectionByName(name string) *Section {
	for _, s := range t.Sections {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

type Header struct {
	// Key is assigned once at creation and is immutable forever.
	Key string

	// Name is unique within the owning template, case-insensitively.
	Name string

	// Type never changes after creation.
	Type HeaderType

	// Options is present only for dropdown/multi-select headers.
	Options []string
}

type Section struct {
	// Name is unique within the owning template, case-insensitively.
	Name string

	// Keys holds header keys in display and export order.
	Keys []string
}

type Pipeline struct {
	PipelineID string
	Name       string

	// SourceTemplateID and TargetTemplateID must differ.
	SourceTemplateID string
	TargetTemplateID string

	Mappings []FieldMapping

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldMapping maps one header key of the source template onto one header
// key of the target template.
type FieldMapping struct {
	Source string
	Target string
}

// Clone returns a deep copy of the object and everything it owns.
func (o *Object) Clone() *Object {
	c := &Object{
		ObjectID:   o.ObjectID,
		Name:       o.Name,
		IsModified: o.IsModified,
		Action:     o.Action,
	}
	for _, t := range o.Templates {
		c.Templates = append(c.Templates, t.Clone())
	}
	for _, p := range o.Pipelines {
		c.Pipelines = append(c.Pipelines, p.Clone())
	}
	return c
}

func (t *Template) Clone() *Template {
	c := &Template{
		DocID:        t.DocID,
		Name:         t.Name,
		TypeOfRecord: t.TypeOfRecord,
		ObjectName:   t.ObjectName,
		IsModified:   t.IsModified,
		Action:       t.Action,
		UpdatedAt:    t.UpdatedAt,
	}
	for _, h := range t.Headers {
		c.Headers = append(c.Headers, h.Clone())
	}
	for _, s := range t.Sections {
		c.Sections = append(c.Sections, s.Clone())
	}
	return c
}

func (h *Header) Clone() *Header {
	c := &Header{Key: h.Key, Name: h.Name, Type: h.Type}
	c.Options = append([]string(nil), h.Options...)
	return c
}

func (s *Section) Clone() *Section {
	return &Section{Name: s.Name, Keys: append([]string(nil), s.Keys...)}
}

func (p *Pipeline) Clone() *Pipeline {
	c := &Pipeline{
		PipelineID:       p.PipelineID,
		Name:             p.Name,
		SourceTemplateID: p.SourceTemplateID,
		TargetTemplateID: p.TargetTemplateID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	c.Mappings = append([]FieldMapping(nil), p.Mappings...)
	return c
}
