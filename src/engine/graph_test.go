package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"schemaforge/src/models"
)

func newTestGraph(t *testing.T) (*SchemaGraph, *models.Object, *models.Template) {
	t.Helper()
	g := NewSchemaGraph("test-business")

	o, err := g.AddObject("CRM")
	require.NoError(t, err)
	tmpl, err := g.AddTemplate(o.ObjectID, "Lead")
	require.NoError(t, err)
	return g, o, tmpl
}

func TestAddObject_RejectsDuplicateNamesCaseInsensitively(t *testing.T) {
	g := NewSchemaGraph("test-business")

	_, err := g.AddObject("CRM")
	require.NoError(t, err)

	_, err = g.AddObject("crm")
	require.Error(t, err)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "object", dup.Entity)

	_, err = g.AddObject("  ")
	var empty *EmptyNameError
	require.ErrorAs(t, err, &empty)
}

func TestAddObject_NameFreedAfterRemoval(t *testing.T) {
	g := NewSchemaGraph("test-business")

	o, err := g.AddObject("CRM")
	require.NoError(t, err)
	require.NoError(t, g.RemoveObject(o.ObjectID))

	// A removed object no longer blocks its name
	_, err = g.AddObject("CRM")
	require.NoError(t, err)
}

func TestRemoveObject_FailsWhileTemplatesLive(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	err := g.RemoveObject(o.ObjectID)
	var notEmpty *NotEmptyError
	require.ErrorAs(t, err, &notEmpty)

	// Tagging the template removed unblocks the object
	require.NoError(t, g.RemoveTemplate(o.ObjectID, tmpl.DocID))
	require.NoError(t, g.RemoveObject(o.ObjectID))
	require.True(t, o.Removed())
}

func TestRenameObject_RewritesTemplateMirrors(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	require.NoError(t, g.RenameObject(o.ObjectID, "Sales"))
	require.Equal(t, "Sales", o.Name)
	require.Equal(t, "Sales", tmpl.ObjectName)
	require.True(t, o.IsModified)
	require.Equal(t, models.ActionUpdate, o.Action)
}

func TestRenameObject_SameNameIsNoOp(t *testing.T) {
	g, o, _ := newTestGraph(t)
	g.Compact()

	require.NoError(t, g.RenameObject(o.ObjectID, "CRM"))
	require.False(t, o.IsModified)
	require.Equal(t, models.ActionNone, o.Action)
}

func TestAddTemplate_NameUniqueSystemWide(t *testing.T) {
	g, _, _ := newTestGraph(t)

	other, err := g.AddObject("HR")
	require.NoError(t, err)

	// "Lead" already exists under CRM; HR cannot reuse it
	_, err = g.AddTemplate(other.ObjectID, "lead")
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "template", dup.Entity)
}

func TestNewTemplate_BornWithProtectedHeaders(t *testing.T) {
	_, _, tmpl := newTestGraph(t)

	require.Len(t, tmpl.Headers, len(models.ProtectedHeaderKeys))
	recordData := tmpl.SectionByName(models.RecordDataSection)
	require.NotNil(t, recordData)
	require.Equal(t, models.ProtectedHeaderKeys, recordData.Keys)

	primary := tmpl.SectionByName(models.PrimarySection)
	require.NotNil(t, primary)
	require.Empty(t, primary.Keys)

	for _, key := range models.ProtectedHeaderKeys {
		require.Equal(t, models.RecordDataSection, tmpl.SectionOf(key))
		require.True(t, tmpl.HeaderUsed(key))
	}
}

func TestRenameTemplate_KeepsTypeOfRecordInSync(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	require.NoError(t, g.RenameTemplate(tmpl.DocID, "Client"))
	require.Equal(t, "Client", tmpl.Name)
	require.Equal(t, "Client", tmpl.TypeOfRecord)
}

func TestSections_RecordDataIsProtected(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	var protected *ProtectedFieldViolation
	err := g.RenameSection(tmpl.DocID, models.RecordDataSection, "Other")
	require.ErrorAs(t, err, &protected)

	err = g.RemoveSection(tmpl.DocID, models.RecordDataSection)
	require.ErrorAs(t, err, &protected)
}

func TestRemoveSection_OrphansHeadersAndAccumulatesKeys(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	section, err := g.AddSection(tmpl.DocID, "Details")
	require.NoError(t, err)

	a, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)
	b, err := g.AddHeader(tmpl.DocID, "Email", models.HeaderTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, section.Name, a.Key))
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, section.Name, b.Key))

	require.NoError(t, g.RemoveSection(tmpl.DocID, "Details"))

	// The headers survive, orphaned
	require.NotNil(t, tmpl.HeaderByKey(a.Key))
	require.NotNil(t, tmpl.HeaderByKey(b.Key))
	require.Equal(t, "", tmpl.SectionOf(a.Key))
	require.False(t, tmpl.HeaderUsed(a.Key))

	// Their keys feed the record-value cleanup accumulator in order
	require.Equal(t, []string{a.Key, b.Key}, g.DeletedHeaderKeys())
}

func TestAddHeader_ValidatesTypeAndName(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	_, err := g.AddHeader(tmpl.DocID, "Status", "bogus", nil)
	require.Error(t, err)

	h, err := g.AddHeader(tmpl.DocID, "Status", models.HeaderTypeDropdown, []string{"Open", "Closed"})
	require.NoError(t, err)
	require.NotEmpty(t, h.Key)
	require.Equal(t, []string{"Open", "Closed"}, h.Options)

	// A fresh header belongs to no section
	require.False(t, tmpl.HeaderUsed(h.Key))

	_, err = g.AddHeader(tmpl.DocID, "status", models.HeaderTypeText, nil)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
}

func TestUpdateHeader_TypeIsImmutable(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	h, err := g.AddHeader(tmpl.DocID, "Amount", models.HeaderTypeCurrency, nil)
	require.NoError(t, err)

	err = g.UpdateHeader(tmpl.DocID, h.Key, HeaderChange{Type: models.HeaderTypeText})
	var immutable *TypeImmutabilityError
	require.ErrorAs(t, err, &immutable)

	// Re-stating the existing type is not a change
	require.NoError(t, g.UpdateHeader(tmpl.DocID, h.Key, HeaderChange{Type: models.HeaderTypeCurrency}))
}

func TestUpdateHeader_ProtectedKeysRejected(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	var protected *ProtectedFieldViolation
	err := g.UpdateHeader(tmpl.DocID, "docId", HeaderChange{Name: "Document"})
	require.ErrorAs(t, err, &protected)

	err = g.RemoveHeader(tmpl.DocID, "assignedTo")
	require.ErrorAs(t, err, &protected)

	err = g.ToggleHeaderMembership(tmpl.DocID, models.PrimarySection, "linkId")
	require.ErrorAs(t, err, &protected)
}

func TestRemoveHeader_PullsKeyFromSectionAndAccumulates(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	h, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, models.PrimarySection, h.Key))

	require.NoError(t, g.RemoveHeader(tmpl.DocID, h.Key))
	require.Nil(t, tmpl.HeaderByKey(h.Key))
	require.NotContains(t, tmpl.SectionByName(models.PrimarySection).Keys, h.Key)
	require.Equal(t, []string{h.Key}, g.DeletedHeaderKeys())
}

func TestToggleHeaderMembership_AtMostOneSection(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	details, err := g.AddSection(tmpl.DocID, "Details")
	require.NoError(t, err)
	h, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)

	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, models.PrimarySection, h.Key))
	require.Equal(t, models.PrimarySection, tmpl.SectionOf(h.Key))

	// Moving to another section leaves exactly one membership
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, details.Name, h.Key))
	require.Equal(t, details.Name, tmpl.SectionOf(h.Key))
	require.Empty(t, tmpl.SectionByName(models.PrimarySection).Keys)

	// Toggling on the current section removes the membership
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, details.Name, h.Key))
	require.Equal(t, "", tmpl.SectionOf(h.Key))
}

func TestReorderSectionKeys_MovesWithRemoveThenInsert(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	section, err := g.AddSection(tmpl.DocID, "Details")
	require.NoError(t, err)
	var keys []string
	for _, name := range []string{"A", "B", "C"} {
		h, err := g.AddHeader(tmpl.DocID, name, models.HeaderTypeText, nil)
		require.NoError(t, err)
		require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, section.Name, h.Key))
		keys = append(keys, h.Key)
	}

	require.NoError(t, g.ReorderSectionKeys(tmpl.DocID, section.Name, 0, 2))
	require.Equal(t, []string{keys[1], keys[2], keys[0]}, section.Keys)

	err = g.ReorderSectionKeys(tmpl.DocID, section.Name, 0, 5)
	require.Error(t, err)
}

func TestReorderSectionKeys_ProtectedKeysStayPut(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	var protected *ProtectedFieldViolation
	err := g.ReorderSectionKeys(tmpl.DocID, models.RecordDataSection, 0, 1)
	require.ErrorAs(t, err, &protected)
}

func TestReorderSections(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	require.NoError(t, g.ReorderSections(tmpl.DocID, 0, 1))
	require.Equal(t, models.RecordDataSection, tmpl.Sections[0].Name)
	require.Equal(t, models.PrimarySection, tmpl.Sections[1].Name)
}

func TestCompact_DropsRemovedNodesAndClearsBookkeeping(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	h, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, g.RemoveHeader(tmpl.DocID, h.Key))
	require.NoError(t, g.RemoveTemplate(o.ObjectID, tmpl.DocID))

	g.Compact()

	require.Len(t, g.Objects, 1)
	require.Empty(t, g.Objects[0].Templates)
	require.Empty(t, g.DeletedHeaderKeys())
	require.False(t, g.Objects[0].IsModified)
	require.Equal(t, models.ActionNone, g.Objects[0].Action)
}

func TestTemplateByName_SkipsRemoved(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	require.NoError(t, g.RemoveTemplate(o.ObjectID, tmpl.DocID))
	_, _, err := g.TemplateByName("Lead")
	require.Error(t, err)

	// A removed template frees its system-wide name
	_, err = g.AddTemplate(o.ObjectID, "Lead")
	require.NoError(t, err)
}
