package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schemaforge/src/models"
)

func TestBuildSyncRequest_MaterializesDerivedHeaderFields(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	h, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, models.PrimarySection, h.Key))

	req := BuildSyncRequest(g)
	require.Len(t, req.Objects, 1)
	require.Len(t, req.Objects[0].Templates, 1)

	var phone, docID *models.SyncHeader
	for i := range req.Objects[0].Templates[0].Headers {
		sh := &req.Objects[0].Templates[0].Headers[i]
		switch sh.Key {
		case h.Key:
			phone = sh
		case "docId":
			docID = sh
		}
	}
	require.NotNil(t, phone)
	require.Equal(t, models.PrimarySection, phone.Section)
	require.True(t, phone.IsUsed)

	require.NotNil(t, docID)
	require.Equal(t, models.RecordDataSection, docID.Section)
	require.True(t, docID.IsUsed)
}

func TestBuildSyncRequest_ExcludesRemovedTemplates(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	require.NoError(t, g.RemoveTemplate(o.ObjectID, tmpl.DocID))
	require.NoError(t, g.RemoveObject(o.ObjectID))

	req := BuildSyncRequest(g)
	require.Len(t, req.Objects, 1)
	require.Empty(t, req.Objects[0].Templates)
	require.Equal(t, string(models.ActionRemove), req.Objects[0].Action)
}

func TestBuildSyncRequest_CarriesDeletedKeys(t *testing.T) {
	g, _, tmpl := newTestGraph(t)

	h, err := g.AddHeader(tmpl.DocID, "Phone", models.HeaderTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, g.RemoveHeader(tmpl.DocID, h.Key))

	req := BuildSyncRequest(g)
	require.Equal(t, []string{h.Key}, req.DeletedHeaderKeys)
}

func TestHydrateGraph_RoundTrip(t *testing.T) {
	g, o, tmpl := newTestGraph(t)

	section, err := g.AddSection(tmpl.DocID, "Details")
	require.NoError(t, err)
	h, err := g.AddHeader(tmpl.DocID, "Status", models.HeaderTypeDropdown, []string{"Open", "Closed"})
	require.NoError(t, err)
	require.NoError(t, g.ToggleHeaderMembership(tmpl.DocID, section.Name, h.Key))

	other, err := g.AddTemplate(o.ObjectID, "Client")
	require.NoError(t, err)
	_, err = g.AddPipeline(o.ObjectID, PipelineChange{
		Name:             "Lead to Client",
		SourceTemplateID: tmpl.DocID,
		TargetTemplateID: other.DocID,
		Mappings:         []models.FieldMapping{{Source: h.Key, Target: "docId"}},
	})
	require.NoError(t, err)

	hydrated := HydrateGraph(BuildSyncRequest(g))

	require.Equal(t, g.BusinessID, hydrated.BusinessID)
	require.Len(t, hydrated.Objects, 1)
	ho := hydrated.Objects[0]
	require.False(t, ho.IsModified)
	require.Equal(t, models.ActionNone, ho.Action)

	_, ht, err := hydrated.TemplateByName("Lead")
	require.NoError(t, err)
	require.Equal(t, section.Name, ht.SectionOf(h.Key))
	require.Equal(t, []string{"Open", "Closed"}, ht.HeaderByKey(h.Key).Options)
	require.Len(t, ho.Pipelines, 1)
	require.Equal(t, h.Key, ho.Pipelines[0].Mappings[0].Source)

	// The hydrated graph is a clean baseline
	tracker, err := NewChangeTracker(hydrated)
	require.NoError(t, err)
	changed, err := tracker.HasChanges(hydrated)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestGraphStorageEngine_SubmitThenLoad(t *testing.T) {
	store, err := NewGraphStore(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)

	g, o, tmpl := newTestGraph(t)
	removed, err := g.AddObject("Scrapped")
	require.NoError(t, err)
	require.NoError(t, g.RemoveObject(removed.ObjectID))

	require.False(t, store.GraphFileExists(g.BusinessID))
	require.NoError(t, store.SubmitGraph(BuildSyncRequest(g)))
	require.True(t, store.GraphFileExists(g.BusinessID))

	state, err := store.LoadGraphDataFile(g.BusinessID)
	require.NoError(t, err)
	require.Equal(t, g.BusinessID, state.BusinessID)

	// The removal was applied and bookkeeping cleared on the way down
	require.Len(t, state.Objects, 1)
	require.Equal(t, o.Name, state.Objects[0].Name)
	require.Empty(t, state.Objects[0].Action)
	require.False(t, state.Objects[0].IsModified)
	require.Equal(t, tmpl.Name, state.Objects[0].Templates[0].Name)
}

func TestGraphStorageEngine_LoadMissingFileFails(t *testing.T) {
	store, err := NewGraphStore(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)

	_, err = store.LoadGraphDataFile("nobody")
	require.Error(t, err)
}
