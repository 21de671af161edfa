package directors

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schemaforge/src/engine"
)

func newTestManager(t *testing.T) (ServiceManager, *fakeGraphStore) {
	t.Helper()
	svc, store := newTestService(t)
	pipelines := NewPipelineService(svc, zap.NewNop().Sugar(), svc.settings)
	return ServiceManager{SchemaService: svc, PipelineService: pipelines}, store
}

func run(t *testing.T, sm ServiceManager, command string) *engine.CommandResponse {
	t.Helper()
	result, err := CommandDirector(sm, command, zap.NewNop().Sugar())
	require.NoError(t, err, "command failed: %s", command)
	response, ok := result.(*engine.CommandResponse)
	require.True(t, ok)
	return response
}

func TestCommandDirector_FullSession(t *testing.T) {
	sm, store := newTestManager(t)

	run(t, sm, `CREATE OBJECT "CRM";`)
	run(t, sm, `CREATE TEMPLATE "Lead" IN OBJECT "CRM"`)
	run(t, sm, `CREATE TEMPLATE "Client" IN OBJECT "CRM"`)
	run(t, sm, `ADD SECTION "Details" TO TEMPLATE "Lead"`)
	run(t, sm, `ADD HEADER "Status" TYPE dropdown TO TEMPLATE "Lead" WITH OPTIONS ("Open", "Closed")`)
	run(t, sm, `MOVE HEADER "Status" TO SECTION "Details" IN TEMPLATE "Lead"`)
	run(t, sm, `CREATE PIPELINE "Lead to Client" IN OBJECT "CRM" FROM TEMPLATE "Lead" TO TEMPLATE "Client" WITH MAPPINGS ({name => name})`)

	response := run(t, sm, `SELECT OBJECTS`)
	require.Equal(t, 1, response.ResultCount)

	response = run(t, sm, `SELECT TEMPLATES FROM OBJECT "CRM"`)
	require.Equal(t, 2, response.ResultCount)

	response = run(t, sm, `SELECT CHANGES`)
	require.Equal(t, true, response.Result)

	run(t, sm, `SAVE SCHEMA`)
	response = run(t, sm, `SELECT CHANGES`)
	require.Equal(t, false, response.Result)

	// One submission from the object create, one from the save
	require.Len(t, store.submissions, 2)

	graph := sm.SchemaService.Graph()
	_, tmpl, err := graph.TemplateByName("Lead")
	require.NoError(t, err)
	status := tmpl.HeaderByName("Status")
	require.NotNil(t, status)
	require.Equal(t, "Details", tmpl.SectionOf(status.Key))

	object, err := graph.ObjectByName("CRM")
	require.NoError(t, err)
	require.Len(t, object.Pipelines, 1)
}

func TestCommandDirector_ProtectedHeaderRejected(t *testing.T) {
	sm, _ := newTestManager(t)

	run(t, sm, `CREATE OBJECT "CRM"`)
	run(t, sm, `CREATE TEMPLATE "Lead" IN OBJECT "CRM"`)

	_, err := CommandDirector(sm, `DELETE HEADER "docId" FROM TEMPLATE "Lead"`, zap.NewNop().Sugar())
	require.Error(t, err)
	require.Contains(t, err.Error(), "docId")
}

func TestCommandDirector_UnknownCommand(t *testing.T) {
	sm, _ := newTestManager(t)

	_, err := CommandDirector(sm, `FROBNICATE EVERYTHING`, zap.NewNop().Sugar())
	require.Error(t, err)

	_, err = CommandDirector(sm, `SELECT`, zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestCommandDirector_DeletePipeline(t *testing.T) {
	sm, _ := newTestManager(t)

	run(t, sm, `CREATE OBJECT "CRM"`)
	run(t, sm, `CREATE TEMPLATE "Lead" IN OBJECT "CRM"`)
	run(t, sm, `CREATE TEMPLATE "Client" IN OBJECT "CRM"`)
	run(t, sm, `CREATE PIPELINE "P" IN OBJECT "CRM" FROM TEMPLATE "Lead" TO TEMPLATE "Client" WITH MAPPINGS ({a => b})`)
	run(t, sm, `DELETE PIPELINE "P" FROM OBJECT "CRM"`)

	object, err := sm.SchemaService.Graph().ObjectByName("CRM")
	require.NoError(t, err)
	require.Empty(t, object.Pipelines)
}
