package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestParseObjectCommand(t *testing.T) {
	cmd, err := ParseObjectCommand(`CREATE OBJECT "CRM"`)
	require.NoError(t, err)
	require.Equal(t, "CREATE", cmd.CommandType)
	require.Equal(t, "CRM", cmd.ObjectName)

	cmd, err = ParseObjectCommand(`rename object "CRM" to "Sales"`)
	require.NoError(t, err)
	require.Equal(t, "RENAME", cmd.CommandType)
	require.Equal(t, "Sales", cmd.NewName)

	cmd, err = ParseObjectCommand(`DELETE OBJECT "CRM"`)
	require.NoError(t, err)
	require.Equal(t, "DELETE", cmd.CommandType)

	_, err = ParseObjectCommand(`CREATE OBJECT CRM`)
	require.Error(t, err)
}

func TestParseTemplateCommand(t *testing.T) {
	cmd, err := ParseTemplateCommand(`CREATE TEMPLATE "Lead" IN OBJECT "CRM"`)
	require.NoError(t, err)
	require.Equal(t, "CREATE", cmd.CommandType)
	require.Equal(t, "Lead", cmd.TemplateName)
	require.Equal(t, "CRM", cmd.ObjectName)

	cmd, err = ParseTemplateCommand(`RENAME TEMPLATE "Lead" TO "Client"`)
	require.NoError(t, err)
	require.Equal(t, "Client", cmd.NewName)
}

func TestParseSectionCommand(t *testing.T) {
	cmd, err := ParseSectionCommand(`ADD SECTION "Details" TO TEMPLATE "Lead"`)
	require.NoError(t, err)
	require.Equal(t, "ADD", cmd.CommandType)
	require.Equal(t, "Details", cmd.SectionName)
	require.Equal(t, "Lead", cmd.TemplateName)

	cmd, err = ParseSectionCommand(`DELETE SECTION "Details" FROM TEMPLATE "Lead"`)
	require.NoError(t, err)
	require.Equal(t, "DELETE", cmd.CommandType)
}

func TestParseHeaderCommand_AddWithOptions(t *testing.T) {
	cmd, err := ParseHeaderCommand(`ADD HEADER "Status" TYPE dropdown TO TEMPLATE "Lead" WITH OPTIONS ("Open", "Closed")`, testLogger())
	require.NoError(t, err)
	require.Equal(t, "ADD", cmd.CommandType)
	require.Equal(t, "Status", cmd.HeaderName)
	require.Equal(t, "dropdown", cmd.HeaderType)
	require.Equal(t, []string{"Open", "Closed"}, cmd.Options)
}

func TestParseHeaderCommand_MultilineAndMove(t *testing.T) {
	cmd, err := ParseHeaderCommand("ADD HEADER \"Due Date\"\n\tTYPE date\n\tTO TEMPLATE \"Lead\"", testLogger())
	require.NoError(t, err)
	require.Equal(t, "date", cmd.HeaderType)
	require.Empty(t, cmd.Options)

	cmd, err = ParseHeaderCommand(`MOVE HEADER "Due Date" TO SECTION "Details" IN TEMPLATE "Lead"`, testLogger())
	require.NoError(t, err)
	require.Equal(t, "MOVE", cmd.CommandType)
	require.Equal(t, "Details", cmd.SectionName)

	_, err = ParseHeaderCommand(`ADD HEADER "X" TO TEMPLATE "Lead"`, testLogger())
	require.Error(t, err)
}
