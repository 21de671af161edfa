package engine

import (
	"fmt"
	"regexp"
	"strings"

	"schemaforge/src/models"

	"go.uber.org/zap"
)

type PipelineCommand struct {
	CommandType    string // CREATE, UPDATE, DELETE
	PipelineName   string
	ObjectName     string
	SourceTemplate string
	TargetTemplate string
	Mappings       []models.FieldMapping
}

var (
	createPipelineRegex = regexp.MustCompile(`(?i)^(CREATE|UPDATE) PIPELINE\s+"([^"]+)"\s+IN OBJECT\s+"([^"]+)"\s+FROM TEMPLATE\s+"([^"]+)"\s+TO TEMPLATE\s+"([^"]+)"\s+WITH MAPPINGS\s*\(([\s\S]*)\)$`)
	deletePipelineRegex = regexp.MustCompile(`(?i)^DELETE PIPELINE\s+"([^"]+)"\s+FROM OBJECT\s+"([^"]+)"$`)
	mappingRegex        = regexp.MustCompile(`\{\s*([^=\s{}]*)\s*=>\s*([^=\s{}]*)\s*\}`)
)

// ParsePipelineCommand parses CREATE/UPDATE/DELETE PIPELINE commands.
//
//	CREATE PIPELINE "Lead to Client" IN OBJECT "CRM"
//	  FROM TEMPLATE "Lead" TO TEMPLATE "Client"
//	  WITH MAPPINGS ({name => name}, {phone => phone})
func ParsePipelineCommand(command string, logger *zap.SugaredLogger) (*PipelineCommand, error) {
	command = normalizeCommand(command)

	if matches := deletePipelineRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &PipelineCommand{CommandType: "DELETE", PipelineName: matches[1], ObjectName: matches[2]}, nil
	}

	matches := createPipelineRegex.FindStringSubmatch(command)
	if len(matches) != 7 {
		logger.Errorw("Invalid PIPELINE command syntax", "command", command)
		return nil, fmt.Errorf("invalid PIPELINE command syntax: %s", command)
	}

	cmd := &PipelineCommand{
		CommandType:    strings.ToUpper(matches[1]),
		PipelineName:   matches[2],
		ObjectName:     matches[3],
		SourceTemplate: matches[4],
		TargetTemplate: matches[5],
	}

	mappingsText := strings.TrimSpace(matches[6])
	for _, pair := range mappingRegex.FindAllStringSubmatch(mappingsText, -1) {
		cmd.Mappings = append(cmd.Mappings, models.FieldMapping{Source: pair[1], Target: pair[2]})
	}
	if mappingsText != "" && len(cmd.Mappings) == 0 {
		return nil, fmt.Errorf("could not parse field mappings: %s", mappingsText)
	}

	return cmd, nil
}
