package engine

import (
	"fmt"
	"regexp"
	"strings"

	"schemaforge/src/helpers"

	"go.uber.org/zap"
)

type ObjectCommand struct {
	CommandType string // CREATE, RENAME, DELETE
	ObjectName  string
	NewName     string
}

type TemplateCommand struct {
	CommandType  string // CREATE, RENAME, DELETE
	TemplateName string
	ObjectName   string
	NewName      string
}

type SectionCommand struct {
	CommandType  string // ADD, RENAME, DELETE
	SectionName  string
	NewName      string
	TemplateName string
}

type HeaderCommand struct {
	CommandType  string // ADD, RENAME, DELETE, MOVE
	HeaderName   string
	NewName      string
	HeaderType   string
	Options      []string
	SectionName  string
	TemplateName string
}

var (
	createObjectRegex = regexp.MustCompile(`(?i)^CREATE OBJECT\s+"([^"]+)"$`)
	renameObjectRegex = regexp.MustCompile(`(?i)^RENAME OBJECT\s+"([^"]+)"\s+TO\s+"([^"]+)"$`)
	deleteObjectRegex = regexp.MustCompile(`(?i)^DELETE OBJECT\s+"([^"]+)"$`)

	createTemplateRegex = regexp.MustCompile(`(?i)^CREATE TEMPLATE\s+"([^"]+)"\s+IN OBJECT\s+"([^"]+)"$`)
	renameTemplateRegex = regexp.MustCompile(`(?i)^RENAME TEMPLATE\s+"([^"]+)"\s+TO\s+"([^"]+)"$`)
	deleteTemplateRegex = regexp.MustCompile(`(?i)^DELETE TEMPLATE\s+"([^"]+)"$`)

	addSectionRegex    = regexp.MustCompile(`(?i)^ADD SECTION\s+"([^"]+)"\s+TO TEMPLATE\s+"([^"]+)"$`)
	renameSectionRegex = regexp.MustCompile(`(?i)^RENAME SECTION\s+"([^"]+)"\s+TO\s+"([^"]+)"\s+IN TEMPLATE\s+"([^"]+)"$`)
	deleteSectionRegex = regexp.MustCompile(`(?i)^DELETE SECTION\s+"([^"]+)"\s+FROM TEMPLATE\s+"([^"]+)"$`)

	addHeaderRegex    = regexp.MustCompile(`(?i)^ADD HEADER\s+"([^"]+)"\s+TYPE\s+([a-z\-]+)\s+TO TEMPLATE\s+"([^"]+)"(?:\s+WITH OPTIONS\s*\(([^)]*)\))?$`)
	renameHeaderRegex = regexp.MustCompile(`(?i)^RENAME HEADER\s+"([^"]+)"\s+TO\s+"([^"]+)"\s+IN TEMPLATE\s+"([^"]+)"$`)
	deleteHeaderRegex = regexp.MustCompile(`(?i)^DELETE HEADER\s+"([^"]+)"\s+FROM TEMPLATE\s+"([^"]+)"$`)
	moveHeaderRegex   = regexp.MustCompile(`(?i)^MOVE HEADER\s+"([^"]+)"\s+TO SECTION\s+"([^"]+)"\s+IN TEMPLATE\s+"([^"]+)"$`)
)

func normalizeCommand(command string) string {
	command = strings.ReplaceAll(command, "\n", " ")
	command = strings.ReplaceAll(command, "\t", " ")
	return strings.TrimSpace(command)
}

// ParseObjectCommand parses CREATE/RENAME/DELETE OBJECT commands.
func ParseObjectCommand(command string) (*ObjectCommand, error) {
	command = normalizeCommand(command)

	if matches := createObjectRegex.FindStringSubmatch(command); len(matches) == 2 {
		return &ObjectCommand{CommandType: "CREATE", ObjectName: matches[1]}, nil
	}
	if matches := renameObjectRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &ObjectCommand{CommandType: "RENAME", ObjectName: matches[1], NewName: matches[2]}, nil
	}
	if matches := deleteObjectRegex.FindStringSubmatch(command); len(matches) == 2 {
		return &ObjectCommand{CommandType: "DELETE", ObjectName: matches[1]}, nil
	}

	return nil, fmt.Errorf("invalid OBJECT command syntax: %s", command)
}

// ParseTemplateCommand parses CREATE/RENAME/DELETE TEMPLATE commands.
func ParseTemplateCommand(command string) (*TemplateCommand, error) {
	command = normalizeCommand(command)

	if matches := createTemplateRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &TemplateCommand{CommandType: "CREATE", TemplateName: matches[1], ObjectName: matches[2]}, nil
	}
	if matches := renameTemplateRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &TemplateCommand{CommandType: "RENAME", TemplateName: matches[1], NewName: matches[2]}, nil
	}
	if matches := deleteTemplateRegex.FindStringSubmatch(command); len(matches) == 2 {
		return &TemplateCommand{CommandType: "DELETE", TemplateName: matches[1]}, nil
	}

	return nil, fmt.Errorf("invalid TEMPLATE command syntax: %s", command)
}

// ParseSectionCommand parses ADD/RENAME/DELETE SECTION commands.
func ParseSectionCommand(command string) (*SectionCommand, error) {
	command = normalizeCommand(command)

	if matches := addSectionRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &SectionCommand{CommandType: "ADD", SectionName: matches[1], TemplateName: matches[2]}, nil
	}
	if matches := renameSectionRegex.FindStringSubmatch(command); len(matches) == 4 {
		return &SectionCommand{CommandType: "RENAME", SectionName: matches[1], NewName: matches[2], TemplateName: matches[3]}, nil
	}
	if matches := deleteSectionRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &SectionCommand{CommandType: "DELETE", SectionName: matches[1], TemplateName: matches[2]}, nil
	}

	return nil, fmt.Errorf("invalid SECTION command syntax: %s", command)
}

// ParseHeaderCommand parses ADD/RENAME/DELETE/MOVE HEADER commands.
func ParseHeaderCommand(command string, logger *zap.SugaredLogger) (*HeaderCommand, error) {
	command = normalizeCommand(command)

	if matches := addHeaderRegex.FindStringSubmatch(command); len(matches) == 5 {
		cmd := &HeaderCommand{
			CommandType:  "ADD",
			HeaderName:   matches[1],
			HeaderType:   strings.ToLower(matches[2]),
			TemplateName: matches[3],
		}
		if matches[4] != "" {
			cmd.Options = parseOptionList(matches[4])
		}
		return cmd, nil
	}
	if matches := renameHeaderRegex.FindStringSubmatch(command); len(matches) == 4 {
		return &HeaderCommand{CommandType: "RENAME", HeaderName: matches[1], NewName: matches[2], TemplateName: matches[3]}, nil
	}
	if matches := deleteHeaderRegex.FindStringSubmatch(command); len(matches) == 3 {
		return &HeaderCommand{CommandType: "DELETE", HeaderName: matches[1], TemplateName: matches[2]}, nil
	}
	if matches := moveHeaderRegex.FindStringSubmatch(command); len(matches) == 4 {
		return &HeaderCommand{CommandType: "MOVE", HeaderName: matches[1], SectionName: matches[2], TemplateName: matches[3]}, nil
	}

	logger.Errorw("Invalid HEADER command syntax", "command", command)
	return nil, fmt.Errorf("invalid HEADER command syntax: %s", command)
}

func parseOptionList(optionsText string) []string {
	var options []string
	for _, part := range strings.Split(optionsText, ",") {
		option := helpers.StripQuotes(part)
		if option != "" {
			options = append(options, option)
		}
	}
	return options
}
