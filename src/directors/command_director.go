package directors

import (
	"fmt"
	"strings"

	"schemaforge/src/engine"
	"schemaforge/src/models"

	"go.uber.org/zap"
)

// CommandDirector routes an admin text command to the right service and
// wraps the outcome in a CommandResponse.
func CommandDirector(serviceManager ServiceManager, command string, logger *zap.SugaredLogger) (interface{}, error) {
	command = strings.TrimSpace(command)
	command = strings.TrimSuffix(command, ";") // Remove trailing semicolon if present
	commandParts := strings.Fields(command)
	if len(commandParts) < 2 {
		return nil, fmt.Errorf("unknown command format: %s", command)
	}

	verb := strings.ToLower(commandParts[0])
	noun := strings.ToLower(commandParts[1])

	if verb == "select" {
		return handleSelectCommand(serviceManager, command, commandParts, logger)
	}

	if verb == "save" && noun == "schema" {
		saved, err := serviceManager.SchemaService.Save()
		if err != nil {
			return nil, fmt.Errorf("error saving schema: %v", err)
		}
		result := "Nothing to save."
		if saved {
			result = "Schema saved successfully."
		}
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	switch noun {
	case "object":
		return handleObjectCommand(serviceManager, command)
	case "template":
		return handleTemplateCommand(serviceManager, command)
	case "section":
		return handleSectionCommand(serviceManager, command)
	case "header":
		return handleHeaderCommand(serviceManager, command, logger)
	case "pipeline":
		return handlePipelineCommand(serviceManager, command, logger)
	}

	return nil, fmt.Errorf("unknown command format: %s", command)
}

func handleSelectCommand(serviceManager ServiceManager, command string, commandParts []string, logger *zap.SugaredLogger) (interface{}, error) {
	graph := serviceManager.SchemaService.Graph()

	switch strings.ToLower(commandParts[1]) {
	case "objects":
		objects := graph.ActiveObjects()
		return &engine.CommandResponse{ResultCount: len(objects), Result: objects}, nil

	case "templates":
		if len(commandParts) < 5 || !strings.EqualFold(commandParts[2], "FROM") {
			return nil, fmt.Errorf("SELECT TEMPLATES requires the form 'FROM OBJECT <object_name>'")
		}
		objectName := strings.Trim(strings.Join(commandParts[4:], " "), "\"'")
		object, err := graph.ObjectByName(objectName)
		if err != nil {
			return nil, fmt.Errorf("error retrieving object '%s': %v", objectName, err)
		}
		templates, err := graph.ActiveTemplates(object.ObjectID)
		if err != nil {
			return nil, err
		}
		return &engine.CommandResponse{ResultCount: len(templates), Result: templates}, nil

	case "changes":
		hasChanges, err := serviceManager.SchemaService.HasUnsavedChanges()
		if err != nil {
			return nil, fmt.Errorf("error computing changes: %v", err)
		}
		return &engine.CommandResponse{ResultCount: 1, Result: hasChanges}, nil
	}

	return nil, fmt.Errorf("unknown command format: %s", command)
}

func handleObjectCommand(serviceManager ServiceManager, command string) (interface{}, error) {
	cmd, err := engine.ParseObjectCommand(command)
	if err != nil {
		return nil, err
	}
	graph := serviceManager.SchemaService.Graph()

	switch cmd.CommandType {
	case "CREATE":
		object, err := serviceManager.SchemaService.AddObject(cmd.ObjectName)
		if err != nil {
			return nil, fmt.Errorf("error creating object: %v", err)
		}
		result := fmt.Sprintf("Object '%s' created successfully.", object.Name)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "RENAME":
		object, err := graph.ObjectByName(cmd.ObjectName)
		if err != nil {
			return nil, err
		}
		if err := serviceManager.SchemaService.RenameObject(object.ObjectID, cmd.NewName); err != nil {
			return nil, fmt.Errorf("error renaming object: %v", err)
		}
		result := fmt.Sprintf("Object '%s' renamed to '%s'.", cmd.ObjectName, cmd.NewName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "DELETE":
		object, err := graph.ObjectByName(cmd.ObjectName)
		if err != nil {
			return nil, err
		}
		if err := serviceManager.SchemaService.RemoveObject(object.ObjectID); err != nil {
			return nil, fmt.Errorf("error deleting object: %v", err)
		}
		result := fmt.Sprintf("Object '%s' marked for removal.", cmd.ObjectName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	return nil, fmt.Errorf("unknown OBJECT command: %s", cmd.CommandType)
}

func handleTemplateCommand(serviceManager ServiceManager, command string) (interface{}, error) {
	cmd, err := engine.ParseTemplateCommand(command)
	if err != nil {
		return nil, err
	}
	graph := serviceManager.SchemaService.Graph()

	switch cmd.CommandType {
	case "CREATE":
		object, err := graph.ObjectByName(cmd.ObjectName)
		if err != nil {
			return nil, err
		}
		t, err := serviceManager.SchemaService.AddTemplate(object.ObjectID, cmd.TemplateName)
		if err != nil {
			return nil, fmt.Errorf("error creating template: %v", err)
		}
		result := fmt.Sprintf("Template '%s' created successfully in object '%s'.", t.Name, object.Name)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "RENAME":
		_, t, err := graph.TemplateByName(cmd.TemplateName)
		if err != nil {
			return nil, err
		}
		if err := serviceManager.SchemaService.RenameTemplate(t.DocID, cmd.NewName); err != nil {
			return nil, fmt.Errorf("error renaming template: %v", err)
		}
		result := fmt.Sprintf("Template '%s' renamed to '%s'.", cmd.TemplateName, cmd.NewName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "DELETE":
		object, t, err := graph.TemplateByName(cmd.TemplateName)
		if err != nil {
			return nil, err
		}
		if err := serviceManager.SchemaService.RemoveTemplate(object.ObjectID, t.DocID); err != nil {
			return nil, fmt.Errorf("error deleting template: %v", err)
		}
		result := fmt.Sprintf("Template '%s' marked for removal.", cmd.TemplateName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	return nil, fmt.Errorf("unknown TEMPLATE command: %s", cmd.CommandType)
}

func handleSectionCommand(serviceManager ServiceManager, command string) (interface{}, error) {
	cmd, err := engine.ParseSectionCommand(command)
	if err != nil {
		return nil, err
	}
	graph := serviceManager.SchemaService.Graph()

	_, t, err := graph.TemplateByName(cmd.TemplateName)
	if err != nil {
		return nil, err
	}

	switch cmd.CommandType {
	case "ADD":
		if _, err := serviceManager.SchemaService.AddSection(t.DocID, cmd.SectionName); err != nil {
			return nil, fmt.Errorf("error adding section: %v", err)
		}
		result := fmt.Sprintf("Section '%s' added to template '%s'.", cmd.SectionName, t.Name)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "RENAME":
		if err := serviceManager.SchemaService.RenameSection(t.DocID, cmd.SectionName, cmd.NewName); err != nil {
			return nil, fmt.Errorf("error renaming section: %v", err)
		}
		result := fmt.Sprintf("Section '%s' renamed to '%s'.", cmd.SectionName, cmd.NewName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "DELETE":
		if err := serviceManager.SchemaService.RemoveSection(t.DocID, cmd.SectionName); err != nil {
			return nil, fmt.Errorf("error deleting section: %v", err)
		}
		result := fmt.Sprintf("Section '%s' deleted from template '%s'.", cmd.SectionName, t.Name)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	return nil, fmt.Errorf("unknown SECTION command: %s", cmd.CommandType)
}

func handleHeaderCommand(serviceManager ServiceManager, command string, logger *zap.SugaredLogger) (interface{}, error) {
	cmd, err := engine.ParseHeaderCommand(command, logger)
	if err != nil {
		return nil, err
	}
	graph := serviceManager.SchemaService.Graph()

	_, t, err := graph.TemplateByName(cmd.TemplateName)
	if err != nil {
		return nil, err
	}

	switch cmd.CommandType {
	case "ADD":
		h, err := serviceManager.SchemaService.AddHeader(t.DocID, cmd.HeaderName, models.HeaderType(cmd.HeaderType), cmd.Options)
		if err != nil {
			return nil, fmt.Errorf("error adding header: %v", err)
		}
		result := fmt.Sprintf("Header '%s' added to template '%s' (key: %s).", h.Name, t.Name, h.Key)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "RENAME":
		header := t.HeaderByName(cmd.HeaderName)
		if header == nil {
			return nil, fmt.Errorf("header '%s' not found in template '%s'", cmd.HeaderName, t.Name)
		}
		err := serviceManager.SchemaService.UpdateHeader(t.DocID, header.Key, engine.HeaderChange{Name: cmd.NewName})
		if err != nil {
			return nil, fmt.Errorf("error renaming header: %v", err)
		}
		result := fmt.Sprintf("Header '%s' renamed to '%s'.", cmd.HeaderName, cmd.NewName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "DELETE":
		header := t.HeaderByName(cmd.HeaderName)
		if header == nil {
			return nil, fmt.Errorf("header '%s' not found in template '%s'", cmd.HeaderName, t.Name)
		}
		if err := serviceManager.SchemaService.RemoveHeader(t.DocID, header.Key); err != nil {
			return nil, fmt.Errorf("error deleting header: %v", err)
		}
		result := fmt.Sprintf("Header '%s' deleted from template '%s'.", cmd.HeaderName, t.Name)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "MOVE":
		header := t.HeaderByName(cmd.HeaderName)
		if header == nil {
			return nil, fmt.Errorf("header '%s' not found in template '%s'", cmd.HeaderName, t.Name)
		}
		if err := serviceManager.SchemaService.ToggleHeaderMembership(t.DocID, cmd.SectionName, header.Key); err != nil {
			return nil, fmt.Errorf("error moving header: %v", err)
		}
		result := fmt.Sprintf("Header '%s' toggled in section '%s'.", cmd.HeaderName, cmd.SectionName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	return nil, fmt.Errorf("unknown HEADER command: %s", cmd.CommandType)
}

func handlePipelineCommand(serviceManager ServiceManager, command string, logger *zap.SugaredLogger) (interface{}, error) {
	cmd, err := engine.ParsePipelineCommand(command, logger)
	if err != nil {
		return nil, err
	}

	switch cmd.CommandType {
	case "CREATE":
		p, err := serviceManager.PipelineService.AddPipeline(cmd)
		if err != nil {
			return nil, fmt.Errorf("error creating pipeline: %v", err)
		}
		result := fmt.Sprintf("Pipeline '%s' created successfully in object '%s'.", p.Name, cmd.ObjectName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "UPDATE":
		if err := serviceManager.PipelineService.UpdatePipeline(cmd); err != nil {
			return nil, fmt.Errorf("error updating pipeline: %v", err)
		}
		result := fmt.Sprintf("Pipeline '%s' updated successfully.", cmd.PipelineName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil

	case "DELETE":
		if err := serviceManager.PipelineService.RemovePipeline(cmd.ObjectName, cmd.PipelineName); err != nil {
			return nil, fmt.Errorf("error deleting pipeline: %v", err)
		}
		result := fmt.Sprintf("Pipeline '%s' deleted from object '%s'.", cmd.PipelineName, cmd.ObjectName)
		return &engine.CommandResponse{ResultCount: 1, Result: result}, nil
	}

	return nil, fmt.Errorf("unknown PIPELINE command: %s", cmd.CommandType)
}
