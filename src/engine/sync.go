package engine

import (
	"schemaforge/src/models"
)

// BuildSyncRequest flattens the live graph into the wire shape of the
// persistence synchronization protocol: removed templates are excluded,
// template bookkeeping fields are stripped, object-level action/isModified
// tags travel along, and the deleted-keys accumulator rides with the call.
func BuildSyncRequest(g *SchemaGraph) *models.SyncRequest {
	req := &models.SyncRequest{
		BusinessID:        g.BusinessID,
		Objects:           []models.SyncObject{},
		DeletedHeaderKeys: g.DeletedHeaderKeys(),
	}

	for _, o := range g.Objects {
		so := models.SyncObject{
			ID:         o.ObjectID,
			Name:       o.Name,
			Templates:  []models.SyncTemplate{},
			Pipelines:  []models.SyncPipeline{},
			Action:     string(o.Action),
			IsModified: o.IsModified,
		}
		for _, t := range o.Templates {
			if t.Removed() {
				continue
			}
			so.Templates = append(so.Templates, buildSyncTemplate(t))
		}
		for _, p := range o.Pipelines {
			sp := models.SyncPipeline{
				ID:               p.PipelineID,
				Name:             p.Name,
				SourceTemplateID: p.SourceTemplateID,
				TargetTemplateID: p.TargetTemplateID,
				Mappings:         []models.SyncFieldMapping{},
				CreatedAt:        p.CreatedAt,
				UpdatedAt:        p.UpdatedAt,
			}
			for _, m := range p.Mappings {
				sp.Mappings = append(sp.Mappings, models.SyncFieldMapping{Source: m.Source, Target: m.Target})
			}
			so.Pipelines = append(so.Pipelines, sp)
		}
		req.Objects = append(req.Objects, so)
	}
	return req
}

func buildSyncTemplate(t *models.Template) models.SyncTemplate {
	st := models.SyncTemplate{
		DocID:        t.DocID,
		Name:         t.Name,
		TypeOfRecord: t.TypeOfRecord,
		ObjectName:   t.ObjectName,
		Headers:      []models.SyncHeader{},
		Sections:     []models.SyncSection{},
	}
	for _, h := range t.Headers {
		st.Headers = append(st.Headers, models.SyncHeader{
			Key:     h.Key,
			Name:    h.Name,
			Type:    string(h.Type),
			Section: t.SectionOf(h.Key),
			IsUsed:  t.HeaderUsed(h.Key),
			Options: append([]string(nil), h.Options...),
		})
	}
	for _, s := range t.Sections {
		st.Sections = append(st.Sections, models.SyncSection{
			Name: s.Name,
			Keys: append([]string(nil), s.Keys...),
		})
	}
	return st
}

// HydrateGraph rebuilds a live graph from a previously persisted state.
// Everything loads with clean actions; the session starts with no changes.
func HydrateGraph(req *models.SyncRequest) *SchemaGraph {
	g := NewSchemaGraph(req.BusinessID)
	for _, so := range req.Objects {
		o := &models.Object{
			ObjectID:  so.ID,
			Name:      so.Name,
			Templates: []*models.Template{},
			Pipelines: []*models.Pipeline{},
		}
		for _, st := range so.Templates {
			t := &models.Template{
				DocID:        st.DocID,
				Name:         st.Name,
				TypeOfRecord: st.TypeOfRecord,
				ObjectName:   st.ObjectName,
			}
			for _, sh := range st.Headers {
				t.Headers = append(t.Headers, &models.Header{
					Key:     sh.Key,
					Name:    sh.Name,
					Type:    models.HeaderType(sh.Type),
					Options: append([]string(nil), sh.Options...),
				})
			}
			for _, ss := range st.Sections {
				t.Sections = append(t.Sections, &models.Section{
					Name: ss.Name,
					Keys: append([]string(nil), ss.Keys...),
				})
			}
			o.Templates = append(o.Templates, t)
		}
		for _, sp := range so.Pipelines {
			p := &models.Pipeline{
				PipelineID:       sp.ID,
				Name:             sp.Name,
				SourceTemplateID: sp.SourceTemplateID,
				TargetTemplateID: sp.TargetTemplateID,
				CreatedAt:        sp.CreatedAt,
				UpdatedAt:        sp.UpdatedAt,
			}
			for _, m := range sp.Mappings {
				p.Mappings = append(p.Mappings, models.FieldMapping{Source: m.Source, Target: m.Target})
			}
			o.Pipelines = append(o.Pipelines, p)
		}
		g.Objects = append(g.Objects, o)
	}
	return g
}
