package models

import "time"

// The types in this file describe the wire shape handed to the persistence
// synchronization protocol. Templates tagged remove are excluded and the
// per-template bookkeeping fields (isModified, action) are stripped before
// transmission; the object-level tags travel as-is so the service knows
// which actions to apply.

type SyncRequest struct {
	BusinessID        string       `bson:"businessId"`
	Objects           []SyncObject `bson:"objects"`
	DeletedHeaderKeys []string     `bson:"deletedHeaderKeys"`
}

type SyncObject struct {
	ID         string         `bson:"id"`
	Name       string         `bson:"name"`
	Templates  []SyncTemplate `bson:"templates"`
	Pipelines  []SyncPipeline `bson:"pipelines"`
	Action     string         `bson:"action"`
	IsModified bool           `bson:"isModified"`
}

type SyncTemplate struct {
	DocID        string        `bson:"docId"`
	Name         string        `bson:"name"`
	TypeOfRecord string        `bson:"typeOfRecord"`
	ObjectName   string        `bson:"objectName"`
	Headers      []SyncHeader  `bson:"headers"`
	Sections     []SyncSection `bson:"sections"`
}

// SyncHeader materializes the derived section membership fields so the
// stored shape matches what record-keeping clients expect to read back.
type SyncHeader struct {
	Key     string   `bson:"key"`
	Name    string   `bson:"name"`
	Type    string   `bson:"type"`
	Section string   `bson:"section"`
	IsUsed  bool     `bson:"isUsed"`
	Options []string `bson:"options,omitempty"`
}

type SyncSection struct {
	Name string   `bson:"name"`
	Keys []string `bson:"keys"`
}

type SyncPipeline struct {
	ID               string             `bson:"id"`
	Name             string             `bson:"name"`
	SourceTemplateID string             `bson:"sourceTemplateId"`
	TargetTemplateID string             `bson:"targetTemplateId"`
	Mappings         []SyncFieldMapping `bson:"mappings"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

type SyncFieldMapping struct {
	Source string `bson:"source"`
	Target string `bson:"target"`
}
