package core

import "github.com/google/uuid"

// ResourceID uniquely identifies an engine-owned resource (mesh, texture,
// render instance). IDs are never reused.
type ResourceID = uuid.UUID

var NilResourceID = uuid.Nil

func NewResourceID() ResourceID {
	return uuid.New()
}
