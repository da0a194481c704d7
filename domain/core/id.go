package core

import "github.com/google/uuid"

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID        ID
	ModelVersion ID
)

func (id RunID) String() string        { return ID(id).String() }
func (id ModelVersion) String() string { return ID(id).String() }

// NewRunID creates a time-ordered training run identifier
func NewRunID() RunID { return RunID(NewID()) }

// ModelVersion is the version of the model a run produced: models are
// versioned by the run that trained them.
func (id RunID) ModelVersion() ModelVersion { return ModelVersion(id) }
