package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResourceKind discriminates the three planning-document kinds. All kinds
// share the same access and sharing semantics, so the engine takes the kind
// as a parameter instead of duplicating itself per kind.
type ResourceKind string

const (
	KindSession    ResourceKind = "session"
	KindPractice   ResourceKind = "practice"
	KindGameTactic ResourceKind = "game_tactic"
)

// Valid reports whether k is one of the known kinds.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindSession, KindPractice, KindGameTactic:
		return true
	}
	return false
}

// Resource is a planning document. The drawing payload is opaque to the
// engine; only identity, ownership and the summary fields matter here.
type Resource struct {
	ID          uuid.UUID       `json:"id"`
	Kind        ResourceKind    `json:"kind"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StepCount   int             `json:"step_count"`
	Content     json.RawMessage `json:"content,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Summary projects the resource for listings, carrying the role the listing
// principal holds on it. Content is never included.
func (r *Resource) Summary(role AccessRole) ResourceSummary {
	return ResourceSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		StepCount:   r.StepCount,
		Role:        role,
	}
}

// ResourceSummary is the lightweight listing projection.
type ResourceSummary struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	StepCount   int        `json:"step_count"`
	Role        AccessRole `json:"role"`
}

// TabbedList is the three-bucket categorized view of a principal's visible
// resources of one kind.
type TabbedList struct {
	Personal    []ResourceSummary `json:"personal_items"`
	UserShared  []ResourceSummary `json:"user_shared_items"`
	GroupShared []ResourceSummary `json:"group_shared_items"`
}
