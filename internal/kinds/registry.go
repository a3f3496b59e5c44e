// Package kinds describes the planning-document kinds the server exposes.
// The catalog ships as an embedded YAML file so routes and labels stay in
// one place.
package kinds

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"playbook/internal/domain/models"
)

//go:embed config/kinds.yaml
var configFiles embed.FS

// Kind is one catalog entry.
type Kind struct {
	Kind        models.ResourceKind `yaml:"kind" json:"kind"`
	Slug        string              `yaml:"slug" json:"slug"`
	DisplayName string              `yaml:"display_name" json:"display_name"`
	StepLabel   string              `yaml:"step_label" json:"step_label"`
}

type catalog struct {
	Kinds []Kind `yaml:"kinds"`
}

// Registry holds the loaded kind catalog.
type Registry struct {
	kinds  []Kind
	bySlug map[string]Kind
}

// NewRegistry loads the embedded catalog and validates it.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/kinds.yaml")
	if err != nil {
		return nil, fmt.Errorf("read kind catalog: %w", err)
	}

	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal kind catalog: %w", err)
	}
	if len(c.Kinds) == 0 {
		return nil, fmt.Errorf("kind catalog is empty")
	}

	r := &Registry{
		kinds:  c.Kinds,
		bySlug: make(map[string]Kind, len(c.Kinds)),
	}
	for _, k := range c.Kinds {
		if !k.Kind.Valid() {
			return nil, fmt.Errorf("unknown kind %q in catalog", k.Kind)
		}
		if k.Slug == "" {
			return nil, fmt.Errorf("kind %q has no slug", k.Kind)
		}
		if _, dup := r.bySlug[k.Slug]; dup {
			return nil, fmt.Errorf("duplicate slug %q in catalog", k.Slug)
		}
		r.bySlug[k.Slug] = k
	}

	return r, nil
}

// All returns every catalog entry in file order.
func (r *Registry) All() []Kind {
	return r.kinds
}

// BySlug looks up a kind by its URL slug.
func (r *Registry) BySlug(slug string) (Kind, bool) {
	k, ok := r.bySlug[slug]
	return k, ok
}
