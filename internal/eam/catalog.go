// internal/eam/catalog.go
package eam

import (
	"context"

	"eam-assistant/internal/common/config"
	"eam-assistant/internal/common/logger"
)

// CategoryLister is the part of Client the catalog needs.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// ClassLister is the part of LOVFetcher the catalog needs.
type ClassLister interface {
	Classes(ctx context.Context, organization string) ([]string, error)
}

// Catalog supplies the equipment category and class options offered to the
// incident analysis prompt.
type Catalog struct {
	categories CategoryLister
	classes    ClassLister
	safety     config.SafetyConfig
	logger     logger.Logger
}

// NewCatalog merges the static lists in safety with what EAM returns. Either
// lister may be nil.
func NewCatalog(safety config.SafetyConfig, categories CategoryLister, classes ClassLister, log logger.Logger) *Catalog {
	return &Catalog{
		categories: categories,
		classes:    classes,
		safety:     safety,
		logger:     log.WithFields(map[string]interface{}{"component": "eam-catalog"}),
	}
}

// Options returns the category and class options. Lookup failures are logged
// and the static lists are still returned.
func (c *Catalog) Options(ctx context.Context) (categories, classes []string) {
	categories = append([]string(nil), c.safety.EquipmentCategories...)
	classes = append([]string(nil), c.safety.EquipmentClasses...)

	if c.categories != nil {
		remote, err := c.categories.ListCategories(ctx)
		if err != nil {
			c.logger.Warn("failed to list EAM categories", map[string]interface{}{"error": err.Error()})
		}
		categories = append(categories, remote...)
	}

	if c.classes != nil {
		org := c.safety.ClassOrganization
		if org == "" {
			org = "*"
		}
		remote, err := c.classes.Classes(ctx, org)
		if err != nil {
			c.logger.Warn("failed to fetch EAM classes", map[string]interface{}{"error": err.Error()})
		}
		classes = append(classes, remote...)
	}

	return dedupe(categories), dedupe(classes)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
