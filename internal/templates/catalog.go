package templates

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog parses the built-in seed templates and stamps them with fresh IDs.
func Catalog(now time.Time) ([]Template, error) {
	var tpls []Template
	if err := yaml.Unmarshal(catalogYAML, &tpls); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	for i := range tpls {
		if err := validateTemplate(tpls[i]); err != nil {
			return nil, fmt.Errorf("template %q: %w", tpls[i].Title, err)
		}
		tpls[i].ID = uuid.NewString()
		tpls[i].IsActive = true
		tpls[i].CreatedAt = now
		tpls[i].UpdatedAt = now
	}
	return tpls, nil
}

func validateTemplate(t Template) error {
	if t.Title == "" || t.Description == "" || t.Content == "" {
		return fmt.Errorf("title, description and content are required")
	}
	if !validCategories[t.Category] {
		return fmt.Errorf("invalid category %q", t.Category)
	}
	for _, f := range t.Fields {
		if f.Name == "" || f.Label == "" {
			return fmt.Errorf("field name and label are required")
		}
		if !validFieldTypes[f.Type] {
			return fmt.Errorf("field %s: invalid type %q", f.Name, f.Type)
		}
	}
	return nil
}
