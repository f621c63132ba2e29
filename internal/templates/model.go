package templates

import "time"

const (
	CategoryContract  = "contract"
	CategoryAgreement = "agreement"
	CategoryLetter    = "letter"
	CategoryForm      = "form"
	CategoryPolicy    = "policy"
	CategoryOther     = "other"
)

var validCategories = map[string]bool{
	CategoryContract:  true,
	CategoryAgreement: true,
	CategoryLetter:    true,
	CategoryForm:      true,
	CategoryPolicy:    true,
	CategoryOther:     true,
}

var validFieldTypes = map[string]bool{
	"text":     true,
	"textarea": true,
	"date":     true,
	"select":   true,
	"checkbox": true,
}

// Field describes one input a template expects. Content refers to it as {Name}.
type Field struct {
	Name         string   `json:"name" bson:"name" yaml:"name"`
	Label        string   `json:"label" bson:"label" yaml:"label"`
	Type         string   `json:"type" bson:"type" yaml:"type"`
	Options      []string `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	Required     bool     `json:"required" bson:"required" yaml:"required"`
	DefaultValue string   `json:"defaultValue,omitempty" bson:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty" bson:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
}

// Template is a catalogue entry.
type Template struct {
	ID          string    `json:"id" bson:"_id" yaml:"-"`
	Title       string    `json:"title" bson:"title" yaml:"title"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	Category    string    `json:"category" bson:"category" yaml:"category"`
	Fields      []Field   `json:"fields" bson:"fields" yaml:"fields"`
	Content     string    `json:"content" bson:"content" yaml:"content"`
	IsActive    bool      `json:"isActive" bson:"isActive" yaml:"-"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// UserTemplate is a user's saved data for a template. At most one active row
// exists per (UserID, TemplateID).
type UserTemplate struct {
	ID         string         `json:"id" bson:"_id"`
	UserID     string         `json:"userId" bson:"userId"`
	TemplateID string         `json:"templateId" bson:"templateId"`
	Template   *Template      `json:"template,omitempty" bson:"-"`
	Title      string         `json:"title" bson:"title"`
	Data       map[string]any `json:"data" bson:"data"`
	IsActive   bool           `json:"isActive" bson:"isActive"`
	CreatedAt  time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updatedAt"`
}
