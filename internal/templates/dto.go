package templates

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ExportRequest struct {
	Data   map[string]any `json:"data"`
	Format string         `json:"format"`
}

type SaveUserTemplateRequest struct {
	TemplateID string         `json:"templateId"`
	Title      string         `json:"title"`
	Data       map[string]any `json:"data"`
}

func (r SaveUserTemplateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TemplateID, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Data, validation.NotNil),
	)
}

type CustomizeResponse struct {
	Template       Template       `json:"template"`
	CustomizedData map[string]any `json:"customizedData"`
}

type ExportResponse struct {
	Message     string `json:"message"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"downloadUrl"`
}
