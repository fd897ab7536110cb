package types

import (
	"fmt"
	"time"
)

// FormConfig seeds the presentation of a collection form.
type FormConfig struct {
	Fields []string `json:"fields"`
}

// Validate requires a fields array to be present.
func (f *FormConfig) Validate() error {
	if f.Fields == nil {
		return fmt.Errorf("form config must contain a fields array")
	}
	return nil
}

// Template is a reusable form configuration, optionally shared across owners
// when IsPublic is set.
type Template struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	FormConfig   FormConfig `json:"formConfig"`
	EmailSubject string     `json:"emailSubject,omitempty"`
	EmailBody    string     `json:"emailBody,omitempty"`
	CreatedBy    string     `json:"createdBy"`
	IsPublic     bool       `json:"isPublic"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TemplateCreate is the request payload for creating a template.
type TemplateCreate struct {
	Name         string     `json:"name" binding:"required"`
	FormConfig   FormConfig `json:"formConfig" binding:"required"`
	EmailSubject string     `json:"emailSubject"`
	EmailBody    string     `json:"emailBody"`
	IsPublic     bool       `json:"isPublic"`
}

// TemplateUpdate is a partial template update.
type TemplateUpdate struct {
	Name         *string     `json:"name,omitempty"`
	FormConfig   *FormConfig `json:"formConfig,omitempty"`
	EmailSubject *string     `json:"emailSubject,omitempty"`
	EmailBody    *string     `json:"emailBody,omitempty"`
	IsPublic     *bool       `json:"isPublic,omitempty"`
}
