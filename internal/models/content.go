// internal/models/content.go
package models

// PageContent is an informational page document keyed by slug (about, faq,
// safety, legal pages).
type PageContent struct {
	Slug     string                 `json:"slug"`
	Title    string                 `json:"title"`
	Sections map[string]interface{} `json:"sections,omitempty"`
}

// SiteSettings is a settings document keyed by a fixed slug.
type SiteSettings struct {
	Slug   string                 `json:"slug"`
	Values map[string]interface{} `json:"values,omitempty"`
}
