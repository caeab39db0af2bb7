package models

import "time"

// NewsItem represents a single fetched news entry. Fetched fields are
// immutable; classification only appends category tags.
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Categories  []string  `json:"categories,omitempty"` // tags assigned by the classifier
}

// HasCategory reports whether the item was tagged with the given category.
func (n *NewsItem) HasCategory(name string) bool {
	for _, c := range n.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Category is a topical news bucket with its keyword table.
// Categories are defined by configuration and stable across runs.
type Category struct {
	Name     string   `json:"name"      mapstructure:"name"`
	Keywords []string `json:"keywords"  mapstructure:"keywords"`
	MaxItems int      `json:"max_items" mapstructure:"max_items"` // cap per report section
}
