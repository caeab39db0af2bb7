// Package classify tags news items against configured keyword
// categories and selects the items surfaced in each report section.
package classify

import (
	"sort"
	"strings"

	"github.com/seenimoa/marketbrief/pkg/models"
)

// Classify assigns categories to each item by case-insensitive substring
// match of category keywords against the item's title and summary. An
// item may match several categories; items matching none keep an empty
// category list. The input slice is returned with Categories populated
// in the order the categories are configured.
func Classify(items []models.NewsItem, categories []models.Category) []models.NewsItem {
	for i := range items {
		items[i].Categories = matchCategories(&items[i], categories)
	}
	return items
}

// matchCategories returns the names of every category whose keyword
// table matches the item.
func matchCategories(item *models.NewsItem, categories []models.Category) []string {
	text := strings.ToLower(item.Title + " " + item.Summary)

	var matched []string
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = append(matched, cat.Name)
				break
			}
		}
	}
	return matched
}

// Select returns up to limit items tagged with the given category,
// newest first. Items without a publish timestamp sort after dated
// ones; ties keep their input order. limit <= 0 means no cap.
func Select(items []models.NewsItem, category string, limit int) []models.NewsItem {
	var picked []models.NewsItem
	for _, item := range items {
		if item.HasCategory(category) {
			picked = append(picked, item)
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		ti, tj := picked[i].PublishedAt, picked[j].PublishedAt
		if ti.IsZero() != tj.IsZero() {
			return !ti.IsZero()
		}
		return ti.After(tj)
	})

	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}

// Sections builds one section per configured category from classified
// items, honoring each category's item cap. Categories with no matching
// items still get a section so the report can note the absence.
func Sections(items []models.NewsItem, categories []models.Category) []models.NewsSection {
	sections := make([]models.NewsSection, 0, len(categories))
	for _, cat := range categories {
		sections = append(sections, models.NewsSection{
			Category: cat.Name,
			Items:    Select(items, cat.Name, cat.MaxItems),
		})
	}
	return sections
}
