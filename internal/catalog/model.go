package catalog

import "strings"

// Entry is one downloadable document's metadata and aggregate rating.
// CumulativeRating holds the running sum of every rating ever submitted;
// Rating holds the stored average, equal to CumulativeRating/NumReviews
// whenever NumReviews is positive.
type Entry struct {
	ISBN             string  `gorm:"column:isbn;primaryKey;size:32;not null"`
	Title            string  `gorm:"column:title;size:190;not null"`
	Author           string  `gorm:"column:author;size:190;not null"`
	FileName         string  `gorm:"column:file_name;size:190;not null"`
	CumulativeRating float64 `gorm:"column:cumulative_rating;not null;default:0"`
	NumReviews       int64   `gorm:"column:num_reviews;not null;default:0"`
	Rating           float64 `gorm:"column:rating;not null;default:0"`
}

// TableName exposes the table backing catalog entries.
func (Entry) TableName() string {
	return "pdfs"
}

// SortKey selects the ordering of a catalog listing.
type SortKey string

const (
	SortByTitle  SortKey = "title"
	SortByAuthor SortKey = "author"
	SortByISBN   SortKey = "isbn"
)

// ParseSortKey maps a request value to a sort key, falling back to title for
// anything unrecognized.
func ParseSortKey(value string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(value))) {
	case SortByAuthor:
		return SortByAuthor
	case SortByISBN:
		return SortByISBN
	default:
		return SortByTitle
	}
}
