package domain

import "time"

// Link is a bookmark inside a section
type Link struct {
	ID        int64     `json:"id"`
	SectionID int64     `json:"section_id"`
	Title     string    `json:"title" validate:"required"`
	URL       string    `json:"url" validate:"required"`
	Favicon   *string   `json:"favicon"` // resolved URL or uploaded icon path
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkPatch carries a partial update of a link.
// Favicon set to "" asks for re-resolution against the (new) URL.
type LinkPatch struct {
	SectionID *int64  `json:"section_id"`
	Title     *string `json:"title"`
	URL       *string `json:"url"`
	Favicon   *string `json:"favicon"`
	SortOrder *int    `json:"sort_order"`
}
