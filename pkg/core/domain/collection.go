package domain

import "time"

// Collection is the top level of a user's link tree
type Collection struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name" validate:"required"`
	Icon      *string   `json:"icon"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectionPatch carries a partial update. Nil fields keep their stored value.
type CollectionPatch struct {
	Name      *string `json:"name"`
	Icon      *string `json:"icon"` // "" clears the icon
	SortOrder *int    `json:"sort_order"`
}

// Section groups links inside a collection
type Section struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collection_id"`
	Name         string    `json:"name" validate:"required"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type SectionPatch struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

// Dashboard is the read-only composed view of one collection
type Dashboard struct {
	Collection
	Sections []DashboardSection `json:"sections"`
}

type DashboardSection struct {
	Section
	Links []Link `json:"links"`
}
