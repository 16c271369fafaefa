package categories

import "time"

// Kind is the entity kind used for page cache keys and cursor signatures.
const Kind = "categories"

// DefaultPageSize matches the dashboard's category table.
const DefaultPageSize = 10

// Category groups wallpapers by theme.
type Category struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CoverImageURL  string    `json:"cover_image_url,omitempty"`
	WallpaperCount int64     `json:"wallpaper_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
