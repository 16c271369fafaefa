package collections

import (
	"time"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
)

// Kind is the entity kind used for page cache keys and cursor signatures.
const Kind = "collections"

// DefaultPageSize matches the dashboard's collection grid.
const DefaultPageSize = 20

// Collection is a curated set of wallpapers. WallpaperIDs are weak
// references: deleting a wallpaper does not edit the collections that
// reference it, readers skip dangling ids.
type Collection struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	WallpaperIDs  []string  `json:"wallpaper_ids"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Detail is a collection with its resolvable wallpapers attached.
type Detail struct {
	Collection
	Wallpapers []wallpapers.Wallpaper `json:"wallpapers"`
}
