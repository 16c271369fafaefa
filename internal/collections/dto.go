package collections

// CreateCollectionRequest adds a curated collection.
type CreateCollectionRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description" validate:"omitempty,max=1000"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
	WallpaperIDs  []string `json:"wallpaper_ids" validate:"max=500,dive,required"`
	IsPublic      bool     `json:"is_public"`
}

// UpdateCollectionRequest merges the given fields into an existing record.
type UpdateCollectionRequest struct {
	Name          *string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	CoverImageURL *string   `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	WallpaperIDs  *[]string `json:"wallpaper_ids,omitempty" validate:"omitempty,max=500,dive,required"`
	IsPublic      *bool     `json:"is_public,omitempty"`
}
