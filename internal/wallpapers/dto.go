package wallpapers

// CreateWallpaperRequest registers an already-uploaded asset.
type CreateWallpaperRequest struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	ImageURL     string   `json:"image_url" validate:"required,url"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,url"`
	// StorageKey echoes the key reserved by the direct-upload endpoint,
	// empty for externally hosted images.
	StorageKey   string   `json:"storage_key" validate:"omitempty,max=300"`
	Category     string   `json:"category" validate:"required,max=60"`
	Tags         []string `json:"tags" validate:"max=20,dive,required,max=40"`
	Author       string   `json:"author" validate:"required,max=120"`
	Width        int      `json:"width" validate:"gte=0"`
	Height       int      `json:"height" validate:"gte=0"`
	SizeBytes    int64    `json:"size_bytes" validate:"gte=0"`
}

// UpdateWallpaperRequest merges the given fields into an existing record.
type UpdateWallpaperRequest struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,max=120"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL     *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Category     *string   `json:"category,omitempty" validate:"omitempty,max=60"`
	Tags         *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,required,max=40"`
	Author       *string   `json:"author,omitempty" validate:"omitempty,max=120"`
	Status       *string   `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	Width        *int      `json:"width,omitempty" validate:"omitempty,gte=0"`
	Height       *int      `json:"height,omitempty" validate:"omitempty,gte=0"`
	SizeBytes    *int64    `json:"size_bytes,omitempty" validate:"omitempty,gte=0"`
}

// BulkStatusRequest moderates a set of wallpapers in one action.
type BulkStatusRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
	Status string   `json:"status" validate:"required,oneof=pending approved rejected"`
}

// UploadRequest carries the metadata that accompanies a multipart image
// upload.
type UploadRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Category    string   `json:"category" validate:"required,max=60"`
	Tags        []string `json:"tags" validate:"max=20,dive,required,max=40"`
	Author      string   `json:"author" validate:"required,max=120"`
}
