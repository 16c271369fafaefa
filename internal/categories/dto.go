package categories

// CreateCategoryRequest adds a new category.
type CreateCategoryRequest struct {
	Name          string `json:"name" validate:"required,max=60"`
	Description   string `json:"description" validate:"omitempty,max=500"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// UpdateCategoryRequest merges the given fields into an existing record.
type UpdateCategoryRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=60"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
}
