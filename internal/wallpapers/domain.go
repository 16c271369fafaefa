package wallpapers

import "time"

// Kind is the entity kind used for page cache keys and cursor signatures.
const Kind = "wallpapers"

// DefaultPageSize is the dashboard grid size for wallpaper listings.
const DefaultPageSize = 12

// Status tracks a wallpaper through moderation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is one of the known moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Wallpaper is a user-submitted image under moderation.
type Wallpaper struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	StorageKey   string    `json:"storage_key,omitempty"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	Author       string    `json:"author"`
	Status       Status    `json:"status"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	Downloads    int64     `json:"downloads"`
	Likes        int64     `json:"likes"`
	SearchTerms  []string  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
