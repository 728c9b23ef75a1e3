package domain

import "time"

// GeneratedImage links a user to an original photo and its enhanced result.
// Records are immutable once written.
type GeneratedImage struct {
	ID           string
	UserID       string
	ImageType    string
	TemplateUsed string
	OriginalURL  string
	ResultURL    string
	Metadata     map[string]string
	CreatedAt    time.Time
}

// ImageTypeProductEnhance is the only image type produced today.
const ImageTypeProductEnhance = "product_enhance"
