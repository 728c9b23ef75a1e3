package domain

import "context"

// UserRepository defines access methods for users, keyed by phone number.
type UserRepository interface {
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Create(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, phone string, update UserUpdate) (*User, error)
	IncrementImageCount(ctx context.Context, phone string) (*User, error)
}

// GeneratedImageRepository persists generated-image records.
type GeneratedImageRepository interface {
	Save(ctx context.Context, img *GeneratedImage) error
}

// BlobStore uploads bytes under a key and returns a stable public URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Messenger is the outbound messaging gateway. Implementations report
// transport failures as errors instead of panicking past the call boundary.
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendImage(ctx context.Context, to, imageURL, caption string) error
	MarkAsRead(ctx context.Context, messageID string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}

// Enhancer is the product-photo enhancement pipeline.
type Enhancer interface {
	Enhance(ctx context.Context, imageBytes []byte, bgColorHex string) ([]byte, error)
}
