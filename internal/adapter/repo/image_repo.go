package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pichasafi/internal/domain"
)

// GeneratedImageRepositoryPG implements domain.GeneratedImageRepository
// backed by PostgreSQL.
type GeneratedImageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGeneratedImageRepository creates a new GeneratedImageRepositoryPG.
func NewGeneratedImageRepository(pool *pgxpool.Pool) *GeneratedImageRepositoryPG {
	return &GeneratedImageRepositoryPG{pool: pool}
}

// Save inserts a generated-image record. Records are immutable; there is no
// update path.
func (r *GeneratedImageRepositoryPG) Save(ctx context.Context, img *domain.GeneratedImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	metadata := img.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("repo: encode image metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO generated_images (id, user_id, image_type, template_used, original_image_url, result_image_url, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		img.ID,
		img.UserID,
		img.ImageType,
		img.TemplateUsed,
		img.OriginalURL,
		img.ResultURL,
		metaJSON,
		img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repo: insert generated image: %w", err)
	}
	return nil
}
