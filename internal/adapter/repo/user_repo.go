package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pichasafi/internal/domain"
)

const userColumns = `id, phone_number, onboarding_step,
coalesce(business_name, ''), coalesce(logo_url, ''), coalesce(location, ''),
coalesce(contact_phone, ''), coalesce(contact_whatsapp, ''),
coalesce(brand_color_primary, ''), coalesce(brand_color_bg, ''), coalesce(template_style, ''),
images_created_this_month, monthly_limit, subscription_tier, created_at, updated_at`

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool      *pgxpool.Pool
	freeLimit int
}

// NewUserRepository creates a new UserRepositoryPG. freeLimit seeds the
// monthly quota of newly created users.
func NewUserRepository(pool *pgxpool.Pool, freeLimit int) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool, freeLimit: freeLimit}
}

// GetByPhone fetches a user by WhatsApp phone number.
func (r *UserRepositoryPG) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
	return scanUser(row)
}

// Create inserts a new user with onboarding_step 'new' and the free tier quota.
func (r *UserRepositoryPG) Create(ctx context.Context, phone string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (id, phone_number, onboarding_step, images_created_this_month, monthly_limit, subscription_tier)
VALUES (gen_random_uuid(), $1, 'new', 0, $2, 'free')
RETURNING `+userColumns, phone, r.freeLimit)
	return scanUser(row)
}

// Update applies the non-nil fields of update to the user's row.
func (r *UserRepositoryPG) Update(ctx context.Context, phone string, update domain.UserUpdate) (*domain.User, error) {
	sets, args := buildUserSet(update)
	if len(sets) == 0 {
		return r.GetByPhone(ctx, phone)
	}

	query := "UPDATE users SET " + joinSets(sets) + ", updated_at = NOW()"
	args = append(args, phone)
	query += fmt.Sprintf(" WHERE phone_number = $%d RETURNING %s", len(args), userColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanUser(row)
}

// IncrementImageCount bumps the monthly usage counter by one. The read and
// the write are a single statement, but callers racing through the quota
// check beforehand can still both land here; that window is accepted.
func (r *UserRepositoryPG) IncrementImageCount(ctx context.Context, phone string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET images_created_this_month = images_created_this_month + 1, updated_at = NOW()
WHERE phone_number = $1
RETURNING `+userColumns, phone)
	return scanUser(row)
}

func buildUserSet(update domain.UserUpdate) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.OnboardingStep != nil {
		add("onboarding_step", string(*update.OnboardingStep))
	}
	if update.BusinessName != nil {
		add("business_name", *update.BusinessName)
	}
	if update.LogoURL != nil {
		add("logo_url", *update.LogoURL)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.ContactPhone != nil {
		add("contact_phone", *update.ContactPhone)
	}
	if update.ContactWhatsApp != nil {
		add("contact_whatsapp", *update.ContactWhatsApp)
	}
	if update.BrandColorPrimary != nil {
		add("brand_color_primary", *update.BrandColorPrimary)
	}
	if update.BrandColorBG != nil {
		add("brand_color_bg", *update.BrandColorBG)
	}
	if update.TemplateStyle != nil {
		add("template_style", string(*update.TemplateStyle))
	}
	return sets, args
}

func joinSets(sets []string) string {
	out := ""
	for i, s := range sets {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.PhoneNumber,
		&u.OnboardingStep,
		&u.BusinessName,
		&u.LogoURL,
		&u.Location,
		&u.ContactPhone,
		&u.ContactWhatsApp,
		&u.BrandColorPrimary,
		&u.BrandColorBG,
		&u.TemplateStyle,
		&u.ImagesThisMonth,
		&u.MonthlyLimit,
		&u.Tier,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
