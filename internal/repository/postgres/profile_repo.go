package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_wishlist, version, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	p := &domain.Profile{}
	err := queryer(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize,
		pq.Array(&p.ConferenceKeysToAttend), pq.Array(&p.SessionWishlist),
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_wishlist, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8)
	`
	_, err := queryer(ctx, r.DB).ExecContext(ctx, query,
		p.ID, p.DisplayName, p.MainEmail, p.TeeShirtSize,
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionWishlist),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.Version = 1
	return nil
}

// Update writes the profile conditioned on the version it was read at.
// RowsAffected == 0 means a concurrent writer bumped the version first.
func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, tee_shirt_size = $2, conference_keys_to_attend = $3, session_wishlist = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
	`
	result, err := queryer(ctx, r.DB).ExecContext(ctx, query,
		p.DisplayName, p.TeeShirtSize,
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionWishlist),
		p.ID, p.Version,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContention
	}
	p.Version++
	return nil
}
