package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"
)

type speakerRepository struct {
	DB *sql.DB
}

func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{
		DB: db,
	}
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`
	return queryer(ctx, r.DB).QueryRowContext(ctx, query, s.Name, s.CreatedAt).Scan(&s.ID)
}

func (r *speakerRepository) GetByName(ctx context.Context, name string) (*domain.Speaker, error) {
	query := `
		SELECT id, name, created_at
		FROM speakers
		WHERE name = $1
	`
	s := &domain.Speaker{}
	err := queryer(ctx, r.DB).QueryRowContext(ctx, query, name).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
