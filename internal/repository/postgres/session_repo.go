package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const sessionColumns = `id, conference_id, name, highlights, speaker_id, duration, type_of_session, date, start_time, created_at, updated_at`

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

func scanSession(row interface{ Scan(...any) error }) (*domain.Session, error) {
	s := &domain.Session{}
	var dateNull sql.NullTime
	var speakerNull sql.NullString
	err := row.Scan(
		&s.ID, &s.ConferenceID, &s.Name, pq.Array(&s.Highlights), &speakerNull,
		&s.Duration, &s.TypeOfSession, &dateNull, &s.StartTime,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		s.Date = &dateNull.Time
	}
	if speakerNull.Valid {
		s.SpeakerID = speakerNull.String
	}
	return s, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (conference_id, name, highlights, speaker_id, duration, type_of_session, date, start_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var speaker any
	if s.SpeakerID != "" {
		speaker = s.SpeakerID
	}
	return queryer(ctx, r.DB).QueryRowContext(ctx, query,
		s.ConferenceID, s.Name, pq.Array(s.Highlights), speaker,
		s.Duration, s.TypeOfSession, s.Date, s.StartTime,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(queryer(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 ORDER BY date, start_time`
	return r.list(ctx, query, conferenceID)
}

func (r *sessionRepository) ListByConferenceIDAndType(ctx context.Context, conferenceID, typeOfSession string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 AND type_of_session = $2 ORDER BY date, start_time`
	return r.list(ctx, query, conferenceID, typeOfSession)
}

func (r *sessionRepository) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE speaker_id = $1 ORDER BY date, start_time`
	return r.list(ctx, query, speakerID)
}

func (r *sessionRepository) ListAll(ctx context.Context) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY date, start_time`
	return r.list(ctx, query)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := queryer(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
