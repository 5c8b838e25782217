package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const conferenceColumns = `id, organizer_id, name, description, topics, city, start_date, end_date, month, max_attendees, seats_available, version, created_at, updated_at`

type conferenceRepository struct {
	DB *sql.DB
}

func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{
		DB: db,
	}
}

func scanConference(row interface{ Scan(...any) error }) (*domain.Conference, error) {
	c := &domain.Conference{}
	var startNull, endNull sql.NullTime
	err := row.Scan(
		&c.ID, &c.OrganizerID, &c.Name, &c.Description, pq.Array(&c.Topics), &c.City,
		&startNull, &endNull, &c.Month, &c.MaxAttendees, &c.SeatsAvailable,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startNull.Valid {
		c.StartDate = &startNull.Time
	}
	if endNull.Valid {
		c.EndDate = &endNull.Time
	}
	return c, nil
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (organizer_id, name, description, topics, city, start_date, end_date, month, max_attendees, seats_available, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
		RETURNING id
	`
	err := queryer(ctx, r.DB).QueryRowContext(ctx, query,
		c.OrganizerID, c.Name, c.Description, pq.Array(c.Topics), c.City,
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return err
	}
	c.Version = 1
	return nil
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = $1`
	c, err := scanConference(queryer(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE organizer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, organizerID)
}

func (r *conferenceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if len(ids) == 0 {
		return []*domain.Conference{}, nil
	}
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = ANY($1) ORDER BY name`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *conferenceRepository) ListNearlySoldOut(ctx context.Context, threshold int) ([]*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE seats_available > 0 AND seats_available <= $1 ORDER BY name`
	return r.list(ctx, query, threshold)
}

// filterColumns maps whitelisted query fields to their columns. Anything
// outside this map is rejected before reaching the repository.
var filterColumns = map[string]string{
	domain.FilterFieldCity:         "city",
	domain.FilterFieldMonth:        "month",
	domain.FilterFieldMaxAttendees: "max_attendees",
}

var filterOperators = map[string]string{
	domain.FilterOpEQ:   "=",
	domain.FilterOpNE:   "<>",
	domain.FilterOpGT:   ">",
	domain.FilterOpGTEQ: ">=",
	domain.FilterOpLT:   "<",
	domain.FilterOpLTEQ: "<=",
}

func (r *conferenceRepository) Query(ctx context.Context, filters []domain.ConferenceFilter, orderField string) ([]*domain.Conference, error) {
	var clauses []string
	var args []any
	n := 1
	for _, f := range filters {
		if f.Field == domain.FilterFieldTopic {
			clauses = append(clauses, fmt.Sprintf("$%d = ANY(topics)", n))
			args = append(args, f.Value)
			n++
			continue
		}
		col, ok := filterColumns[f.Field]
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		op, ok := filterOperators[f.Op]
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		var val any = f.Value
		if f.Field == domain.FilterFieldMonth || f.Field == domain.FilterFieldMaxAttendees {
			v, err := strconv.Atoi(f.Value)
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			val = v
		}
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, op, n))
		args = append(args, val)
		n++
	}

	query := `SELECT ` + conferenceColumns + ` FROM conferences`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	// Sort on the inequality field first, then name.
	if col, ok := filterColumns[orderField]; ok {
		query += " ORDER BY " + col + ", name"
	} else {
		query += " ORDER BY name"
	}
	return r.list(ctx, query, args...)
}

// UpdateSeats writes the seat count conditioned on the version the
// conference was read at. RowsAffected == 0 means a concurrent writer
// bumped the version first.
func (r *conferenceRepository) UpdateSeats(ctx context.Context, id string, seatsAvailable, version int) error {
	query := `
		UPDATE conferences
		SET seats_available = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	result, err := queryer(ctx, r.DB).ExecContext(ctx, query, seatsAvailable, id, version)
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
	return nil
}

func (r *conferenceRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Conference, error) {
	rows, err := queryer(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	confs := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}
