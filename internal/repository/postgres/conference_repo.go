package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"confcentral/internal/domain"
)

// Conference filter fields mapped to their columns. The composer has already
// whitelisted the fields; this map is the single place that knows the schema.
var conferenceColumns = map[string]string{
	"name":           "name",
	"city":           "city",
	"month":          "month",
	"maxAttendees":   "max_attendees",
	"seatsAvailable": "seats_available",
}

type conferenceRepository struct {
	DB *sql.DB
}

// NewConferenceRepository creates a ConferenceRepository backed by postgres.
func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{
		DB: db,
	}
}

func (r *conferenceRepository) AllocateID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT nextval('conference_ids')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate conference id: %w", err)
	}
	return id, nil
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (id, organizer_id, name, description, topics, city, month, max_attendees, seats_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OrganizerID, c.Name, c.Description, pq.Array(c.Topics),
		c.City, c.Month, c.MaxAttendees, c.SeatsAvailable, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

const conferenceFields = `id, organizer_id, name, description, topics, city, month, max_attendees, seats_available, created_at, updated_at`

func scanConference(scan func(dest ...any) error) (*domain.Conference, error) {
	c := &domain.Conference{}
	var topics pq.StringArray
	err := scan(
		&c.ID, &c.OrganizerID, &c.Name, &c.Description, &topics,
		&c.City, &c.Month, &c.MaxAttendees, &c.SeatsAvailable, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Topics = topics
	return c, nil
}

func (r *conferenceRepository) Get(ctx context.Context, ref domain.ConferenceRef) (*domain.Conference, error) {
	query := `
		SELECT ` + conferenceFields + `
		FROM conferences
		WHERE organizer_id = $1 AND id = $2
	`
	row := r.DB.QueryRowContext(ctx, query, ref.OrganizerID, ref.ID)
	c, err := scanConference(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) GetMulti(ctx context.Context, refs []domain.ConferenceRef) ([]*domain.Conference, error) {
	if len(refs) == 0 {
		return []*domain.Conference{}, nil
	}
	placeholders := make([]string, 0, len(refs))
	args := make([]any, 0, 2*len(refs))
	for i, ref := range refs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", 2*i+1, 2*i+2))
		args = append(args, ref.OrganizerID, ref.ID)
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM conferences
		WHERE (organizer_id, id) IN (%s)
		ORDER BY name
	`, conferenceFields, strings.Join(placeholders, ", "))
	return r.queryConferences(ctx, query, args...)
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	query := `
		SELECT ` + conferenceFields + `
		FROM conferences
		WHERE organizer_id = $1
		ORDER BY name
	`
	return r.queryConferences(ctx, query, organizerID)
}

// Query compiles a validated ConferenceQuery to SQL. The composer guarantees
// the fields and operators are from the whitelist; "topic" compiles to an
// array membership test and supports equality only.
func (r *conferenceRepository) Query(ctx context.Context, q *domain.ConferenceQuery) ([]*domain.Conference, error) {
	where := make([]string, 0, len(q.Conditions))
	args := make([]any, 0, len(q.Conditions))
	for _, cond := range q.Conditions {
		n := len(args) + 1
		if cond.Field == "topic" {
			if cond.Operator != domain.OpEQ {
				return nil, fmt.Errorf("topic filter supports equality only: %w", domain.ErrInvalidInput)
			}
			where = append(where, fmt.Sprintf("$%d = ANY(topics)", n))
			args = append(args, cond.Value)
			continue
		}
		col, ok := conferenceColumns[cond.Field]
		if !ok {
			return nil, fmt.Errorf("unknown filter field %q: %w", cond.Field, domain.ErrInvalidInput)
		}
		op := cond.Operator
		if op == domain.OpNE {
			op = "<>"
		}
		where = append(where, fmt.Sprintf("%s %s $%d", col, op, n))
		args = append(args, cond.Value)
	}

	orderBy := make([]string, 0, len(q.OrderBy))
	for _, field := range q.OrderBy {
		col, ok := conferenceColumns[field]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q: %w", field, domain.ErrInvalidInput)
		}
		orderBy = append(orderBy, col)
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "name")
	}

	query := `
		SELECT ` + conferenceFields + `
		FROM conferences
	`
	if len(where) > 0 {
		query += "\t\tWHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += "\t\tORDER BY " + strings.Join(orderBy, ", ")
	return r.queryConferences(ctx, query, args...)
}

func (r *conferenceRepository) queryConferences(ctx context.Context, query string, args ...any) ([]*domain.Conference, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows.Scan)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}
