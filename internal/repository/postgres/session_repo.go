package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"confcentral/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository creates a SessionRepository backed by postgres.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

func (r *sessionRepository) AllocateID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT nextval('session_ids')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate session id: %w", err)
	}
	return id, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, conference_key, name, highlights, type_of_session, start_time, duration, speaker_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, s.ConferenceKey, s.Name, s.Highlights, s.TypeOfSession,
		s.StartTime, s.Duration, s.SpeakerName, s.CreatedAt,
	)
	return err
}

const sessionFields = `id, conference_key, name, highlights, type_of_session, start_time, duration, speaker_name, created_at`

func scanSession(scan func(dest ...any) error) (*domain.Session, error) {
	s := &domain.Session{}
	err := scan(
		&s.ID, &s.ConferenceKey, &s.Name, &s.Highlights, &s.TypeOfSession,
		&s.StartTime, &s.Duration, &s.SpeakerName, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) Get(ctx context.Context, ref domain.SessionRef) (*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		WHERE conference_key = $1 AND id = $2
	`
	row := r.DB.QueryRowContext(ctx, query, ref.ConferenceKey, ref.ID)
	s, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) GetMulti(ctx context.Context, refs []domain.SessionRef) ([]*domain.Session, error) {
	if len(refs) == 0 {
		return []*domain.Session{}, nil
	}
	placeholders := make([]string, 0, len(refs))
	args := make([]any, 0, 2*len(refs))
	for i, ref := range refs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", 2*i+1, 2*i+2))
		args = append(args, ref.ConferenceKey, ref.ID)
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE (conference_key, id) IN (%s)
		ORDER BY name
	`, sessionFields, strings.Join(placeholders, ", "))
	return r.querySessions(ctx, query, args...)
}

func (r *sessionRepository) ListAll(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		ORDER BY start_time, name
	`
	return r.querySessions(ctx, query)
}

func (r *sessionRepository) ListByConference(ctx context.Context, conferenceKey, typeOfSession string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		WHERE conference_key = $1
	`
	args := []any{conferenceKey}
	if typeOfSession != "" {
		query += `		AND type_of_session = $2
`
		args = append(args, typeOfSession)
	}
	query += `		ORDER BY start_time, name`
	return r.querySessions(ctx, query, args...)
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, speakerName string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		WHERE speaker_name = $1
		ORDER BY start_time, name
	`
	return r.querySessions(ctx, query, speakerName)
}

func (r *sessionRepository) ListBySpeakerInConference(ctx context.Context, speakerName, conferenceKey string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		WHERE speaker_name = $1 AND conference_key = $2
		ORDER BY start_time, name
	`
	return r.querySessions(ctx, query, speakerName, conferenceKey)
}

// ListUpcoming pushes both the start-hour range and the excluded-type
// predicate server-side; postgres has no single-inequality restriction.
func (r *sessionRepository) ListUpcoming(ctx context.Context, hourCutoff int, excludedType string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionFields + `
		FROM sessions
		WHERE start_time BETWEEN 1 AND $1 AND type_of_session <> $2
		ORDER BY start_time, name
	`
	return r.querySessions(ctx, query, hourCutoff, excludedType)
}

func (r *sessionRepository) querySessions(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
