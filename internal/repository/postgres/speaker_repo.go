package postgres

import (
	"context"
	"database/sql"
	"errors"

	"confcentral/internal/domain"
)

type speakerRepository struct {
	DB *sql.DB
}

// NewSpeakerRepository creates a SpeakerRepository backed by postgres.
func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{
		DB: db,
	}
}

func (r *speakerRepository) GetByName(ctx context.Context, name string) (*domain.Speaker, error) {
	query := `
		SELECT name, age, specialization, created_at
		FROM speakers
		WHERE name = $1
	`
	s := &domain.Speaker{}
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&s.Name, &s.Age, &s.Specialization, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// CreateIfAbsent relies on ON CONFLICT DO NOTHING so concurrent creators of
// the same name converge on a single row without a transaction.
func (r *speakerRepository) CreateIfAbsent(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (name, age, specialization, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, s.Name, s.Age, s.Specialization, s.CreatedAt)
	return err
}
