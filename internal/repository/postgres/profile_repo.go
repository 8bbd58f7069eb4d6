package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"confcentral/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository creates a ProfileRepository backed by postgres.
func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_keys_wishlist, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, p.TeeShirtSize,
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionKeysWishlist),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_keys_wishlist, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	p := &domain.Profile{}
	var attend, wishlist pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize,
		&attend, &wishlist, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.ConferenceKeysToAttend = attend
	p.SessionKeysWishlist = wishlist
	return p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, tee_shirt_size = $3, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, p.UserID, p.DisplayName, p.TeeShirtSize)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddToWishlist appends the token in a single guarded statement; the row-level
// write is atomic, so no transaction is needed for this one-entity mutation.
// Zero affected rows is ambiguous (token already present, or no profile row),
// so that case is disambiguated with an existence check.
func (r *profileRepository) AddToWishlist(ctx context.Context, userID, sessionKey string) (bool, error) {
	query := `
		UPDATE profiles
		SET session_keys_wishlist = array_append(session_keys_wishlist, $2), updated_at = NOW()
		WHERE user_id = $1 AND NOT ($2 = ANY(session_keys_wishlist))
	`
	result, err := r.DB.ExecContext(ctx, query, userID, sessionKey)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		if err := r.checkProfileExists(ctx, userID); err != nil {
			return false, err
		}
	}
	return rows > 0, nil
}

func (r *profileRepository) RemoveFromWishlist(ctx context.Context, userID, sessionKey string) (bool, error) {
	query := `
		UPDATE profiles
		SET session_keys_wishlist = array_remove(session_keys_wishlist, $2), updated_at = NOW()
		WHERE user_id = $1 AND $2 = ANY(session_keys_wishlist)
	`
	result, err := r.DB.ExecContext(ctx, query, userID, sessionKey)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		if err := r.checkProfileExists(ctx, userID); err != nil {
			return false, err
		}
	}
	return rows > 0, nil
}

func (r *profileRepository) checkProfileExists(ctx context.Context, userID string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}
