package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/lib/pq"

	"confcentral/internal/domain"
)

// maxTxAttempts bounds the optimistic retry loop on serialization conflicts.
const maxTxAttempts = 3

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository creates the transactional registration engine.
// Both mutations run in a single transaction spanning the profile and
// conference rows, locked in a fixed order (profile first) so concurrent
// register/unregister calls cannot deadlock.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationStore {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Register(ctx context.Context, userID string, ref domain.ConferenceRef, conferenceKey string) error {
	return r.withRetry(ctx, func(tx *sql.Tx) error {
		attend, err := lockProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if slices.Contains(attend, conferenceKey) {
			return fmt.Errorf("already registered for conference: %w", domain.ErrConflict)
		}

		seats, err := lockConference(ctx, tx, ref)
		if err != nil {
			return err
		}
		if seats <= 0 {
			return fmt.Errorf("no seats available: %w", domain.ErrConflict)
		}

		if _, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET conference_keys_to_attend = array_append(conference_keys_to_attend, $2), updated_at = NOW()
		WHERE user_id = $1
	`, userID, conferenceKey); err != nil {
			return fmt.Errorf("append conference key: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
		UPDATE conferences
		SET seats_available = seats_available - 1, updated_at = NOW()
		WHERE organizer_id = $1 AND id = $2
	`, ref.OrganizerID, ref.ID); err != nil {
			return fmt.Errorf("decrement seats: %w", err)
		}
		return nil
	})
}

func (r *registrationRepository) Unregister(ctx context.Context, userID string, ref domain.ConferenceRef, conferenceKey string) (bool, error) {
	removed := false
	err := r.withRetry(ctx, func(tx *sql.Tx) error {
		removed = false
		attend, err := lockProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !slices.Contains(attend, conferenceKey) {
			// Not registered: success=false, nothing to mutate. The commit
			// of an empty transaction is harmless.
			return nil
		}

		if _, err := lockConference(ctx, tx, ref); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET conference_keys_to_attend = array_remove(conference_keys_to_attend, $2), updated_at = NOW()
		WHERE user_id = $1
	`, userID, conferenceKey); err != nil {
			return fmt.Errorf("remove conference key: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
		UPDATE conferences
		SET seats_available = seats_available + 1, updated_at = NOW()
		WHERE organizer_id = $1 AND id = $2
	`, ref.OrganizerID, ref.ID); err != nil {
			return fmt.Errorf("increment seats: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

// withRetry runs fn inside a transaction, retrying a bounded number of times
// when postgres reports a serialization failure or deadlock. Business errors
// (Conflict, NotFound) roll back and return immediately.
func (r *registrationRepository) withRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.runInTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", domain.ErrConflict)
}

func (r *registrationRepository) runInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func lockProfile(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	var attend pq.StringArray
	err := tx.QueryRowContext(ctx, `
		SELECT conference_keys_to_attend
		FROM profiles
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&attend)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	return attend, nil
}

func lockConference(ctx context.Context, tx *sql.Tx, ref domain.ConferenceRef) (int, error) {
	var seats int
	err := tx.QueryRowContext(ctx, `
		SELECT seats_available
		FROM conferences
		WHERE organizer_id = $1 AND id = $2
		FOR UPDATE
	`, ref.OrganizerID, ref.ID).Scan(&seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("lock conference: %w", err)
	}
	return seats, nil
}

// isRetryable reports whether the error is a postgres serialization failure
// (40001) or deadlock (40P01) worth another attempt.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
