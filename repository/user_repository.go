package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tipster/database"
	"tipster/domain/entities"
	"tipster/domain/interfaces"
	"tipster/infrastructure/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `
	id,
	pseudo,
	email,
	role,
	total_predictions,
	success_predictions,
	exact_score_predictions,
	success_rate,
	avg_odds,
	created_at,
	updated_at`

const uniqueViolation = "23505"

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepository creates a user repository bound to a transaction
func newUserRepository(q Queryable) interfaces.UserRepository {
	return &UserRepository{q: q}
}

// Create inserts a new account
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "Create")()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = entities.RoleUser
	}

	var createdAt *time.Time
	if !user.CreatedAt.IsZero() {
		createdAt = &user.CreatedAt
	}

	query := `
		INSERT INTO users (
			id, pseudo, email, role,
			total_predictions, success_predictions, exact_score_predictions, success_rate, avg_odds,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($10, NOW()))
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.Pseudo,
		user.Email,
		string(user.Role),
		user.Stats.TotalPredictions,
		user.Stats.SuccessPredictions,
		user.Stats.ExactScorePredictions,
		user.Stats.SuccessRate,
		user.Stats.AvgOdds,
		createdAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if violation := uniqueViolationReason(err); violation != nil {
			return violation
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByID")()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return user, nil
}

// GetByIDForUpdate retrieves an account with a row lock for update
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByIDForUpdate")()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", id, err)
	}

	return user, nil
}

// GetByIDs retrieves several accounts; unknown IDs are skipped
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByIDs")()

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id`
	return r.queryUsers(ctx, query, ids)
}

// GetByPseudo retrieves an account by pseudo, case-insensitively
func (r *UserRepository) GetByPseudo(ctx context.Context, pseudo string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByPseudo")()

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(pseudo) = LOWER($1)`

	user, err := scanUser(r.q.QueryRow(ctx, query, strings.TrimSpace(pseudo)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by pseudo: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves an account by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "GetByEmail")()

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.q.QueryRow(ctx, query, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListRanked returns every account with at least one finalized prediction
func (r *UserRepository) ListRanked(ctx context.Context) ([]*entities.User, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "ListRanked")()

	query := `SELECT ` + userColumns + ` FROM users WHERE total_predictions > 0 ORDER BY id`
	return r.queryUsers(ctx, query)
}

// UpdateStats replaces the statistics snapshot of an account
func (r *UserRepository) UpdateStats(ctx context.Context, userID string, stats entities.UserStats) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "UpdateStats")()

	query := `
		UPDATE users
		SET total_predictions = $2,
		    success_predictions = $3,
		    exact_score_predictions = $4,
		    success_rate = $5,
		    avg_odds = $6,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		userID,
		stats.TotalPredictions,
		stats.SuccessPredictions,
		stats.ExactScorePredictions,
		stats.SuccessRate,
		stats.AvgOdds,
	)
	if err != nil {
		return fmt.Errorf("failed to update stats for user %s: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", userID)
	}

	return nil
}

// UpdateEmail sets the email of an account
func (r *UserRepository) UpdateEmail(ctx context.Context, userID, email string) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("user", "UpdateEmail")()

	query := `UPDATE users SET email = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(ctx, query, userID, email)
	if err != nil {
		if violation := uniqueViolationReason(err); violation != nil {
			return false, violation
		}
		return false, fmt.Errorf("failed to update email for user %s: %w", userID, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*entities.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	var role string

	err := row.Scan(
		&user.ID,
		&user.Pseudo,
		&user.Email,
		&role,
		&user.Stats.TotalPredictions,
		&user.Stats.SuccessPredictions,
		&user.Stats.ExactScorePredictions,
		&user.Stats.SuccessRate,
		&user.Stats.AvgOdds,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = entities.Role(role)
	return &user, nil
}

// uniqueViolationReason turns a case-insensitive uniqueness conflict into a guard violation
func uniqueViolationReason(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "idx_users_pseudo_lower":
		return entities.NewGuardViolation(entities.ReasonPseudoInUse, "pseudo already taken")
	case "idx_users_email_lower":
		return entities.NewGuardViolation(entities.ReasonEmailInUse, "email already in use")
	}
	return nil
}
