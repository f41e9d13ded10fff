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
)

const predictionColumns = `
	id,
	user_id,
	sport,
	competition,
	match_name,
	to_char(match_date, 'YYYY-MM-DD'),
	to_char(match_time, 'HH24:MI'),
	odds::float8,
	prediction_text,
	probable_score,
	details,
	status,
	result,
	created_at`

// PredictionRepository implements the PredictionRepository interface
type PredictionRepository struct {
	q Queryable
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *database.DB) *PredictionRepository {
	return &PredictionRepository{q: db.Pool}
}

// newPredictionRepository creates a prediction repository bound to a transaction
func newPredictionRepository(q Queryable) interfaces.PredictionRepository {
	return &PredictionRepository{q: q}
}

// Create inserts a new prediction
func (r *PredictionRepository) Create(ctx context.Context, prediction *entities.Prediction) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "Create")()

	if prediction.ID == "" {
		prediction.ID = uuid.NewString()
	}
	if prediction.Status == "" {
		prediction.Status = entities.PredictionStatusPendingValidation
	}

	var createdAt *time.Time
	if !prediction.CreatedAt.IsZero() {
		createdAt = &prediction.CreatedAt
	}

	query := `
		INSERT INTO predictions (
			id, user_id, sport, competition, match_name, match_date, match_time,
			odds, prediction_text, probable_score, details, status, result, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7::time, $8, $9, $10, $11, $12, $13, COALESCE($14, NOW()))
		RETURNING odds::float8, created_at
	`

	err := r.q.QueryRow(ctx, query,
		prediction.ID,
		prediction.UserID,
		string(prediction.Sport),
		prediction.Competition,
		prediction.MatchName,
		prediction.MatchDate,
		prediction.MatchTime,
		prediction.Odds,
		prediction.PredictionText,
		prediction.ProbableScore,
		prediction.Details,
		string(prediction.Status),
		resultArg(prediction.Result),
		createdAt,
	).Scan(&prediction.Odds, &prediction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction by its ID
func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*entities.Prediction, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "GetByID")()

	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	prediction, err := scanPrediction(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction %s: %w", id, err)
	}

	return prediction, nil
}

// List returns predictions matching the filter
func (r *PredictionRepository) List(ctx context.Context, filter entities.PredictionFilter) ([]*entities.Prediction, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "List")()

	var conditions []string
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, "status = ANY("+arg(statuses)+")")
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = "+arg(*filter.UserID))
	}
	if filter.Sport != nil {
		conditions = append(conditions, "sport = "+arg(string(*filter.Sport)))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "match_date >= "+arg(*filter.DateFrom)+"::date")
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "match_date <= "+arg(*filter.DateTo)+"::date")
	}
	if filter.OddsMin != nil {
		conditions = append(conditions, "odds >= "+arg(*filter.OddsMin))
	}
	if filter.OddsMax != nil {
		conditions = append(conditions, "odds <= "+arg(*filter.OddsMax))
	}
	if filter.WithProbableScore {
		conditions = append(conditions, "probable_score IS NOT NULL AND btrim(probable_score) <> ''")
	}

	query := `SELECT ` + predictionColumns + ` FROM predictions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch filter.OrderBy {
	case entities.OrderScheduleAsc:
		query += " ORDER BY match_date ASC, match_time ASC, id ASC"
	case entities.OrderScheduleDesc:
		query += " ORDER BY match_date DESC, match_time DESC, id ASC"
	default:
		query += " ORDER BY created_at DESC, id ASC"
	}

	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*entities.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, prediction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return predictions, nil
}

// TransitionStatus moves a prediction between statuses with a conditional update
func (r *PredictionRepository) TransitionStatus(ctx context.Context, id string, from, to entities.PredictionStatus) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "TransitionStatus")()

	query := `UPDATE predictions SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.q.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to move prediction %s from %s to %s: %w", id, from, to, err)
	}

	return result.RowsAffected() == 1, nil
}

// Finalize records the outcome of a prediction waiting for its result
func (r *PredictionRepository) Finalize(ctx context.Context, id string, outcome entities.Result) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "Finalize")()

	query := `
		UPDATE predictions
		SET status = $2, result = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, id, string(outcome), string(entities.PredictionStatusWaitingResult))
	if err != nil {
		return false, fmt.Errorf("failed to finalize prediction %s: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

// DeleteWithStatus deletes a prediction only while it has the given status
func (r *PredictionRepository) DeleteWithStatus(ctx context.Context, id string, status entities.PredictionStatus) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "DeleteWithStatus")()

	query := `DELETE FROM predictions WHERE id = $1 AND status = $2`

	result, err := r.q.Exec(ctx, query, id, string(status))
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction %s: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes a prediction unless it has been finalized
func (r *PredictionRepository) Delete(ctx context.Context, id string) (bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "Delete")()

	query := `DELETE FROM predictions WHERE id = $1 AND result IS NULL`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction %s: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

func scanPrediction(row pgx.Row) (*entities.Prediction, error) {
	var prediction entities.Prediction
	var sport, status string
	var result *string

	err := row.Scan(
		&prediction.ID,
		&prediction.UserID,
		&sport,
		&prediction.Competition,
		&prediction.MatchName,
		&prediction.MatchDate,
		&prediction.MatchTime,
		&prediction.Odds,
		&prediction.PredictionText,
		&prediction.ProbableScore,
		&prediction.Details,
		&status,
		&result,
		&prediction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	prediction.Sport = entities.Sport(sport)
	prediction.Status = entities.PredictionStatus(status)
	if result != nil {
		r := entities.Result(*result)
		prediction.Result = &r
	}

	return &prediction, nil
}

func resultArg(result *entities.Result) *string {
	if result == nil {
		return nil
	}
	s := string(*result)
	return &s
}
