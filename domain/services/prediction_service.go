package services

import (
	"context"
	"fmt"
	"time"

	"tipster/domain/entities"
	"tipster/domain/events"
	"tipster/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultDeletionGracePeriod is how long a prediction must exist before its owner can delete it
const DefaultDeletionGracePeriod = 48 * time.Hour

// PredictionServiceConfig tunes the lifecycle rules
type PredictionServiceConfig struct {
	// GracePeriod a prediction must be older than before deletion
	GracePeriod time.Duration
	// Location match dates and times are expressed in
	Location *time.Location
	// Now returns the current time
	Now func() time.Time
}

func (c PredictionServiceConfig) withDefaults() PredictionServiceConfig {
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultDeletionGracePeriod
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type predictionService struct {
	predictionRepo interfaces.PredictionRepository
	userRepo       interfaces.UserRepository
	policy         interfaces.ModerationPolicy
	eventPublisher interfaces.EventPublisher
	config         PredictionServiceConfig
}

// NewPredictionService creates a new prediction lifecycle service
func NewPredictionService(
	predictionRepo interfaces.PredictionRepository,
	userRepo interfaces.UserRepository,
	policy interfaces.ModerationPolicy,
	eventPublisher interfaces.EventPublisher,
	config PredictionServiceConfig,
) interfaces.PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		policy:         policy,
		eventPublisher: eventPublisher,
		config:         config.withDefaults(),
	}
}

// SubmitPrediction validates the request and stores a pending prediction
func (s *predictionService) SubmitPrediction(ctx context.Context, req *entities.SubmitPredictionRequest) (*entities.Prediction, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", req.UserID, err)
	}
	if owner == nil {
		return nil, entities.NewValidationError("user_id", "unknown user")
	}

	prediction := req.ToPrediction()
	prediction.ID = uuid.NewString()
	prediction.CreatedAt = s.config.Now().UTC()

	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	s.publish(events.PredictionSubmittedEvent{
		PredictionID:   prediction.ID,
		UserID:         prediction.UserID,
		AuthorName:     owner.DisplayName(),
		Sport:          string(prediction.Sport),
		Competition:    prediction.Competition,
		MatchName:      prediction.MatchName,
		MatchDate:      prediction.MatchDate,
		MatchTime:      prediction.MatchTime,
		Odds:           prediction.Odds,
		PredictionText: prediction.PredictionText,
		ProbableScore:  prediction.ProbableScore,
		Details:        prediction.Details,
	})

	log.WithFields(log.Fields{
		"predictionID": prediction.ID,
		"userID":       prediction.UserID,
		"sport":        prediction.Sport,
		"odds":         prediction.Odds,
	}).Info("Prediction submitted for validation")

	return prediction, nil
}

// ValidatePrediction moves a pending prediction to active
func (s *predictionService) ValidatePrediction(ctx context.Context, predictionID string, actor entities.Actor) error {
	if err := s.requireModerator(ctx, actor); err != nil {
		return err
	}

	ok, err := s.predictionRepo.TransitionStatus(ctx, predictionID,
		entities.PredictionStatusPendingValidation, entities.PredictionStatusActive)
	if err != nil {
		return fmt.Errorf("failed to validate prediction %s: %w", predictionID, err)
	}
	if !ok {
		return entities.ErrNotFound("prediction")
	}

	s.publish(events.PredictionValidatedEvent{PredictionID: predictionID, ModeratorID: actor.UserID})

	log.WithFields(log.Fields{
		"predictionID": predictionID,
		"moderatorID":  actor.UserID,
	}).Info("Prediction validated")
	return nil
}

// RejectPrediction deletes a pending prediction
func (s *predictionService) RejectPrediction(ctx context.Context, predictionID string, actor entities.Actor) error {
	if err := s.requireModerator(ctx, actor); err != nil {
		return err
	}

	ok, err := s.predictionRepo.DeleteWithStatus(ctx, predictionID, entities.PredictionStatusPendingValidation)
	if err != nil {
		return fmt.Errorf("failed to reject prediction %s: %w", predictionID, err)
	}
	if !ok {
		return entities.ErrNotFound("prediction")
	}

	s.publish(events.PredictionRejectedEvent{PredictionID: predictionID, ModeratorID: actor.UserID})

	log.WithFields(log.Fields{
		"predictionID": predictionID,
		"moderatorID":  actor.UserID,
	}).Info("Prediction rejected")
	return nil
}

// SweepExpiredActive moves every active prediction whose match started strictly before now
// to waiting_result. Each row is promoted with its own conditional update; a failing row is
// logged and skipped.
func (s *predictionService) SweepExpiredActive(ctx context.Context, now time.Time) (int, error) {
	active, err := s.predictionRepo.List(ctx, entities.PredictionFilter{
		Statuses: []entities.PredictionStatus{entities.PredictionStatusActive},
		OrderBy:  entities.OrderScheduleAsc,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list active predictions: %w", err)
	}

	promoted, failed := 0, 0
	for _, p := range active {
		startsAt, err := p.ScheduledAt(s.config.Location)
		if err != nil {
			failed++
			log.WithFields(log.Fields{
				"predictionID": p.ID,
				"matchDate":    p.MatchDate,
				"matchTime":    p.MatchTime,
				"error":        err,
			}).Warn("Skipping prediction with unparseable schedule")
			continue
		}
		if !startsAt.Before(now) {
			continue
		}

		ok, err := s.predictionRepo.TransitionStatus(ctx, p.ID,
			entities.PredictionStatusActive, entities.PredictionStatusWaitingResult)
		if err != nil {
			failed++
			log.WithFields(log.Fields{
				"predictionID": p.ID,
				"error":        err,
			}).Error("Failed to promote prediction to waiting_result")
			continue
		}
		if !ok {
			// Promoted or removed concurrently
			continue
		}

		promoted++
		s.publish(events.PredictionExpiredEvent{PredictionID: p.ID, UserID: p.UserID})
	}

	log.WithFields(log.Fields{
		"scanned":  len(active),
		"promoted": promoted,
		"failed":   failed,
	}).Info("Expired prediction sweep completed")

	return promoted, nil
}

// RecordResult finalizes a prediction waiting for its result and recomputes the owner's statistics
func (s *predictionService) RecordResult(ctx context.Context, predictionID string, outcome entities.Result, actor entities.Actor) error {
	if _, ok := entities.ParseResult(string(outcome)); !ok {
		return entities.NewGuardViolation(entities.ReasonInvalidOutcome, fmt.Sprintf("unknown outcome %q", outcome))
	}
	if err := s.requireModerator(ctx, actor); err != nil {
		return err
	}

	prediction, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("failed to get prediction %s: %w", predictionID, err)
	}
	if prediction == nil || prediction.Status != entities.PredictionStatusWaitingResult {
		return entities.ErrNotFound("prediction")
	}
	if err := prediction.CheckOutcome(outcome); err != nil {
		return err
	}

	// Concurrent results for the same owner wait here, so each recomputation sees every finalized row
	owner, err := s.userRepo.GetByIDForUpdate(ctx, prediction.UserID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("owner %s of prediction %s not found", prediction.UserID, predictionID)
	}

	ok, err := s.predictionRepo.Finalize(ctx, predictionID, outcome)
	if err != nil {
		return fmt.Errorf("failed to finalize prediction %s: %w", predictionID, err)
	}
	if !ok {
		return entities.ErrNotFound("prediction")
	}

	stats, err := s.recomputeUserStats(ctx, prediction.UserID)
	if err != nil {
		return err
	}

	s.publish(events.PredictionResolvedEvent{
		PredictionID: predictionID,
		UserID:       prediction.UserID,
		Result:       string(outcome),
		ModeratorID:  actor.UserID,
	})
	s.publish(events.UserStatsRecomputedEvent{
		UserID:                prediction.UserID,
		TotalPredictions:      stats.TotalPredictions,
		SuccessPredictions:    stats.SuccessPredictions,
		ExactScorePredictions: stats.ExactScorePredictions,
		SuccessRate:           stats.SuccessRate,
		AvgOdds:               stats.AvgOdds,
	})

	log.WithFields(log.Fields{
		"predictionID": predictionID,
		"userID":       prediction.UserID,
		"result":       outcome,
		"total":        stats.TotalPredictions,
		"successRate":  stats.SuccessRate,
	}).Info("Prediction result recorded")
	return nil
}

func (s *predictionService) recomputeUserStats(ctx context.Context, userID string) (entities.UserStats, error) {
	uid := userID
	finalized, err := s.predictionRepo.List(ctx, entities.PredictionFilter{
		UserID:   &uid,
		Statuses: entities.FinalizedStatuses,
	})
	if err != nil {
		return entities.UserStats{}, fmt.Errorf("failed to list finalized predictions for user %s: %w", userID, err)
	}

	stats := ComputeUserStats(finalized)
	if err := s.userRepo.UpdateStats(ctx, userID, stats); err != nil {
		return entities.UserStats{}, fmt.Errorf("failed to update stats for user %s: %w", userID, err)
	}
	return stats, nil
}

// DeletePrediction removes a prediction on behalf of its owner
func (s *predictionService) DeletePrediction(ctx context.Context, predictionID, ownerID string) error {
	prediction, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("failed to get prediction %s: %w", predictionID, err)
	}
	if prediction == nil {
		return entities.ErrNotFound("prediction")
	}

	if err := prediction.CheckDeletable(ownerID, s.config.Now(), s.config.GracePeriod); err != nil {
		return err
	}

	ok, err := s.predictionRepo.Delete(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("failed to delete prediction %s: %w", predictionID, err)
	}
	if !ok {
		return entities.ErrNotFound("prediction")
	}

	s.publish(events.PredictionDeletedEvent{PredictionID: predictionID, UserID: ownerID})

	log.WithFields(log.Fields{
		"predictionID": predictionID,
		"userID":       ownerID,
	}).Info("Prediction deleted by owner")
	return nil
}

// ListPending returns the moderation queue, newest first
func (s *predictionService) ListPending(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error) {
	if err := s.requireModerator(ctx, actor); err != nil {
		return nil, err
	}
	return s.listWithAuthors(ctx, entities.PredictionFilter{
		Statuses: []entities.PredictionStatus{entities.PredictionStatusPendingValidation},
		OrderBy:  entities.OrderCreatedDesc,
	}, false)
}

// ListWaitingResults returns predictions whose outcome must be recorded, oldest match first
func (s *predictionService) ListWaitingResults(ctx context.Context, actor entities.Actor) ([]*entities.PredictionWithAuthor, error) {
	if err := s.requireModerator(ctx, actor); err != nil {
		return nil, err
	}
	return s.listWithAuthors(ctx, entities.PredictionFilter{
		Statuses: []entities.PredictionStatus{entities.PredictionStatusWaitingResult},
		OrderBy:  entities.OrderScheduleAsc,
	}, false)
}

// ListActive returns validated predictions, next match first, with author statistics
func (s *predictionService) ListActive(ctx context.Context) ([]*entities.PredictionWithAuthor, error) {
	return s.listWithAuthors(ctx, entities.PredictionFilter{
		Statuses: []entities.PredictionStatus{entities.PredictionStatusActive},
		OrderBy:  entities.OrderScheduleAsc,
	}, true)
}

// ListByUser returns every prediction of a user, newest first
func (s *predictionService) ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	uid := userID
	predictions, err := s.predictionRepo.List(ctx, entities.PredictionFilter{
		UserID:  &uid,
		OrderBy: entities.OrderCreatedDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for user %s: %w", userID, err)
	}
	return predictions, nil
}

func (s *predictionService) listWithAuthors(ctx context.Context, filter entities.PredictionFilter, withStats bool) ([]*entities.PredictionWithAuthor, error) {
	predictions, err := s.predictionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(predictions))
	for _, p := range predictions {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}

	authors := make(map[string]*entities.Author, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get prediction authors: %w", err)
		}
		for _, u := range users {
			authors[u.ID] = u.ToAuthor(withStats)
		}
	}

	result := make([]*entities.PredictionWithAuthor, 0, len(predictions))
	for _, p := range predictions {
		result = append(result, &entities.PredictionWithAuthor{
			Prediction: p,
			Author:     authors[p.UserID],
		})
	}
	return result, nil
}

func (s *predictionService) requireModerator(ctx context.Context, actor entities.Actor) error {
	ok, err := s.policy.CanModerate(ctx, actor)
	if err != nil {
		return fmt.Errorf("failed to check moderator rights: %w", err)
	}
	if !ok {
		return entities.ErrForbidden("moderator rights required")
	}
	return nil
}

func (s *predictionService) publish(event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish event")
	}
}
