package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tipster/domain/entities"
	"tipster/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type userService struct {
	userRepo interfaces.UserRepository
}

// NewUserService creates a new account service
func NewUserService(userRepo interfaces.UserRepository) interfaces.UserService {
	return &userService{userRepo: userRepo}
}

// Register creates an account with a pseudo, an email, or both
func (s *userService) Register(ctx context.Context, pseudo, email string) (*entities.User, error) {
	pseudo = strings.TrimSpace(pseudo)
	email = strings.TrimSpace(email)
	if pseudo == "" && email == "" {
		return nil, entities.NewValidationError("pseudo", "a pseudo or an email is required")
	}
	if email != "" {
		if err := entities.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	availability, err := s.CheckAvailability(ctx, pseudo, email)
	if err != nil {
		return nil, err
	}
	if availability.PseudoTaken {
		return nil, entities.NewGuardViolation(entities.ReasonPseudoInUse, "pseudo already taken")
	}
	if availability.EmailTaken {
		return nil, entities.NewGuardViolation(entities.ReasonEmailInUse, "email already in use")
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:        uuid.NewString(),
		Role:      entities.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pseudo != "" {
		user.Pseudo = &pseudo
	}
	if email != "" {
		user.Email = &email
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"pseudo": pseudo,
	}).Info("User registered")
	return user, nil
}

// CheckAvailability reports whether a pseudo and an email are already taken, case-insensitively
func (s *userService) CheckAvailability(ctx context.Context, pseudo, email string) (*entities.Availability, error) {
	pseudo = strings.TrimSpace(pseudo)
	email = strings.TrimSpace(email)
	if pseudo == "" && email == "" {
		return nil, entities.NewValidationError("pseudo", "a pseudo or an email is required")
	}

	availability := &entities.Availability{}
	if pseudo != "" {
		existing, err := s.userRepo.GetByPseudo(ctx, pseudo)
		if err != nil {
			return nil, fmt.Errorf("failed to look up pseudo: %w", err)
		}
		availability.PseudoTaken = existing != nil
	}
	if email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
		availability.EmailTaken = existing != nil
	}
	return availability, nil
}

// ResolvePseudo returns the email attached to a pseudo
func (s *userService) ResolvePseudo(ctx context.Context, pseudo string) (string, error) {
	pseudo = strings.TrimSpace(pseudo)
	if pseudo == "" {
		return "", entities.NewValidationError("pseudo", "is required")
	}

	user, err := s.userRepo.GetByPseudo(ctx, pseudo)
	if err != nil {
		return "", fmt.Errorf("failed to look up pseudo: %w", err)
	}
	if user == nil || user.Email == nil || *user.Email == "" {
		return "", entities.ErrNotFound("pseudo")
	}
	return *user.Email, nil
}

// SetEmail attaches an email to an account
func (s *userService) SetEmail(ctx context.Context, userID, email string) error {
	email = strings.TrimSpace(email)
	if err := entities.ValidateEmail(email); err != nil {
		return err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return entities.NewGuardViolation(entities.ReasonEmailInUse, "email already in use")
	}

	ok, err := s.userRepo.UpdateEmail(ctx, userID, email)
	if err != nil {
		return fmt.Errorf("failed to update email for user %s: %w", userID, err)
	}
	if !ok {
		return entities.ErrNotFound("user")
	}

	log.WithField("userID", userID).Info("User email updated")
	return nil
}
