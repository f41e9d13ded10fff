package services

import (
	"context"
	"errors"
	"fmt"

	"tipster/domain/entities"
	"tipster/domain/interfaces"

	"golang.org/x/crypto/bcrypt"
)

// roleModerationPolicy grants moderation to accounts with the admin role
type roleModerationPolicy struct {
	userRepo interfaces.UserRepository
}

// NewRoleModerationPolicy creates a policy backed by account roles
func NewRoleModerationPolicy(userRepo interfaces.UserRepository) interfaces.ModerationPolicy {
	return &roleModerationPolicy{userRepo: userRepo}
}

func (p *roleModerationPolicy) CanModerate(ctx context.Context, actor entities.Actor) (bool, error) {
	if actor.UserID == "" {
		return false, nil
	}
	user, err := p.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to get user %s: %w", actor.UserID, err)
	}
	return user != nil && user.IsAdmin(), nil
}

// accessCodeModerationPolicy grants moderation to whoever holds the shared access code
type accessCodeModerationPolicy struct {
	hash []byte
}

// NewAccessCodeModerationPolicy creates a policy checking the actor's access code against a bcrypt hash.
// An empty hash disables the policy.
func NewAccessCodeModerationPolicy(hash string) interfaces.ModerationPolicy {
	return &accessCodeModerationPolicy{hash: []byte(hash)}
}

func (p *accessCodeModerationPolicy) CanModerate(ctx context.Context, actor entities.Actor) (bool, error) {
	if len(p.hash) == 0 || actor.AccessCode == "" {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(actor.AccessCode))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare access code: %w", err)
}

// AnyModerationPolicy grants moderation when any of its policies does
type AnyModerationPolicy []interfaces.ModerationPolicy

func (p AnyModerationPolicy) CanModerate(ctx context.Context, actor entities.Actor) (bool, error) {
	for _, policy := range p {
		ok, err := policy.CanModerate(ctx, actor)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// NewModerationPolicy combines the role and shared access code policies
func NewModerationPolicy(userRepo interfaces.UserRepository, accessCodeHash string) interfaces.ModerationPolicy {
	return AnyModerationPolicy{
		NewAccessCodeModerationPolicy(accessCodeHash),
		NewRoleModerationPolicy(userRepo),
	}
}
