package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type NewsletterService struct {
	Repo *repo.GormRepo
}

func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}

	if taken, err := s.Repo.SubscriberExists(ctx, email); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	} else if taken {
		return ErrAlreadySubscribed
	}

	err := s.Repo.CreateSubscriber(ctx, &models.Subscriber{Email: email})
	if isDuplicate(err) {
		return ErrAlreadySubscribed
	}
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logging.FromContext(ctx).With("svc", "newsletter.subscribe").Info("subscribed")
	return nil
}
