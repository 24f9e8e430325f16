package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

type AddressRequest struct {
	FullName     string `json:"full_name"     validate:"required,max=100"`
	Phone        string `json:"phone"         validate:"required,max=20"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city"          validate:"required,max=100"`
	State        string `json:"state"         validate:"required,max=100"`
	PostalCode   string `json:"postal_code"   validate:"required,max=20"`
	Country      string `json:"country"       validate:"max=100"`
	IsDefault    bool   `json:"is_default"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes only the fields listed in repo.ProfileUpdate; email,
// username and password have dedicated flows.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, upd repo.ProfileUpdate) (*models.User, error) {
	user, err := s.Repo.UpdateUserProfile(ctx, userID, upd)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	logging.FromContext(ctx).With("svc", "user.update_profile").Info("profile_updated", "user_id", userID)
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password")

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		l.Warn("change_password_rejected", "user_id", userID, "reason", "bad current password")
		return ErrInvalidCredentials
	}
	if len(newPassword) < MinUserPasswordLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinUserPasswordLen)
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.Repo.UpdateUserPassword(ctx, userID, pwHash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	l.Info("password_changed", "user_id", userID)
	return nil
}

func (s *UserService) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	addrs, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addrs, nil
}

// AddAddress stores a new address. The first address of a user becomes the
// default; a user never has more than one default address.
func (s *UserService) AddAddress(ctx context.Context, userID uint, req AddressRequest) (*models.Address, error) {
	if strings.TrimSpace(req.AddressLine1) == "" || strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: address_line1 and city are required", ErrValidation)
	}
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = models.DefaultCountry
	}

	addr := &models.Address{
		UserID:       userID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      country,
		IsDefault:    req.IsDefault,
	}

	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		existing, err := tx.ListAddresses(ctx, userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			addr.IsDefault = true
		}
		if err := tx.CreateAddress(ctx, addr); err != nil {
			return err
		}
		if addr.IsDefault {
			return tx.ClearDefaultAddresses(ctx, userID, addr.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}
	return addr, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uint, upd repo.AddressUpdate) (*models.Address, error) {
	var addr *models.Address
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		addr, err = tx.UpdateAddress(ctx, userID, addressID, upd)
		if err != nil {
			return err
		}
		if addr.IsDefault {
			return tx.ClearDefaultAddresses(ctx, userID, addr.ID)
		}
		return nil
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: address %d", ErrNotFound, addressID)
	}
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return addr, nil
}

func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	yes := true
	return s.UpdateAddress(ctx, userID, addressID, repo.AddressUpdate{IsDefault: &yes})
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	err := s.Repo.DeleteAddress(ctx, userID, addressID)
	if isNotFound(err) {
		return fmt.Errorf("%w: address %d", ErrNotFound, addressID)
	}
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}
