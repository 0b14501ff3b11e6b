package service

import (
	"context"
	"errors"
	"fmt"

	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/models"

	"github.com/rs/zerolog"
)

// CustomerService deduplicates customer identities by email. An existing
// row always wins: repeat bookers keep their original details even when
// the new submission differs, so a typo in a later form cannot corrupt
// the stored identity.
type CustomerService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewCustomerService(store domain.Store, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{store: store, logger: logger}
}

// Resolve returns the customer row for the input's email, creating one
// only when no row exists yet.
func (s *CustomerService) Resolve(ctx context.Context, input models.CustomerInput) (*models.Customer, error) {
	existing, err := s.store.GetCustomerByEmail(ctx, input.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	customer := &models.Customer{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Address:   input.Address,
		Email:     input.Email,
		Phone:     input.Phone,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.logger.Debug().Str("email", input.Email).Int64("customer_id", customer.ID).Msg("new customer created")
	return customer, nil
}
