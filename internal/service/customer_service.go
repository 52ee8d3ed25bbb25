package service

import (
	"context"

	"karabook/internal/domain"
	"karabook/internal/events"
	"karabook/internal/models"

	"github.com/rs/zerolog"
)

type CustomerService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCustomerService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventCustomerCreated, customer); err != nil {
			s.logger.Error().Err(err).Str("customer_id", customer.ID).Msg("publish event error")
		}
	}

	return customer, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error) {
	customer.ID = id
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventCustomerDeleted, map[string]string{"customer_id": id}); err != nil {
			s.logger.Error().Err(err).Str("customer_id", id).Msg("publish event error")
		}
	}

	return nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.store.ListCustomers(ctx)
}
