package service

import (
	"context"

	"karabook/internal/domain"
	"karabook/internal/events"
	"karabook/internal/models"

	"github.com/rs/zerolog"
)

type RoomService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewRoomService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *RoomService {
	return &RoomService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := room.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventRoomCreated, room); err != nil {
			s.logger.Error().Err(err).Str("room_id", room.ID).Msg("publish event error")
		}
	}

	return room, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, id string, room *models.Room) (*models.Room, error) {
	room.ID = id
	if err := room.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventRoomDeleted, map[string]string{"room_id": id}); err != nil {
			s.logger.Error().Err(err).Str("room_id", id).Msg("publish event error")
		}
	}

	return nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	return s.store.ListRooms(ctx)
}
