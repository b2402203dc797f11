package flights

import (
	"context"
	"fmt"
	"log"

	"github.com/mkravets/flightbook/internal/domain"
	"github.com/mkravets/flightbook/internal/kafka"
	"github.com/mkravets/flightbook/internal/repository"
)

type FlightUseCase interface {
	Search(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error)
	GetByID(ctx context.Context, id int64) (*domain.FlightLeg, error)
	UpdateStatus(ctx context.Context, legID int64, status string) (*domain.StatusUpdate, error)
}

// RouteCache caches search results per (origin, destination) pair.
type RouteCache interface {
	GetLegsByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error)
	SetLegsByRoute(ctx context.Context, origin, destination string, legs []domain.FlightLeg) error
	InvalidateRoute(ctx context.Context, origin, destination string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo        repository.FlightLegRepository
	cache       RouteCache
	producer    Producer
	statusTopic string
}

type FlightServiceOption func(*FlightService)

func WithStatusTopic(producer Producer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.statusTopic = topic
	}
}

func NewFlightService(repo repository.FlightLegRepository, cache RouteCache, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) Search(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetLegsByRoute(ctx, origin, destination); err == nil && cached != nil {
			return cached, nil
		}
	}

	legs, err := s.repo.ListByRoute(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetLegsByRoute(ctx, origin, destination, legs)
	}
	return legs, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.FlightLeg, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus appends to the leg's status history and emits a status event
// keyed by the leg id. Subscriber fan-out happens outside this service; a
// publish failure does not fail the append.
func (s *FlightService) UpdateStatus(ctx context.Context, legID int64, status string) (*domain.StatusUpdate, error) {
	leg, err := s.repo.GetByID(ctx, legID)
	if err != nil {
		return nil, err
	}

	update, err := s.repo.AppendStatus(ctx, legID, status)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRoute(ctx, leg.Origin.Code, leg.Destination.Code)
	}

	if s.producer != nil && s.statusTopic != "" {
		event := kafka.StatusEvent{FlightLegID: legID, Status: status, At: update.CreatedAt}
		if err := s.producer.Publish(ctx, s.statusTopic, fmt.Sprint(legID), event); err != nil {
			log.Printf("publish status event for leg %d: %v", legID, err)
		}
	}

	return update, nil
}

var _ FlightUseCase = (*FlightService)(nil)
