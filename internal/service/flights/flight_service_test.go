package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkravets/flightbook/internal/domain"
	"github.com/mkravets/flightbook/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightLegRepository struct {
	mock.Mock
}

func (m *MockFlightLegRepository) GetByID(ctx context.Context, id int64) (*domain.FlightLeg, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightLeg), args.Error(1)
}

func (m *MockFlightLegRepository) ListByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightLeg), args.Error(1)
}

func (m *MockFlightLegRepository) AppendStatus(ctx context.Context, legID int64, status string) (*domain.StatusUpdate, error) {
	args := m.Called(ctx, legID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusUpdate), args.Error(1)
}

type MockRouteCache struct {
	mock.Mock
}

func (m *MockRouteCache) GetLegsByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightLeg), args.Error(1)
}

func (m *MockRouteCache) SetLegsByRoute(ctx context.Context, origin, destination string, legs []domain.FlightLeg) error {
	args := m.Called(ctx, origin, destination, legs)
	return args.Error(0)
}

func (m *MockRouteCache) InvalidateRoute(ctx context.Context, origin, destination string) error {
	args := m.Called(ctx, origin, destination)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func sampleLegs() []domain.FlightLeg {
	return []domain.FlightLeg{
		{
			ID:            10,
			FlightNumber:  "FB101",
			Origin:        domain.Airport{Code: "JFK"},
			Destination:   domain.Airport{Code: "LAX"},
			DepartureTime: time.Now().Add(24 * time.Hour),
		},
	}
}

func TestFlightService_Search_CacheMissFallsThrough(t *testing.T) {
	repo := &MockFlightLegRepository{}
	routeCache := &MockRouteCache{}
	service := NewFlightService(repo, routeCache)
	ctx := context.Background()

	legs := sampleLegs()
	routeCache.On("GetLegsByRoute", ctx, "JFK", "LAX").Return(nil, errors.New("cache miss")).Once()
	repo.On("ListByRoute", ctx, "JFK", "LAX").Return(legs, nil).Once()
	routeCache.On("SetLegsByRoute", ctx, "JFK", "LAX", legs).Return(nil).Once()

	got, err := service.Search(ctx, "JFK", "LAX")

	assert.NoError(t, err)
	assert.Equal(t, legs, got)
	repo.AssertExpectations(t)
	routeCache.AssertExpectations(t)
}

func TestFlightService_Search_CacheHitSkipsRepository(t *testing.T) {
	repo := &MockFlightLegRepository{}
	routeCache := &MockRouteCache{}
	service := NewFlightService(repo, routeCache)
	ctx := context.Background()

	legs := sampleLegs()
	routeCache.On("GetLegsByRoute", ctx, "JFK", "LAX").Return(legs, nil).Once()

	got, err := service.Search(ctx, "JFK", "LAX")

	assert.NoError(t, err)
	assert.Equal(t, legs, got)
	repo.AssertNotCalled(t, "ListByRoute")
}

func TestFlightService_Search_WorksWithoutCache(t *testing.T) {
	repo := &MockFlightLegRepository{}
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	legs := sampleLegs()
	repo.On("ListByRoute", ctx, "JFK", "LAX").Return(legs, nil).Once()

	got, err := service.Search(ctx, "JFK", "LAX")

	assert.NoError(t, err)
	assert.Equal(t, legs, got)
}

func TestFlightService_UpdateStatus_AppendsInvalidatesAndPublishes(t *testing.T) {
	repo := &MockFlightLegRepository{}
	routeCache := &MockRouteCache{}
	producer := &MockProducer{}
	service := NewFlightService(repo, routeCache, WithStatusTopic(producer, "flight_status"))
	ctx := context.Background()

	leg := &sampleLegs()[0]
	update := &domain.StatusUpdate{ID: 1, FlightLegID: 10, Status: "Delayed", CreatedAt: time.Now()}

	repo.On("GetByID", ctx, int64(10)).Return(leg, nil).Once()
	repo.On("AppendStatus", ctx, int64(10), "Delayed").Return(update, nil).Once()
	routeCache.On("InvalidateRoute", ctx, "JFK", "LAX").Return(nil).Once()
	producer.On("Publish", ctx, "flight_status", "10", mock.MatchedBy(func(v interface{}) bool {
		event, ok := v.(kafka.StatusEvent)
		return ok && event.FlightLegID == 10 && event.Status == "Delayed"
	})).Return(nil).Once()

	got, err := service.UpdateStatus(ctx, 10, "Delayed")

	assert.NoError(t, err)
	assert.Equal(t, update, got)
	repo.AssertExpectations(t)
	routeCache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestFlightService_UpdateStatus_PublishFailureDoesNotFailAppend(t *testing.T) {
	repo := &MockFlightLegRepository{}
	routeCache := &MockRouteCache{}
	producer := &MockProducer{}
	service := NewFlightService(repo, routeCache, WithStatusTopic(producer, "flight_status"))
	ctx := context.Background()

	leg := &sampleLegs()[0]
	update := &domain.StatusUpdate{ID: 1, FlightLegID: 10, Status: "Cancelled", CreatedAt: time.Now()}

	repo.On("GetByID", ctx, int64(10)).Return(leg, nil).Once()
	repo.On("AppendStatus", ctx, int64(10), "Cancelled").Return(update, nil).Once()
	routeCache.On("InvalidateRoute", ctx, "JFK", "LAX").Return(nil).Once()
	producer.On("Publish", ctx, "flight_status", "10", mock.Anything).Return(errors.New("kafka down")).Once()

	got, err := service.UpdateStatus(ctx, 10, "Cancelled")

	assert.NoError(t, err)
	assert.Equal(t, update, got)
}

func TestFlightService_UpdateStatus_UnknownLeg(t *testing.T) {
	repo := &MockFlightLegRepository{}
	service := NewFlightService(repo, nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(404)).Return(nil, errors.New("flight leg not found")).Once()

	got, err := service.UpdateStatus(ctx, 404, "Delayed")

	assert.Error(t, err)
	assert.Nil(t, got)
	repo.AssertNotCalled(t, "AppendStatus")
}
