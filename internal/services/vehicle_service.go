package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"citymove/internal/config"
	"citymove/internal/domain/entities"
	"citymove/internal/metrics"
	"citymove/internal/repository"
	"citymove/internal/search"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrRouteRequired   = errors.New("from and to are required")
)

// VehiclePublisher pushes a changed vehicle onto the live feed.
type VehiclePublisher interface {
	PublishVehicle(ctx context.Context, v entities.Vehicle) error
}

// SearchParams mirrors the search screen: a from/to pair and an optional
// category tab.
type SearchParams struct {
	From     string
	To       string
	Category *entities.Category
}

// VehicleService answers catalogue queries. Store reads that fail are
// answered from the sample set when the config allows it, so the listing and
// search screens keep working while the database is down.
type VehicleService struct {
	repo      repository.VehicleRepository
	sample    []entities.Vehicle
	publisher VehiclePublisher
	cfg       config.SearchConfig
	metrics   *metrics.Collector
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewVehicleService wires the service. sample is served when the store fails;
// an empty sample disables the fallback. publisher may be nil when the store
// itself emits change notifications.
func NewVehicleService(
	repo repository.VehicleRepository,
	sample []entities.Vehicle,
	publisher VehiclePublisher,
	cfg config.SearchConfig,
	m *metrics.Collector,
	logger *slog.Logger,
) *VehicleService {
	return &VehicleService{
		repo:      repo,
		sample:    sortedByPrice(sample),
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("vehicle-service"),
	}
}

// List returns every vehicle ordered by price, cheapest first.
func (s *VehicleService) List(ctx context.Context) ([]entities.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "vehicles.list")
	defer span.End()

	vehicles, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		if !s.canFallBack() {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		vehicles = s.fallback(ctx, "list", err)
	}
	span.SetAttributes(attribute.Int("vehicles.count", len(vehicles)))
	return vehicles, nil
}

// Search runs the route text search with an optional category, ordered by
// price. Both From and To must be non-blank.
func (s *VehicleService) Search(ctx context.Context, p SearchParams) ([]entities.Vehicle, error) {
	if isBlank(p.From) || isBlank(p.To) {
		return nil, ErrRouteRequired
	}

	c := entities.QueryCriteria{}.WithRoute(p.From, p.To).WithSort(entities.SortByPrice)
	if p.Category != nil {
		c = c.WithCategory(*p.Category)
	}

	ctx, span := s.tracer.Start(ctx, "vehicles.search",
		trace.WithAttributes(
			attribute.String("search.from", p.From),
			attribute.String("search.to", p.To),
		))
	defer span.End()

	vehicles, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		if !s.canFallBack() {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		vehicles = s.fallback(ctx, "search", err)
	}
	return s.selectFrom(span, vehicles, c)
}

// Nearby returns vehicles within radiusKm of origin, keeping the price order
// of List. A nil radius means the configured default; zero keeps only
// vehicles at origin.
func (s *VehicleService) Nearby(ctx context.Context, origin entities.Location, radiusKm *float64) ([]entities.Vehicle, error) {
	radius := s.cfg.DefaultRadiusKm
	if radiusKm != nil {
		radius = *radiusKm
	}
	vehicles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	span := trace.SpanFromContext(ctx)
	return s.selectFrom(span, vehicles, entities.QueryCriteria{}.WithProximity(origin, radius))
}

// Filter applies arbitrary criteria to the full listing.
func (s *VehicleService) Filter(ctx context.Context, c entities.QueryCriteria) ([]entities.Vehicle, error) {
	if err := search.Validate(c); err != nil {
		return nil, err
	}
	vehicles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.selectFrom(trace.SpanFromContext(ctx), vehicles, c)
}

func (s *VehicleService) Get(ctx context.Context, id string) (*entities.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "vehicles.get", trace.WithAttributes(attribute.String("vehicle.id", id)))
	defer span.End()

	v, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

// UpdateLocation moves a vehicle and pushes the new state to the live feed.
// A publish failure is logged; the stored position stands.
func (s *VehicleService) UpdateLocation(ctx context.Context, id string, loc entities.Location) (*entities.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "vehicles.update_location", trace.WithAttributes(attribute.String("vehicle.id", id)))
	defer span.End()

	v, err := s.repo.UpdateLocation(ctx, id, loc)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishVehicle(ctx, *v); err != nil {
			span.RecordError(err)
			s.logger.Warn("publish vehicle update failed", "vehicle_id", id, "error", err)
		}
	}
	return v, nil
}

func (s *VehicleService) selectFrom(span trace.Span, vehicles []entities.Vehicle, c entities.QueryCriteria) ([]entities.Vehicle, error) {
	out, err := search.Select(vehicles, c)
	if err != nil {
		return nil, err
	}
	mode := search.ModeOf(c)
	s.metrics.SelectionObserve(string(mode), len(out))
	span.SetAttributes(
		attribute.String("selection.mode", string(mode)),
		attribute.Int("selection.results", len(out)),
	)
	return out, nil
}

func (s *VehicleService) fallback(ctx context.Context, op string, cause error) []entities.Vehicle {
	s.logger.WarnContext(ctx, "vehicle store unavailable, serving sample set", "op", op, "error", cause)
	s.metrics.StoreFallbackInc(op)

	vehicles := make([]entities.Vehicle, len(s.sample))
	for i, v := range s.sample {
		vehicles[i] = v.Clone()
	}
	return vehicles
}

func (s *VehicleService) canFallBack() bool {
	return s.cfg.FallbackToSample && len(s.sample) > 0
}

func sortedByPrice(vs []entities.Vehicle) []entities.Vehicle {
	out := make([]entities.Vehicle, len(vs))
	copy(out, vs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
