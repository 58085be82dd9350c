package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/cache"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/Domenick1991/trypguide/internal/inventory"
	"github.com/Domenick1991/trypguide/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const DefaultCacheTTL = 30 * time.Minute

type FlightUseCase interface {
	Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error)
	Filter(offers []domain.FlightOffer, filters *domain.FilterOptions, sortBy string) []domain.FlightOffer
	Airports(search string) []domain.Airport
	GetByID(ctx context.Context, id string) (*domain.FlightOffer, error)
}

type FlightService struct {
	provider inventory.Provider
	cache    cache.Cache
	cacheTTL time.Duration
	log      logger.Logger

	lookups metric.Int64Counter
}

func NewFlightService(provider inventory.Provider, c cache.Cache, cacheTTL time.Duration, log logger.Logger) *FlightService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	// The global meter is a no-op until telemetry installs a provider.
	lookups, err := otel.Meter("trypguide/flights").Int64Counter(
		"flight_search_cache_lookups",
		metric.WithDescription("Flight search cache lookups by result"),
	)
	if err != nil {
		log.Warn("flight search counter unavailable", logger.Field{Key: "error", Value: err})
	}
	return &FlightService{provider: provider, cache: c, cacheTTL: cacheTTL, log: log, lookups: lookups}
}

func (s *FlightService) Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error) {
	norm, tripType, err := normalize(params)
	if err != nil {
		return nil, err
	}

	key := searchKey(norm, tripType)
	var cached domain.SearchResult
	if s.cache.GetJSON(ctx, key, &cached) {
		s.count(ctx, "hit")
		s.log.Debug("flight search served from cache", logger.Field{Key: "key", Value: key})
		return &cached, nil
	}
	s.count(ctx, "miss")

	outbound, err := s.provider.Generate(ctx, norm.From, norm.To, norm.DepartureDate, norm.Passengers.Total)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("outbound offers: %w", err))
	}

	result := &domain.SearchResult{
		TripType:     tripType,
		Outbound:     outbound,
		SearchParams: norm,
	}
	if tripType == domain.TripRoundTrip && norm.ReturnDate != "" {
		ret, err := s.provider.Generate(ctx, norm.To, norm.From, norm.ReturnDate, norm.Passengers.Total)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("return offers: %w", err))
		}
		result.Return = ret
	}

	s.cache.SetJSON(ctx, key, result, s.cacheTTL)
	return result, nil
}

func (s *FlightService) Filter(offers []domain.FlightOffer, filters *domain.FilterOptions, sortBy string) []domain.FlightOffer {
	out := offers
	if filters != nil {
		out = ApplyFilters(out, *filters)
	}
	if sortBy != "" {
		out = SortFlights(out, sortBy)
	}
	if out == nil {
		out = []domain.FlightOffer{}
	}
	return out
}

func (s *FlightService) Airports(search string) []domain.Airport {
	return inventory.SearchAirports(search)
}

// GetByID has no backing store; offers live only inside search results.
func (s *FlightService) GetByID(_ context.Context, _ string) (*domain.FlightOffer, error) {
	return nil, apperror.NotFound("Flight not found")
}

func (s *FlightService) count(ctx context.Context, result string) {
	if s.lookups == nil {
		return
	}
	s.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func normalize(p domain.SearchParams) (domain.NormalizedSearch, string, error) {
	var n domain.NormalizedSearch
	if strings.TrimSpace(p.From) == "" || strings.TrimSpace(p.To) == "" || strings.TrimSpace(p.DepartureDate) == "" {
		return n, "", apperror.Validation("Missing required parameters: from, to, departureDate")
	}

	adults, children, infants := intOr(p.Adults, 1), intOr(p.Children, 0), intOr(p.Infants, 0)
	if adults < 0 || children < 0 || infants < 0 {
		return n, "", apperror.Validation("Passenger counts must not be negative")
	}

	tripType := p.TripType
	if tripType == "" {
		tripType = domain.TripOneWay
	}
	if tripType != domain.TripOneWay && tripType != domain.TripRoundTrip {
		return n, "", apperror.Validation("tripType must be one-way or round-trip")
	}

	if _, err := time.Parse(time.DateOnly, p.DepartureDate); err != nil {
		return n, "", apperror.Validation("departureDate must be YYYY-MM-DD")
	}
	if p.ReturnDate != "" {
		if _, err := time.Parse(time.DateOnly, p.ReturnDate); err != nil {
			return n, "", apperror.Validation("returnDate must be YYYY-MM-DD")
		}
	}

	cabin := p.CabinClass
	if cabin == "" {
		cabin = domain.DefaultCabinClass
	}

	n = domain.NormalizedSearch{
		From:          strings.ToUpper(strings.TrimSpace(p.From)),
		To:            strings.ToUpper(strings.TrimSpace(p.To)),
		DepartureDate: p.DepartureDate,
		ReturnDate:    p.ReturnDate,
		Passengers: domain.PassengerCounts{
			Adults:   adults,
			Children: children,
			Infants:  infants,
			Total:    adults + children + infants,
		},
		CabinClass: cabin,
	}
	return n, tripType, nil
}

func searchKey(n domain.NormalizedSearch, tripType string) string {
	key := fmt.Sprintf("flights:%s:%s:%s:%d:%s", n.From, n.To, n.DepartureDate, n.Passengers.Total, n.CabinClass)
	if tripType == domain.TripRoundTrip {
		key += ":" + domain.TripRoundTrip + ":" + n.ReturnDate
	}
	return key
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

var _ FlightUseCase = (*FlightService)(nil)
