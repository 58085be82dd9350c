package inventory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/Domenick1991/trypguide/internal/idgen"
)

// Provider produces flight offers for a route and date.
type Provider interface {
	Generate(ctx context.Context, from, to, date string, passengers int) ([]domain.FlightOffer, error)
}

var (
	stopHubs  = []string{"DEL", "BOM", "BLR", "HYD"}
	amenities = []string{"WiFi", "Meals", "Entertainment", "Power Outlet", "USB Port"}
)

// MockProvider synthesises 10-15 plausible offers per call.
type MockProvider struct {
	ids        idgen.Generator
	cabinClass string

	mu  sync.Mutex
	rnd *rand.Rand
}

type MockOption func(*MockProvider)

// WithSeed makes generated offers reproducible.
func WithSeed(seed uint64) MockOption {
	return func(p *MockProvider) {
		p.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func NewMockProvider(ids idgen.Generator, opts ...MockOption) *MockProvider {
	p := &MockProvider{
		ids:        ids,
		cabinClass: domain.DefaultCabinClass,
		rnd:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MockProvider) Generate(ctx context.Context, from, to, date string, passengers int) ([]domain.FlightOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("invalid departure date %q: %w", date, err)
	}
	if passengers < 1 {
		passengers = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	basePrice := int64(p.rnd.IntN(3000) + 2000)
	count := p.rnd.IntN(6) + 10

	offers := make([]domain.FlightOffer, 0, count)
	for i := 0; i < count; i++ {
		airline := airlines[p.rnd.IntN(len(airlines))]
		duration := p.rnd.IntN(120) + 60
		departure := day.Add(time.Duration(p.rnd.IntN(16)+6)*time.Hour + time.Duration(p.rnd.IntN(4)*15)*time.Minute)

		stops := 0
		if p.rnd.Float64() > 0.7 {
			stops = 1
			if p.rnd.Float64() <= 0.5 {
				stops = 2
			}
		}

		perPassenger := basePrice + int64(p.rnd.IntN(2000)) - 1000

		offers = append(offers, domain.FlightOffer{
			ID:                fmt.Sprintf("FL%d", p.ids.NextID()),
			Airline:           airline.Name,
			AirlineCode:       airline.Code,
			FlightNumber:      fmt.Sprintf("%s%d", airline.Code, p.rnd.IntN(900)+100),
			From:              from,
			To:                to,
			FromAirport:       LookupAirport(from),
			ToAirport:         LookupAirport(to),
			DepartureTime:     departure,
			ArrivalTime:       departure.Add(time.Duration(duration) * time.Minute),
			Duration:          fmt.Sprintf("%dh %dm", duration/60, duration%60),
			DurationMinutes:   duration,
			Stops:             stops,
			StopInfo:          p.stopInfo(stops),
			Price:             perPassenger * int64(passengers),
			PricePerPassenger: perPassenger,
			Currency:          domain.DefaultCurrency,
			AvailableSeats:    p.rnd.IntN(50) + 10,
			CabinClass:        p.cabinClass,
			Baggage:           domain.Baggage{Checkin: "15 Kg", Cabin: "7 Kg"},
			Refundable:        p.rnd.Float64() > 0.5,
			Amenities:         append([]string(nil), amenities[:p.rnd.IntN(3)+2]...),
		})
	}

	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
	return offers, nil
}

func (p *MockProvider) stopInfo(stops int) []domain.StopInfo {
	if stops == 0 {
		return nil
	}
	info := make([]domain.StopInfo, 0, stops)
	for i := 0; i < stops; i++ {
		hub := stopHubs[p.rnd.IntN(len(stopHubs))]
		info = append(info, domain.StopInfo{
			Airport:     hub,
			AirportName: LookupAirport(hub).Name,
			LayoverTime: fmt.Sprintf("%dh %dm", p.rnd.IntN(3)+1, p.rnd.IntN(60)),
		})
	}
	return info
}

var _ Provider = (*MockProvider)(nil)
