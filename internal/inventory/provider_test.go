package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/Domenick1991/trypguide/internal/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *MockProvider {
	t.Helper()
	gen, err := idgen.NewSnowflakeGenerator(7)
	require.NoError(t, err)
	return NewMockProvider(gen, WithSeed(42))
}

func TestMockProvider_Generate(t *testing.T) {
	p := newProvider(t)

	offers, err := p.Generate(context.Background(), "DEL", "BOM", "2025-12-01", 2)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(offers), 10)
	require.LessOrEqual(t, len(offers), 15)

	ids := map[string]struct{}{}
	for i, o := range offers {
		assert.True(t, strings.HasPrefix(o.ID, "FL"))
		ids[o.ID] = struct{}{}

		assert.Equal(t, "DEL", o.From)
		assert.Equal(t, "BOM", o.To)
		require.NotNil(t, o.FromAirport)
		assert.Equal(t, "Delhi", o.FromAirport.City)
		assert.Equal(t, "INR", o.Currency)
		assert.Equal(t, o.PricePerPassenger*2, o.Price)
		assert.GreaterOrEqual(t, o.PricePerPassenger, int64(1000))
		assert.Less(t, o.PricePerPassenger, int64(6000))

		h := o.DepartureTime.Hour()
		assert.True(t, h >= 6 && h <= 21, "hour %d", h)
		assert.Zero(t, o.DepartureTime.Minute()%15)
		assert.True(t, o.DurationMinutes >= 60 && o.DurationMinutes < 180)
		assert.Equal(t, o.DepartureTime.Add(o.ArrivalTime.Sub(o.DepartureTime)), o.ArrivalTime)
		assert.Len(t, o.StopInfo, o.Stops)
		assert.True(t, o.AvailableSeats >= 10 && o.AvailableSeats < 60)
		assert.True(t, len(o.Amenities) >= 2 && len(o.Amenities) <= 4)
		assert.Equal(t, "WiFi", o.Amenities[0])

		if i > 0 {
			assert.LessOrEqual(t, offers[i-1].Price, o.Price)
		}
	}
	assert.Len(t, ids, len(offers))
}

func TestMockProvider_InvalidDate(t *testing.T) {
	p := newProvider(t)

	_, err := p.Generate(context.Background(), "DEL", "BOM", "01/12/2025", 1)
	assert.Error(t, err)
}

func TestMockProvider_UnknownAirport(t *testing.T) {
	p := newProvider(t)

	offers, err := p.Generate(context.Background(), "XXX", "BOM", "2025-12-01", 1)
	require.NoError(t, err)
	assert.Nil(t, offers[0].FromAirport)
}

func TestSearchAirports(t *testing.T) {
	assert.Len(t, SearchAirports(""), 10)

	got := SearchAirports("mum")
	require.Len(t, got, 1)
	assert.Equal(t, "BOM", got[0].Code)

	assert.Len(t, SearchAirports("goi"), 1)
	assert.NotEmpty(t, SearchAirports("international"))
	assert.Empty(t, SearchAirports("zzz"))
}
