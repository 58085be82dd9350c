package flights

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/trypguide/internal/cache"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/Domenick1991/trypguide/internal/idgen"
	"github.com/Domenick1991/trypguide/internal/inventory"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBackedService(t *testing.T, provider inventory.Provider) (*FlightService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFlightService(provider, cache.NewWithClient(client, logger.Nop()), 10*time.Minute, logger.Nop()), mr
}

func generatedOffers(t *testing.T, date string) []domain.FlightOffer {
	t.Helper()
	ids, err := idgen.NewSnowflakeGenerator(1)
	require.NoError(t, err)
	out, err := inventory.NewMockProvider(ids, inventory.WithSeed(7)).Generate(context.Background(), "DEL", "BOM", date, 1)
	require.NoError(t, err)
	return out
}

func TestFlightService_Search_RepeatedSearchIsStableThroughRedis(t *testing.T) {
	provider := new(MockProvider)
	svc, mr := newRedisBackedService(t, provider)
	ctx := context.Background()

	provider.On("Generate", ctx, "DEL", "BOM", "2025-12-01", 1).Return(generatedOffers(t, "2025-12-01"), nil).Once()

	params := domain.SearchParams{From: "DEL", To: "BOM", DepartureDate: "2025-12-01"}
	first, err := svc.Search(ctx, params)
	require.NoError(t, err)
	second, err := svc.Search(ctx, params)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))

	assert.True(t, mr.Exists("flights:DEL:BOM:2025-12-01:1:Economy"))
	assert.Equal(t, 10*time.Minute, mr.TTL("flights:DEL:BOM:2025-12-01:1:Economy"))
	provider.AssertNumberOfCalls(t, "Generate", 1)
}

func TestFlightService_Search_DistinctDatesUseDistinctKeys(t *testing.T) {
	provider := new(MockProvider)
	svc, mr := newRedisBackedService(t, provider)
	ctx := context.Background()

	provider.On("Generate", ctx, "DEL", "BOM", "2025-12-01", 1).Return(generatedOffers(t, "2025-12-01"), nil).Once()
	provider.On("Generate", ctx, "DEL", "BOM", "2025-12-02", 1).Return(generatedOffers(t, "2025-12-02"), nil).Once()

	first, err := svc.Search(ctx, domain.SearchParams{From: "DEL", To: "BOM", DepartureDate: "2025-12-01"})
	require.NoError(t, err)
	second, err := svc.Search(ctx, domain.SearchParams{From: "DEL", To: "BOM", DepartureDate: "2025-12-02"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"flights:DEL:BOM:2025-12-01:1:Economy",
		"flights:DEL:BOM:2025-12-02:1:Economy",
	}, mr.Keys())
	assert.Equal(t, "2025-12-01", first.SearchParams.DepartureDate)
	assert.Equal(t, "2025-12-02", second.SearchParams.DepartureDate)
	assert.Equal(t, 1, first.Outbound[0].DepartureTime.Day())
	assert.Equal(t, 2, second.Outbound[0].DepartureTime.Day())
	provider.AssertExpectations(t)
}
