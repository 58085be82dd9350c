package flights

import (
	"slices"
	"sort"

	"github.com/Domenick1991/trypguide/internal/domain"
)

const (
	StopsNonStop = "non-stop"
	StopsOne     = "1-stop"
	StopsTwo     = "2-stops"

	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortDuration  = "duration"
	SortDeparture = "departure"
	SortArrival   = "arrival"
)

type hourRange struct{ from, to int }

var departureBuckets = map[string]hourRange{
	"early-morning": {0, 6},
	"morning":       {6, 12},
	"afternoon":     {12, 18},
	"evening":       {18, 24},
}

// ApplyFilters returns the offers matching every set criterion, in input order.
// The input slice is not modified.
func ApplyFilters(offers []domain.FlightOffer, f domain.FilterOptions) []domain.FlightOffer {
	out := make([]domain.FlightOffer, 0, len(offers))
	for _, o := range offers {
		if matches(o, f) {
			out = append(out, o)
		}
	}
	return out
}

func matches(o domain.FlightOffer, f domain.FilterOptions) bool {
	if f.MinPrice != nil && float64(o.PricePerPassenger) < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && float64(o.PricePerPassenger) > *f.MaxPrice {
		return false
	}
	if len(f.Airlines) > 0 && !slices.Contains(f.Airlines, o.AirlineCode) {
		return false
	}

	switch f.Stops {
	case StopsNonStop:
		if o.Stops != 0 {
			return false
		}
	case StopsOne:
		if o.Stops != 1 {
			return false
		}
	case StopsTwo:
		if o.Stops < 2 {
			return false
		}
	}

	if r, ok := departureBuckets[f.DepartureTime]; ok {
		h := o.DepartureTime.Hour()
		if h < r.from || h >= r.to {
			return false
		}
	}
	return true
}

// SortFlights returns a sorted copy. Ties keep their input order and an
// unknown key leaves the order untouched.
func SortFlights(offers []domain.FlightOffer, by string) []domain.FlightOffer {
	out := slices.Clone(offers)

	var less func(a, b domain.FlightOffer) bool
	switch by {
	case SortPriceLow:
		less = func(a, b domain.FlightOffer) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b domain.FlightOffer) bool { return a.Price > b.Price }
	case SortDuration:
		less = func(a, b domain.FlightOffer) bool { return a.DurationMinutes < b.DurationMinutes }
	case SortDeparture:
		less = func(a, b domain.FlightOffer) bool { return a.DepartureTime.Before(b.DepartureTime) }
	case SortArrival:
		less = func(a, b domain.FlightOffer) bool { return a.ArrivalTime.Before(b.ArrivalTime) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
