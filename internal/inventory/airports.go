package inventory

import (
	"strings"

	"github.com/Domenick1991/trypguide/internal/domain"
)

type Airline struct {
	Code string
	Name string
}

var airlines = []Airline{
	{Code: "AI", Name: "Air India"},
	{Code: "6E", Name: "IndiGo"},
	{Code: "SG", Name: "SpiceJet"},
	{Code: "UK", Name: "Vistara"},
	{Code: "G8", Name: "Go First"},
	{Code: "I5", Name: "AirAsia India"},
}

// airports keeps directory order stable for listing.
var airports = []domain.Airport{
	{Code: "DEL", Name: "Indira Gandhi International Airport", City: "Delhi", Country: "India"},
	{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport", City: "Mumbai", Country: "India"},
	{Code: "BLR", Name: "Kempegowda International Airport", City: "Bangalore", Country: "India"},
	{Code: "MAA", Name: "Chennai International Airport", City: "Chennai", Country: "India"},
	{Code: "HYD", Name: "Rajiv Gandhi International Airport", City: "Hyderabad", Country: "India"},
	{Code: "CCU", Name: "Netaji Subhas Chandra Bose International Airport", City: "Kolkata", Country: "India"},
	{Code: "GOI", Name: "Goa International Airport", City: "Goa", Country: "India"},
	{Code: "COK", Name: "Cochin International Airport", City: "Kochi", Country: "India"},
	{Code: "PNQ", Name: "Pune Airport", City: "Pune", Country: "India"},
	{Code: "AMD", Name: "Sardar Vallabhbhai Patel International Airport", City: "Ahmedabad", Country: "India"},
}

// LookupAirport returns directory metadata for code, or nil when unknown.
func LookupAirport(code string) *domain.AirportInfo {
	for _, a := range airports {
		if a.Code == code {
			return &domain.AirportInfo{Name: a.Name, City: a.City, Country: a.Country}
		}
	}
	return nil
}

// SearchAirports filters the directory by a case-insensitive substring of the
// code, city or name. An empty query returns every airport.
func SearchAirports(query string) []domain.Airport {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Airport, 0, len(airports))
	for _, a := range airports {
		if q == "" ||
			strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.City), q) ||
			strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
		}
	}
	return out
}
