package domain

import "time"

const (
	TripOneWay    = "one-way"
	TripRoundTrip = "round-trip"

	DefaultCabinClass = "Economy"
)

type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type AirportInfo struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type StopInfo struct {
	Airport     string `json:"airport"`
	AirportName string `json:"airportName"`
	LayoverTime string `json:"layoverTime"`
}

type Baggage struct {
	Checkin string `json:"checkin"`
	Cabin   string `json:"cabin"`
}

// FlightOffer is a priced itinerary produced by an inventory provider. Prices are
// whole currency units.
type FlightOffer struct {
	ID                string       `json:"id"`
	Airline           string       `json:"airline"`
	AirlineCode       string       `json:"airlineCode"`
	FlightNumber      string       `json:"flightNumber"`
	From              string       `json:"from"`
	To                string       `json:"to"`
	FromAirport       *AirportInfo `json:"fromAirport"`
	ToAirport         *AirportInfo `json:"toAirport"`
	DepartureTime     time.Time    `json:"departureTime"`
	ArrivalTime       time.Time    `json:"arrivalTime"`
	Duration          string       `json:"duration"`
	DurationMinutes   int          `json:"durationMinutes"`
	Stops             int          `json:"stops"`
	StopInfo          []StopInfo   `json:"stopInfo"`
	Price             int64        `json:"price"`
	PricePerPassenger int64        `json:"pricePerPassenger"`
	Currency          string       `json:"currency"`
	AvailableSeats    int          `json:"availableSeats"`
	CabinClass        string       `json:"cabinClass"`
	Baggage           Baggage      `json:"baggage"`
	Refundable        bool         `json:"refundable"`
	Amenities         []string     `json:"amenities"`
}

type SearchParams struct {
	From          string `form:"from"`
	To            string `form:"to"`
	DepartureDate string `form:"departureDate"`
	ReturnDate    string `form:"returnDate"`
	Adults        *int   `form:"adults"`
	Children      *int   `form:"children"`
	Infants       *int   `form:"infants"`
	CabinClass    string `form:"cabinClass"`
	TripType      string `form:"tripType"`
}

type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Total    int `json:"total"`
}

type NormalizedSearch struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	DepartureDate string          `json:"departureDate"`
	ReturnDate    string          `json:"returnDate,omitempty"`
	Passengers    PassengerCounts `json:"passengers"`
	CabinClass    string          `json:"cabinClass"`
}

type SearchResult struct {
	TripType     string           `json:"tripType"`
	Outbound     []FlightOffer    `json:"outbound"`
	Return       []FlightOffer    `json:"return,omitempty"`
	SearchParams NormalizedSearch `json:"searchParams"`
}

// FilterOptions narrows a list of offers. Zero values disable a criterion.
type FilterOptions struct {
	MinPrice      *float64 `json:"minPrice,omitempty"`
	MaxPrice      *float64 `json:"maxPrice,omitempty"`
	Airlines      []string `json:"airlines,omitempty"`
	Stops         string   `json:"stops,omitempty"`
	DepartureTime string   `json:"departureTime,omitempty"`
}
