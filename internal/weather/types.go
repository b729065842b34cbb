package weather

import "time"

// Record is one resolved weather observation for an airport.
// Immutable once created; the engine stamps Code and Name before the
// record is cached or reported.
type Record struct {
	// Code is the uppercased IATA code of the airport.
	Code string `json:"code"`

	// Name is the airport display name from the dataset.
	Name string `json:"name"`

	// TemperatureC is the temperature in degrees Celsius.
	TemperatureC float64 `json:"temperature_c"`

	// Condition is the human-readable condition description.
	Condition string `json:"condition"`

	// Humidity is the relative humidity percentage (0-100).
	Humidity int `json:"humidity"`

	// WindSpeedMS is the wind speed in meters per second.
	WindSpeedMS float64 `json:"wind_speed_ms"`

	// FetchedAt is when the observation was retrieved from the provider.
	FetchedAt time.Time `json:"fetched_at"`
}
