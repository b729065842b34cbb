// Package weather provides the HTTP client for the OpenWeatherMap
// current-weather API. The client performs exactly one outbound request
// per call and reports every failure as a typed error value; retries,
// caching, and concurrency control live in the engine, not here.
package weather
