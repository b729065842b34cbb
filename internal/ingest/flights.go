// Package ingest loads flight datasets from CSV and extracts the
// deduplicated airport set the engine resolves. Invalid rows are
// skipped and counted, not fatal; only structural problems (missing
// file, missing columns) abort the load.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/flightwx/flightwx/internal/engine"
)

// Required dataset columns. Each flight row carries both legs.
const (
	colOriginCode      = "origin_iata_code"
	colOriginName      = "origin_name"
	colOriginLat       = "origin_latitude"
	colOriginLon       = "origin_longitude"
	colDestinationCode = "destination_iata_code"
	colDestinationName = "destination_name"
	colDestinationLat  = "destination_latitude"
	colDestinationLon  = "destination_longitude"
	colAirline         = "airline"
	colFlightNum       = "flight_num"
)

var requiredColumns = []string{
	colOriginCode, colOriginName, colOriginLat, colOriginLon,
	colDestinationCode, colDestinationName, colDestinationLat, colDestinationLon,
	colAirline, colFlightNum,
}

// Dataset structure errors.
var (
	ErrEmptyDataset    = errors.New("dataset has no header row")
	ErrMissingColumns  = errors.New("dataset is missing required columns")
	ErrNoValidAirports = errors.New("dataset contains no valid airports")
)

// Flight is one row of the dataset.
type Flight struct {
	Airline     string
	FlightNum   string
	Origin      engine.Lookup
	Destination engine.Lookup
}

// LoadResult is the outcome of loading a dataset: the flights, the
// airports deduplicated by code in first-seen order, and how many rows
// were skipped as invalid.
type LoadResult struct {
	Flights     []Flight
	Airports    []engine.Lookup
	SkippedRows int
}

// Loader reads flight dataset CSV files.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a dataset loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile loads the dataset at path.
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return l.Load(f)
}

// Load reads a flight dataset from r. The header is validated against
// the required columns; rows with blank codes, non-numeric coordinates,
// or out-of-range coordinates are skipped with a counter.
func (l *Loader) Load(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	seen := make(map[string]struct{})

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Ragged rows are data problems, not structural ones.
			l.logger.Debug().Int("line", line).Err(err).Msg("skipping malformed row")
			result.SkippedRows++
			continue
		}

		flight, ok := l.parseRow(row, columns, line)
		if !ok {
			result.SkippedRows++
			continue
		}

		result.Flights = append(result.Flights, flight)
		for _, airport := range []engine.Lookup{flight.Origin, flight.Destination} {
			if _, dup := seen[airport.Code]; dup {
				continue
			}
			seen[airport.Code] = struct{}{}
			result.Airports = append(result.Airports, airport)
		}
	}

	if len(result.Airports) == 0 {
		return nil, ErrNoValidAirports
	}

	l.logger.Info().Int("flights", len(result.Flights)).
		Int("airports", len(result.Airports)).Int("skipped_rows", result.SkippedRows).
		Msg("dataset loaded")

	return result, nil
}

// indexColumns maps required column names to their positions.
func indexColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}

	return positions, nil
}

// parseRow converts one CSV row into a Flight, rejecting rows whose
// airports do not validate.
func (l *Loader) parseRow(row []string, columns map[string]int, line int) (Flight, bool) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	origin, err := parseAirport(
		field(colOriginCode), field(colOriginName), field(colOriginLat), field(colOriginLon))
	if err != nil {
		l.logger.Debug().Int("line", line).Err(err).Msg("skipping row with invalid origin")
		return Flight{}, false
	}

	destination, err := parseAirport(
		field(colDestinationCode), field(colDestinationName),
		field(colDestinationLat), field(colDestinationLon))
	if err != nil {
		l.logger.Debug().Int("line", line).Err(err).Msg("skipping row with invalid destination")
		return Flight{}, false
	}

	return Flight{
		Airline:     field(colAirline),
		FlightNum:   field(colFlightNum),
		Origin:      origin,
		Destination: destination,
	}, true
}

// parseAirport validates one airport leg of a row.
func parseAirport(code, name, latField, lonField string) (engine.Lookup, error) {
	normalized := engine.NormalizeCode(code)
	if normalized == "" {
		return engine.Lookup{}, errors.New("blank airport code")
	}

	lat, err := strconv.ParseFloat(latField, 64)
	if err != nil {
		return engine.Lookup{}, fmt.Errorf("non-numeric latitude %q", latField)
	}
	lon, err := strconv.ParseFloat(lonField, 64)
	if err != nil {
		return engine.Lookup{}, fmt.Errorf("non-numeric longitude %q", lonField)
	}

	if lat < -90 || lat > 90 {
		return engine.Lookup{}, fmt.Errorf("latitude %g out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return engine.Lookup{}, fmt.Errorf("longitude %g out of range", lon)
	}

	return engine.Lookup{Code: normalized, Name: name, Latitude: lat, Longitude: lon}, nil
}
