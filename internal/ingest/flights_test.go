package ingest

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetHeader = "origin_iata_code,origin_name,origin_latitude,origin_longitude," +
	"destination_iata_code,destination_name,destination_latitude,destination_longitude," +
	"airline,flight_num"

func loadString(t *testing.T, data string) (*LoadResult, error) {
	t.Helper()
	return NewLoader(zerolog.Nop()).Load(strings.NewReader(data))
}

func TestLoadExtractsUniqueAirports(t *testing.T) {
	data := datasetHeader + "\n" +
		"JFK,John F. Kennedy Intl,40.64,-73.78,LAX,Los Angeles Intl,33.94,-118.41,DL,DL100\n" +
		"LAX,Los Angeles Intl,33.94,-118.41,JFK,John F. Kennedy Intl,40.64,-73.78,DL,DL101\n" +
		"JFK,John F. Kennedy Intl,40.64,-73.78,SFO,San Francisco Intl,37.62,-122.38,UA,UA200\n"

	result, err := loadString(t, data)
	require.NoError(t, err)

	assert.Len(t, result.Flights, 3)
	assert.Zero(t, result.SkippedRows)

	require.Len(t, result.Airports, 3, "airports must be deduplicated by code")
	codes := make([]string, 0, 3)
	for _, a := range result.Airports {
		codes = append(codes, a.Code)
	}
	assert.Equal(t, []string{"JFK", "LAX", "SFO"}, codes, "first-seen order is preserved")
}

func TestLoadNormalizesCodes(t *testing.T) {
	data := datasetHeader + "\n" +
		"jfk,JFK Intl,40.64,-73.78,lax,LAX Intl,33.94,-118.41,DL,DL1\n"

	result, err := loadString(t, data)
	require.NoError(t, err)
	assert.Equal(t, "JFK", result.Airports[0].Code)
	assert.Equal(t, "LAX", result.Airports[1].Code)
}

func TestLoadSkipsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{name: "BlankOriginCode", row: ",X,40,-73,LAX,Y,33.94,-118.41,DL,DL1"},
		{name: "NonNumericLatitude", row: "JFK,X,north,-73,LAX,Y,33.94,-118.41,DL,DL1"},
		{name: "LatitudeOutOfRange", row: "JFK,X,95,-73,LAX,Y,33.94,-118.41,DL,DL1"},
		{name: "LongitudeOutOfRange", row: "JFK,X,40,-73,LAX,Y,33.94,-190,DL,DL1"},
		{name: "TruncatedRow", row: "JFK,X,40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := datasetHeader + "\n" +
				tt.row + "\n" +
				"SEA,Seattle Tacoma Intl,47.45,-122.31,PDX,Portland Intl,45.59,-122.6,AS,AS5\n"

			result, err := loadString(t, data)
			require.NoError(t, err)
			assert.Equal(t, 1, result.SkippedRows)
			assert.Len(t, result.Flights, 1)
		})
	}
}

func TestLoadStructuralErrors(t *testing.T) {
	t.Run("EmptyFile", func(t *testing.T) {
		_, err := loadString(t, "")
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("MissingColumns", func(t *testing.T) {
		_, err := loadString(t, "origin_iata_code,airline\nJFK,DL\n")
		assert.ErrorIs(t, err, ErrMissingColumns)
	})

	t.Run("OnlyInvalidRows", func(t *testing.T) {
		data := datasetHeader + "\n" +
			",X,40,-73,LAX,Y,999,-118.41,DL,DL1\n"
		_, err := loadString(t, data)
		assert.ErrorIs(t, err, ErrNoValidAirports)
	})
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(zerolog.Nop()).LoadFile("/does/not/exist.csv")
	assert.Error(t, err)
}
