package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eightam/acf-ofm-location/internal/geocoder"
	"github.com/eightam/acf-ofm-location/internal/models"
	"github.com/eightam/acf-ofm-location/internal/repository"

	"github.com/rs/zerolog/log"
)

// column order of the import file
const (
	colPostID = iota
	colFieldKey
	colFieldName
	colFullAddress
	colStreet
	colNumber
	colCity
	colPostCode
	colCountry
	colState
	colLat
	colLng
	columnCount
)

// importRow is one CSV line. HasCoordinates is false when lat or lng is blank.
type importRow struct {
	Line           int
	PostID         int64
	Field          models.FieldRef
	Location       models.Location
	HasCoordinates bool
}

func parseCSV(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columnCount
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []importRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string) (importRow, error) {
	postID, err := strconv.ParseInt(strings.TrimSpace(record[colPostID]), 10, 64)
	if err != nil || postID <= 0 {
		return importRow{}, fmt.Errorf("invalid post id: %q", record[colPostID])
	}

	name := strings.TrimSpace(record[colFieldName])
	if name == "" {
		return importRow{}, errors.New("field name is required")
	}
	key := strings.TrimSpace(record[colFieldKey])
	if key == "" {
		key = "field_" + name
	}

	row := importRow{
		PostID: postID,
		Field:  models.FieldRef{Key: key, Name: name},
		Location: models.Location{
			FullAddress: record[colFullAddress],
			Street:      record[colStreet],
			HouseNumber: record[colNumber],
			City:        record[colCity],
			PostCode:    record[colPostCode],
			Country:     record[colCountry],
			State:       record[colState],
		},
	}
	row.Location.Sanitize()

	latStr, lngStr := strings.TrimSpace(record[colLat]), strings.TrimSpace(record[colLng])
	if latStr == "" || lngStr == "" {
		return row, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return importRow{}, fmt.Errorf("invalid latitude: %s", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return importRow{}, fmt.Errorf("invalid longitude: %s", lngStr)
	}
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return importRow{}, err
	}

	row.Location.Latitude = lat
	row.Location.Longitude = lng
	row.HasCoordinates = true
	return row, nil
}

// resolve completes each row with the provider. Rows without coordinates are
// forward geocoded from their address text; rows with coordinates but no
// address are reverse geocoded. Rows that cannot be completed are skipped.
// A later row for the same post and field replaces an earlier one.
func resolve(ctx context.Context, geo geocoder.Provider, rows []importRow) ([]repository.ImportRecord, int) {
	records := make([]repository.ImportRecord, 0, len(rows))
	seen := make(map[string]int, len(rows))
	skipped := 0

	for _, row := range rows {
		loc, err := resolveRow(ctx, geo, row)
		if err != nil {
			log.Warn().Err(err).Int("line", row.Line).Int64("post_id", row.PostID).Msg("skipping row")
			skipped++
			continue
		}

		rec := repository.ImportRecord{PostID: row.PostID, Field: row.Field, Location: loc}
		key := fmt.Sprintf("%d/%s", row.PostID, row.Field.Name)
		if i, ok := seen[key]; ok {
			log.Warn().Int("line", row.Line).Int64("post_id", row.PostID).Str("field", row.Field.Name).Msg("duplicate row replaces an earlier one")
			records[i] = rec
			continue
		}
		seen[key] = len(records)
		records = append(records, rec)
	}

	return records, skipped
}

func resolveRow(ctx context.Context, geo geocoder.Provider, row importRow) (models.Location, error) {
	loc := row.Location
	address := loc.FullAddress
	if address == "" {
		address = models.BuildFullAddress(loc.Street, loc.HouseNumber, loc.City, loc.PostCode, loc.State, loc.Country)
	}

	switch {
	case row.HasCoordinates && address != "":
		loc.FullAddress = address
		return loc, nil

	case row.HasCoordinates:
		found, err := geo.Reverse(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Warn().Err(err).Int("line", row.Line).Msg("reverse geocoding failed, storing coordinates only")
			return models.CoordinatesOnly(loc.Latitude, loc.Longitude), nil
		}
		found.Latitude, found.Longitude = loc.Latitude, loc.Longitude
		return found, nil

	case address != "":
		results, err := geo.Search(ctx, address)
		if err != nil {
			return models.Location{}, fmt.Errorf("geocoding %q: %w", address, err)
		}
		if len(results) == 0 {
			return models.Location{}, fmt.Errorf("no match for %q", address)
		}
		return mergeMissing(loc, results[0]), nil

	default:
		return models.Location{}, errors.New("row has neither address nor coordinates")
	}
}

// mergeMissing fills the blank text parts of loc from match and takes its coordinates.
func mergeMissing(loc, match models.Location) models.Location {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&loc.FullAddress, match.FullAddress)
	fill(&loc.Street, match.Street)
	fill(&loc.HouseNumber, match.HouseNumber)
	fill(&loc.City, match.City)
	fill(&loc.PostCode, match.PostCode)
	fill(&loc.Country, match.Country)
	fill(&loc.State, match.State)
	loc.Latitude = match.Latitude
	loc.Longitude = match.Longitude
	return loc
}

// verifyCopied checks that every component row of every record was written.
func verifyCopied(copied int64, records int) error {
	want := int64(records * len(models.Components))
	if copied != want {
		return fmt.Errorf("row count mismatch: expected %d, copied %d", want, copied)
	}
	return nil
}
