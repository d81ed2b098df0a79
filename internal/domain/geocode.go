package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding tries to fill a record's missing coordinates or location
// label from a real geocoder. If geocoder is nil, the record is complete, or
// the lookup fails, the record is returned unchanged and the gap is left for
// synthesis (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, rec ProjectRecord, geocoder Geocoder, logger *slog.Logger) ProjectRecord {
	if geocoder == nil {
		return rec
	}

	// Forward geocode: location label → coordinates.
	if !rec.HasCoordinates() && rec.Location != "" {
		result, err := geocoder.ForwardGeocode(ctx, rec.Location)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"project_id", rec.ID,
				"location", rec.Location,
				"error", err,
			)
			return rec
		}
		c := Coordinates{Lat: result.Lat, Lng: result.Lng}
		if (c.Lat != 0 || c.Lng != 0) && c.Valid() {
			rec.Coordinates = c
			rec.CoordinatesSource = ProvenanceGeocoded
		}
		return rec
	}

	// Reverse geocode: coordinates → location label.
	if rec.HasCoordinates() && rec.Location == "" {
		result, err := geocoder.ReverseGeocode(ctx, rec.Coordinates.Lat, rec.Coordinates.Lng)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"project_id", rec.ID,
				"lat", rec.Coordinates.Lat,
				"lng", rec.Coordinates.Lng,
				"error", err,
			)
			return rec
		}
		if result.PlaceName != "" {
			rec.Location = result.PlaceName
			rec.LocationSource = ProvenanceGeocoded
		}
		return rec
	}

	return rec
}
