// Package geotag reads the GPS position embedded in a photo's EXIF data.
//
// Extraction is best effort. A file without an EXIF container yields a zero
// location, and each of altitude, latitude and longitude is decoded on its own
// so a broken field only zeroes that component.
package geotag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var (
	// ErrNoContainer is returned when no EXIF data could be decoded at all
	ErrNoContainer = errors.New("no exif container")

	ErrMissing   = errors.New("tag is missing")
	ErrMalformed = errors.New("value is broken")
)

// Location is a decoded geotag. Altitude is in metres.
type Location struct {
	Longitude float64
	Latitude  float64
	Altitude  float64
}

// Vector returns [longitude, latitude, altitude], the order used in qindex.json
func (l Location) Vector() []float64 {
	return []float64{l.Longitude, l.Latitude, l.Altitude}
}

// FieldError reports one GPS field that could not be used
type FieldError struct {
	Field exif.FieldName
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// DMSToDecimal converts degrees, minutes and seconds to decimal degrees
func DMSToDecimal(degrees, minutes, seconds float64) float64 {
	return degrees + minutes/60 + seconds/3600
}

// Read decodes the EXIF container in r. The returned error is only set when
// there is no usable container; per-field problems come back as FieldErrors
// with the matching component left at 0.
//
// With signed set, the hemisphere and altitude refs flip the sign of their
// component (S, W, below sea level).
func Read(r io.Reader, signed bool) (Location, []FieldError, error) {
	x, err := exif.Decode(r)
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return Location{}, nil, fmt.Errorf("%w: %v", ErrNoContainer, err)
		}
		// sub-IFD damage; IFD0 and whatever loaded are still usable
		slog.Debug("Partial EXIF decode", "error", err)
	}

	var loc Location
	var fieldErrs []FieldError

	if v, err := rationals(x, exif.GPSAltitude, 1); err != nil {
		fieldErrs = append(fieldErrs, FieldError{Field: exif.GPSAltitude, Err: err})
	} else {
		loc.Altitude = v[0]
		if signed && altitudeBelowSea(x) {
			loc.Altitude = -loc.Altitude
		}
	}

	if v, err := rationals(x, exif.GPSLatitude, 3); err != nil {
		fieldErrs = append(fieldErrs, FieldError{Field: exif.GPSLatitude, Err: err})
	} else {
		loc.Latitude = DMSToDecimal(v[0], v[1], v[2])
		if signed && refIs(x, exif.GPSLatitudeRef, "S") {
			loc.Latitude = -loc.Latitude
		}
	}

	if v, err := rationals(x, exif.GPSLongitude, 3); err != nil {
		fieldErrs = append(fieldErrs, FieldError{Field: exif.GPSLongitude, Err: err})
	} else {
		loc.Longitude = DMSToDecimal(v[0], v[1], v[2])
		if signed && refIs(x, exif.GPSLongitudeRef, "W") {
			loc.Longitude = -loc.Longitude
		}
	}

	return loc, fieldErrs, nil
}

// ReadPath opens path and calls Read
func ReadPath(path string, signed bool) (Location, []FieldError, error) {
	file, err := os.Open(path)
	if err != nil {
		return Location{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Read(file, signed)
}

// ReadFile is ReadPath for the tiling pipeline: it never fails, logging what
// went wrong and returning zeros for anything it could not decode.
func ReadFile(path string, signed bool) Location {
	loc, fieldErrs, err := ReadPath(path, signed)
	if err != nil {
		slog.Warn("No geotag available", "path", path, "error", err)
		return Location{}
	}

	for _, fe := range fieldErrs {
		slog.Warn(fe.Error(), "path", path)
	}

	return loc
}

// rationals returns the first n rational values of a tag as floats
func rationals(x *exif.Exif, name exif.FieldName, n int) ([]float64, error) {
	tag, err := x.Get(name)
	if err != nil {
		return nil, ErrMissing
	}

	if tag.Format() != tiff.RatVal {
		return nil, fmt.Errorf("%w: expected rational, got type %d", ErrMalformed, tag.Type)
	}
	if int(tag.Count) < n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrMalformed, n, tag.Count)
	}

	vals := make([]float64, n)
	for i := range vals {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if den == 0 {
			return nil, fmt.Errorf("%w: zero denominator at index %d", ErrMalformed, i)
		}
		vals[i] = float64(num) / float64(den)
	}

	return vals, nil
}

func refIs(x *exif.Exif, name exif.FieldName, want string) bool {
	tag, err := x.Get(name)
	if err != nil {
		return false
	}
	s, err := tag.StringVal()
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(strings.TrimRight(s, "\x00")), want)
}

func altitudeBelowSea(x *exif.Exif) bool {
	tag, err := x.Get(exif.GPSAltitudeRef)
	if err != nil {
		return false
	}
	v, err := tag.Int(0)
	return err == nil && v == 1
}
