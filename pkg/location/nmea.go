package location

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrianmo/go-nmea"
)

var (
	// ErrNoFix is returned when the sentence is well formed but flags the position as invalid.
	ErrNoFix = errors.New("sentence carries no position fix")

	// ErrUnsupportedSentence is returned for sentence types without a position.
	ErrUnsupportedSentence = errors.New("unsupported NMEA sentence")
)

// ParseSentence extracts a position from a single GGA, RMC or GLL sentence.
func ParseSentence(line string) (Location, error) {
	sentence, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse NMEA sentence: %w", err)
	}

	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return Location{}, ErrNoFix
		}
		// HDOP is the closest thing to an accuracy figure GGA offers
		return Location{Latitude: s.Latitude, Longitude: s.Longitude, Accuracy: s.HDOP}, nil
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return Location{}, ErrNoFix
		}
		return Location{Latitude: s.Latitude, Longitude: s.Longitude}, nil
	case nmea.GLL:
		if s.Validity != nmea.ValidGLL {
			return Location{}, ErrNoFix
		}
		return Location{Latitude: s.Latitude, Longitude: s.Longitude}, nil
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedSentence, sentence.DataType())
	}
}
