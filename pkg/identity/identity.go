package identity

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Built-in device identifier formats.
const (
	FormatDigitsLetters = "digits-letters"
	FormatResSerial     = "res-serial"
	FormatCustom        = "custom"
)

// ErrUnknownFormat is returned when a format name has no built-in definition.
var ErrUnknownFormat = errors.New("unknown device identifier format")

var builtinFormats = map[string]struct {
	pattern     string
	description string
}{
	FormatDigitsLetters: {pattern: `^[0-9]{6}[A-Za-z]{3}$`, description: "6 digits + 3 letters"},
	FormatResSerial:     {pattern: `^Res[0-9]{3}[0-9]{6}$`, description: "Res + 3 digits + 6 digits"},
}

// Format is the structural rule a device identifier must satisfy.
type Format struct {
	Name        string // Format name, one of the built-ins or "custom"
	Pattern     string // Pattern as configured
	Description string // Human readable rule, used in client-facing messages

	re *regexp.Regexp
}

// NewFormat compiles a format. The pattern always has to match the whole identifier.
func NewFormat(name, pattern, description string) (*Format, error) {
	if pattern == "" {
		return nil, errors.New("device identifier pattern is empty")
	}
	if description == "" {
		description = "match " + pattern
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid device identifier pattern %q: %w", pattern, err)
	}

	return &Format{
		Name:        name,
		Pattern:     pattern,
		Description: description,
		re:          re,
	}, nil
}

// LookupFormat returns one of the built-in formats by name.
func LookupFormat(name string) (*Format, error) {
	def, ok := builtinFormats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFormat, name, FormatNames())
	}
	return NewFormat(name, def.pattern, def.description)
}

// FormatNames lists the built-in format names in a stable order.
func FormatNames() []string {
	names := make([]string, 0, len(builtinFormats))
	for name := range builtinFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Matches reports whether deviceName satisfies the format.
func (f *Format) Matches(deviceName string) bool {
	return f.re.MatchString(deviceName)
}

func (f *Format) String() string {
	return f.Name + " (" + f.Description + ")"
}
