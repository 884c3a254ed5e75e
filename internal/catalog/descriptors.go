package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownType is the descriptor for codes absent from the table.
const UnknownType = "Unknown"

//go:embed descriptors.yaml
var defaultDescriptors []byte

// Descriptors maps catalog object type codes to display names.
// A Descriptors value is read-only once loaded and may be shared freely.
type Descriptors struct {
	names map[string]string
}

// DefaultDescriptors parses the built-in SIMBAD type table.
func DefaultDescriptors() (*Descriptors, error) {
	return ParseDescriptors(defaultDescriptors)
}

// LoadDescriptors reads a YAML mapping of code to name from a file.
func LoadDescriptors(path string) (*Descriptors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening descriptor table: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor table: %w", err)
	}
	return ParseDescriptors(data)
}

// ParseDescriptors parses a YAML mapping of code to name.
func ParseDescriptors(data []byte) (*Descriptors, error) {
	names := map[string]string{}
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing descriptor table: %w", err)
	}
	return &Descriptors{names: names}, nil
}

// Lookup returns the display name for a type code.
func (d *Descriptors) Lookup(code string) string {
	if d == nil {
		return UnknownType
	}
	if name, ok := d.names[strings.TrimSpace(code)]; ok {
		return name
	}
	return UnknownType
}

// Len returns the number of known codes.
func (d *Descriptors) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Codes returns the known codes in sorted order.
func (d *Descriptors) Codes() []string {
	if d == nil {
		return nil
	}
	codes := make([]string, 0, len(d.names))
	for c := range d.names {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
