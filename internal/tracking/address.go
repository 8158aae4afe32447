package tracking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProducerID is the canonical string form of a producer Address. It is the
// key stored in producer sets and compared when wiring task ordering.
type ProducerID string

// Segment is a single component of an address path, e.g. `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewSegmentWithIndex creates a segment that includes an index.
func NewSegmentWithIndex(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the segment carries an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Address is the structured representation of a producer identifier,
// modeled as a dot-separated path of segments.
type Address struct {
	Path []Segment
}

// segmentRegex parses a single path segment, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// ParseAddress creates an Address by parsing its canonical string form.
func ParseAddress(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("producer identifier cannot be empty")
	}

	addr := &Address{}
	for _, segmentStr := range strings.Split(rawID, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("producer identifier contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		segment := NewSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to the regex `\d+`.
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		addr.Path = append(addr.Path, segment)
	}

	return addr, nil
}

// String serializes the Address into its canonical path string.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// ID returns the ProducerID form of the address.
func (a *Address) ID() ProducerID {
	return ProducerID(a.String())
}

// Equal checks for equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.Path) != len(other.Path) {
		return false
	}
	for i := range a.Path {
		if a.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}
