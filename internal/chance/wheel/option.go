// Package wheel implements the spinning-wheel geometry: committing a target
// rotation, rendering marker positions for a rotation, resolving the winner
// from those positions, and the persisted option list format.
package wheel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Option is one wheel slice. Order is significant: it fixes slice position.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Palette is the fixed color cycle for new and migrated options.
var Palette = []string{
	"#FF6B6B",
	"#FFD93D",
	"#6BCB77",
	"#4D96FF",
	"#9D4EDD",
	"#FF922B",
	"#38BDF8",
	"#F472B6",
}

// ErrInvalidColor is returned for colors that are not #RRGGBB.
var ErrInvalidColor = errors.New("wheel: color must be #RRGGBB")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether c is a #RRGGBB color.
func ValidColor(c string) bool { return colorPattern.MatchString(c) }

// NewID mints a fresh option identifier.
func NewID() string { return uuid.NewString() }

// DefaultOptions returns the three-option list used when nothing usable is stored.
//
// Postcondition: every call mints fresh ids.
func DefaultOptions() []Option {
	return FromLabels([]string{"Option 1", "Option 2", "Option 3"}, NewID)
}

// FromLabels builds options with fresh ids and palette colors cycling by position.
func FromLabels(labels []string, newID func() string) []Option {
	out := make([]Option, len(labels))
	for i, l := range labels {
		out[i] = Option{ID: newID(), Label: l, Color: Palette[i%len(Palette)]}
	}
	return out
}

// NextColor returns the least-used palette color, preferring palette order on ties.
func NextColor(options []Option) string {
	count := make(map[string]int, len(options))
	for _, o := range options {
		count[o.Color]++
	}
	best := Palette[0]
	bestCount := -1
	for _, c := range Palette {
		if bestCount < 0 || count[c] < bestCount {
			best, bestCount = c, count[c]
		}
	}
	return best
}

// IndexOf returns the position of the option with id, or -1.
func IndexOf(options []Option, id string) int {
	for i, o := range options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// EncodeOptions serialises options in the current {id,label,color} shape.
func EncodeOptions(options []Option) ([]byte, error) {
	if options == nil {
		options = []Option{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encoding wheel options: %w", err)
	}
	return b, nil
}

// DecodeOptions upgrades a stored option list to the current shape.
//
// Recognised shapes are the current list of {id,label,color} records and the
// legacy list of label strings, which gets fresh ids and palette colors by
// position. Anything else, including missing or malformed data, yields
// DefaultOptions. The second result reports which shape was recognised.
func DecodeOptions(raw []byte, newID func() string) ([]Option, Shape) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return DefaultOptions(), ShapeDefault
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return DefaultOptions(), ShapeDefault
	}

	if opts, ok := decodeCurrent(items); ok {
		return opts, ShapeCurrent
	}
	if labels, ok := decodeLabels(items); ok {
		return FromLabels(labels, newID), ShapeLegacyLabels
	}
	return DefaultOptions(), ShapeDefault
}

// Shape names the stored layout DecodeOptions recognised.
type Shape string

const (
	ShapeCurrent      Shape = "current"
	ShapeLegacyLabels Shape = "legacy_labels"
	ShapeDefault      Shape = "default"
)

func decodeCurrent(items []json.RawMessage) ([]Option, bool) {
	out := make([]Option, 0, len(items))
	for _, it := range items {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(it, &rec); err != nil || rec == nil {
			return nil, false
		}
		var o Option
		for key, dst := range map[string]*string{"id": &o.ID, "label": &o.Label, "color": &o.Color} {
			v, ok := rec[key]
			if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) || json.Unmarshal(v, dst) != nil {
				return nil, false
			}
		}
		out = append(out, o)
	}
	return out, true
}

func decodeLabels(items []json.RawMessage) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if bytes.Equal(bytes.TrimSpace(it), []byte("null")) || json.Unmarshal(it, &s) != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
