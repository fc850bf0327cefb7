package taskcore

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Color is a non-premultiplied 8-bit RGBA color. A nil *Color means unset.
type Color struct {
	R, G, B, A uint8
}

var _ color.Color = Color{}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Tuple returns the color as an (r, g, b, a) tuple.
func (c Color) Tuple() [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, c.A}
}

// NewColor returns a color from explicit channels.
func NewColor(r, g, b, a uint8) *Color {
	return &Color{R: r, G: g, B: b, A: a}
}

// ColorOf normalizes any color.Color into a *Color. Nil, including a typed
// nil *Color, yields nil.
func ColorOf(c color.Color) *Color {
	switch v := c.(type) {
	case nil:
		return nil
	case *Color:
		if v == nil {
			return nil
		}
		out := *v
		return &out
	case Color:
		return &v
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return &Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// ColorFromTuple builds a color from an (r, g, b) or (r, g, b, a) tuple.
// Channels are clamped to 0..255 and alpha defaults to 255.
func ColorFromTuple(channels ...int) (*Color, error) {
	if len(channels) != 3 && len(channels) != 4 {
		return nil, fmt.Errorf("%w: color tuple needs 3 or 4 channels, got %d", ErrInvalidState, len(channels))
	}
	out := Color{A: 255}
	dst := []*uint8{&out.R, &out.G, &out.B, &out.A}
	for i, channel := range channels {
		*dst[i] = clampChannel(channel)
	}
	return &out, nil
}

// MarshalJSON encodes the color as a [r, g, b, a] array.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{int(c.R), int(c.G), int(c.B), int(c.A)})
}

// UnmarshalJSON accepts a 3 or 4 element array or an {"R","G","B","A"} object.
func (c *Color) UnmarshalJSON(data []byte) error {
	var channels []float64
	if err := json.Unmarshal(data, &channels); err == nil {
		ints := make([]int, len(channels))
		for i, v := range channels {
			ints[i] = int(v)
		}
		parsed, err := ColorFromTuple(ints...)
		if err != nil {
			return err
		}
		*c = *parsed
		return nil
	}
	var object struct {
		R, G, B int
		A       *int
	}
	if err := json.Unmarshal(data, &object); err != nil {
		return fmt.Errorf("%w: color: %v", ErrInvalidState, err)
	}
	alpha := 255
	if object.A != nil {
		alpha = *object.A
	}
	parsed, _ := ColorFromTuple(object.R, object.G, object.B, alpha)
	*c = *parsed
	return nil
}

func clampChannel(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

func colorsEqual(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneColor(c *Color) *Color {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// Font describes a text font. A nil *Font means unset.
type Font struct {
	Family    string  `json:"family"`
	Size      float64 `json:"size"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
}

func fontsEqual(a, b *Font) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneFont(f *Font) *Font {
	if f == nil {
		return nil
	}
	out := *f
	return &out
}

// Appearance groups the visual attributes that composites inherit from their
// ancestors when unset.
type Appearance struct {
	ForegroundColor *Color
	BackgroundColor *Color
	Font            *Font
	Icon            string
	SelectedIcon    string
}
