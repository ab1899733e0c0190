package scene

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// New returns an empty composition with the default canvas and settings.
func New() *Composition {
	return &Composition{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
		Settings:   DefaultSettings(),
	}
}

// DefaultSettings returns the collage settings a fresh composition starts with.
func DefaultSettings() Settings {
	return Settings{
		Spacing:         20,
		BorderWidth:     8,
		ShadowIntensity: 30,
		BorderRadius:    15,
	}
}

// DefaultTextStyle returns the style of a freshly added text item.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily: "Arial",
		FontSize:   32,
		Color:      "#000000",
		Weight:     "normal",
		Slant:      "normal",
		Decoration: "none",
		Align:      "center",
		Background: "transparent",
		Padding:    10,
		Radius:     0,
		Opacity:    1,
	}
}

// NewPhoto creates a visible photo item for assetID.
func NewPhoto(assetID string, x, y, w, h, rotation float64, z int) Item {
	return Item{
		ID:       uuid.NewString(),
		Kind:     KindPhoto,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		Rotation: rotation,
		Z:        z,
		Visible:  true,
		Photo:    &Photo{AssetID: assetID},
	}
}

// NewText creates a text item centred on the canvas, stacked above every
// existing item.
func (c *Composition) NewText(content string) Item {
	if content == "" {
		content = DefaultText
	}
	return Item{
		ID:      uuid.NewString(),
		Kind:    KindText,
		X:       float64(c.Width)/2 - 100,
		Y:       float64(c.Height)/2 - 25,
		Width:   200,
		Height:  50,
		Z:       max(c.MaxZ(), 0) + 1,
		Visible: true,
		Text:    &Text{Content: content, Style: DefaultTextStyle()},
	}
}

// Add appends an item.
func (c *Composition) Add(it Item) {
	c.Items = append(c.Items, it)
}

// Find returns a pointer to the item with id, or nil.
func (c *Composition) Find(id string) *Item {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Remove deletes the item with id and reports whether it existed.
func (c *Composition) Remove(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// MaxZ returns the highest z-order over all items, photos and text alike.
// An empty composition reports 0.
func (c *Composition) MaxZ() int {
	if len(c.Items) == 0 {
		return 0
	}
	z := math.MinInt
	for _, it := range c.Items {
		z = max(z, it.Z)
	}
	return z
}

// MinZ returns the lowest z-order over all items. An empty composition
// reports 0.
func (c *Composition) MinZ() int {
	if len(c.Items) == 0 {
		return 0
	}
	z := math.MaxInt
	for _, it := range c.Items {
		z = min(z, it.Z)
	}
	return z
}

// Ordered returns the visible items sorted for painting: lower z first,
// insertion order on ties.
func (c *Composition) Ordered() []Item {
	var result []Item
	for _, it := range c.Items {
		if it.Visible {
			result = append(result, it)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Z < result[j].Z
	})
	return result
}

// HasVisible reports whether anything would be painted.
func (c *Composition) HasVisible() bool {
	for _, it := range c.Items {
		if it.Visible {
			return true
		}
	}
	return false
}

// AssetIDs returns the distinct asset ids referenced by photo items, in
// first-use order.
func (c *Composition) AssetIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, it := range c.Items {
		if it.Photo == nil || seen[it.Photo.AssetID] {
			continue
		}
		seen[it.Photo.AssetID] = true
		ids = append(ids, it.Photo.AssetID)
	}
	return ids
}

// Normalize clamps settings and styles into their recognised ranges and
// fills zero values with defaults.
func (c *Composition) Normalize() {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Background == "" {
		c.Background = DefaultBackground
	}

	s := &c.Settings
	s.Spacing = clamp(s.Spacing, 0, MaxSpacing)
	s.BorderWidth = clamp(s.BorderWidth, 0, MaxBorderWidth)
	s.ShadowIntensity = clamp(s.ShadowIntensity, 0, MaxShadowIntensity)
	s.BorderRadius = max(s.BorderRadius, 0)

	for i := range c.Items {
		c.Items[i].Normalize()
	}
}

// Normalize enforces positive sizes and a valid text style.
func (it *Item) Normalize() {
	it.Width = max(it.Width, 1)
	it.Height = max(it.Height, 1)
	if it.Text != nil {
		st := &it.Text.Style
		if st.FontSize <= 0 {
			st.FontSize = DefaultTextStyle().FontSize
		}
		st.Opacity = clamp(st.Opacity, 0, 1)
		st.Padding = max(st.Padding, 0)
		st.Radius = max(st.Radius, 0)
		if st.Align == "" {
			st.Align = "center"
		}
	}
}

// Contains reports whether the canvas point lies inside the item's box as
// drawn: rotated about the box centre for photos and about the text anchor
// (x+w/2, y+fontSize/2) for text.
func (it Item) Contains(px, py float64) bool {
	if it.Rotation != 0 {
		cx, cy := it.pivot()
		rad := it.Rotation * math.Pi / 180
		sin, cos := math.Sincos(rad)
		dx, dy := px-cx, py-cy
		px = cx + dx*cos + dy*sin
		py = cy - dx*sin + dy*cos
	}
	const eps = 1e-9
	return px >= it.X-eps && px <= it.X+it.Width+eps && py >= it.Y-eps && py <= it.Y+it.Height+eps
}

func (it Item) pivot() (x, y float64) {
	if it.Text != nil {
		return it.X + it.Width/2, it.Y + it.Text.Style.FontSize/2
	}
	return it.X + it.Width/2, it.Y + it.Height/2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
