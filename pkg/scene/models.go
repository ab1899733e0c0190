// Package scene holds the composition model shared by the layout solver,
// the placement session and the compositor.
package scene

import "encoding/json"

// ── Item types ──

// Kind tags the variant of a placed item.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindText  Kind = "text"
)

// Item is one positioned element of a composition. Exactly one of Photo or
// Text is set, matching Kind.
type Item struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"` // degrees
	Z        int     `json:"zIndex"`   // paint order, ties keep insertion order
	Locked   bool    `json:"locked"`
	Visible  bool    `json:"visible"`
	Selected bool    `json:"selected,omitempty"`

	Photo *Photo `json:"photo,omitempty"`
	Text  *Text  `json:"text,omitempty"`
}

// UnmarshalJSON decodes an item, treating a missing "visible" as true.
func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	p := plain{Visible: true}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

// Photo references a shared media asset.
type Photo struct {
	AssetID string `json:"assetId"`
}

// Text is an owned, user-edited text block.
type Text struct {
	Content string    `json:"content"`
	Style   TextStyle `json:"style"`
}

// TextStyle defines how a text item is drawn.
type TextStyle struct {
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Weight     string  `json:"fontWeight"`     // "normal" or "bold"
	Slant      string  `json:"fontStyle"`      // "normal" or "italic"
	Decoration string  `json:"textDecoration"` // "none" or "underline"
	Align      string  `json:"textAlign"`      // "left", "center", "right"
	Background string  `json:"backgroundColor"`
	Padding    float64 `json:"padding"`
	Radius     float64 `json:"borderRadius"`
	Opacity    float64 `json:"opacity"`
	Shadow     bool    `json:"shadow"`
}

// UnmarshalJSON decodes a style on top of DefaultTextStyle.
func (s *TextStyle) UnmarshalJSON(b []byte) error {
	type plain TextStyle
	p := plain(DefaultTextStyle())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = TextStyle(p)
	return nil
}

// HasBackground reports whether a background box should be painted.
func (s TextStyle) HasBackground() bool {
	return s.Background != "" && s.Background != "transparent" && s.Background != "none"
}

// Bold reports whether the bold weight was requested.
func (s TextStyle) Bold() bool { return s.Weight == "bold" }

// Italic reports whether the italic slant was requested.
func (s TextStyle) Italic() bool { return s.Slant == "italic" }

// Underlined reports whether an underline should be stroked.
func (s TextStyle) Underlined() bool { return s.Decoration == "underline" }

// ── Composition ──

// Settings apply uniformly to every photo item at render time.
type Settings struct {
	Spacing         float64 `json:"spacing"`         // [0,50] px
	BorderWidth     float64 `json:"borderWidth"`     // [0,20] px
	ShadowIntensity float64 `json:"shadowIntensity"` // [0,100] %
	BorderRadius    float64 `json:"borderRadius"`
}

// Composition is the arrangement that gets flattened to one raster image.
type Composition struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Background string   `json:"backgroundColor"`
	Template   string   `json:"template,omitempty"`
	Theme      string   `json:"theme,omitempty"`
	Settings   Settings `json:"settings"`
	Items      []Item   `json:"items"`
}

// FontFamilies lists the families offered for text items. Unknown families
// fall back to the sans family at render time.
var FontFamilies = []string{
	"Arial", "Georgia", "Times New Roman", "Helvetica", "Verdana",
	"Comic Sans MS", "Impact", "Trebuchet MS", "Courier New", "Brush Script MT",
}

// Setting ranges recognised by Normalize.
const (
	MaxSpacing         = 50
	MaxBorderWidth     = 20
	MaxShadowIntensity = 100
)

// Canvas and style defaults.
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBackground = "#f8f4e6"
	DefaultText       = "Your Text Here"
)
