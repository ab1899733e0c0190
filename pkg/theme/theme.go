// Package theme holds the named colour and font bundles used by every
// renderer. Five palettes are built in; more can be loaded from YAML.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xob0t/memoria/pkg/canvas"
)

// ErrUnknownTheme is returned for theme ids that are not registered.
var ErrUnknownTheme = errors.New("unknown theme")

// Colors is the five-colour palette of a theme.
type Colors struct {
	Primary    string `yaml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" json:"secondary"`
	Accent     string `yaml:"accent" json:"accent"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
}

// Fonts names the family for each typographic role.
type Fonts struct {
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
	Body     string `yaml:"body" json:"body"`
}

// Theme is a named palette and font bundle.
type Theme struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Colors      Colors `yaml:"colors" json:"colors"`
	Fonts       Fonts  `yaml:"fonts" json:"fonts"`
}

// Title returns the title font at size.
func (t Theme) Title(size float64, bold bool) canvas.Font {
	return canvas.Font{Family: t.Fonts.Title, Size: size, Bold: bold}
}

// Subtitle returns the italic subtitle font at size.
func (t Theme) Subtitle(size float64) canvas.Font {
	return canvas.Font{Family: t.Fonts.Subtitle, Size: size, Italic: true}
}

// Body returns the body font at size.
func (t Theme) Body(size float64, bold bool) canvas.Font {
	return canvas.Font{Family: t.Fonts.Body, Size: size, Bold: bold}
}

// BackgroundStops is the diagonal background gradient: background, then
// secondary at the middle, then background again.
func (t Theme) BackgroundStops() []canvas.Stop {
	bg := canvas.MustColor(t.Colors.Background)
	return []canvas.Stop{
		{Offset: 0, Color: bg},
		{Offset: 0.5, Color: canvas.MustColor(t.Colors.Secondary)},
		{Offset: 1, Color: bg},
	}
}

func (t Theme) validate() error {
	if t.ID == "" {
		return fmt.Errorf("theme without id")
	}
	for role, c := range map[string]string{
		"primary":    t.Colors.Primary,
		"secondary":  t.Colors.Secondary,
		"accent":     t.Colors.Accent,
		"background": t.Colors.Background,
		"text":       t.Colors.Text,
	} {
		if _, err := canvas.ParseColor(c); err != nil {
			return fmt.Errorf("theme %q %s: %w", t.ID, role, err)
		}
	}
	return nil
}

func applyDefaults(t *Theme) {
	if t.Name == "" {
		t.Name = t.ID
	}
	if t.Fonts.Title == "" {
		t.Fonts.Title = "serif"
	}
	if t.Fonts.Subtitle == "" {
		t.Fonts.Subtitle = "cursive"
	}
	if t.Fonts.Body == "" {
		t.Fonts.Body = "sans-serif"
	}
}

// Registry is a concurrency-safe set of themes keyed by id.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

// NewRegistry returns a registry holding the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]Theme)}
	for _, t := range builtins {
		r.themes[t.ID] = t
	}
	return r
}

// Register adds or replaces a theme.
func (r *Registry) Register(t Theme) error {
	t.ID = strings.TrimSpace(t.ID)
	applyDefaults(&t)
	if err := t.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.themes[t.ID] = t
	r.mu.Unlock()
	return nil
}

// Lookup returns the theme with the given id.
func (r *Registry) Lookup(id string) (Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[id]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	return t, nil
}

// MustLookup is like Lookup but panics on unknown ids.
func (r *Registry) MustLookup(id string) Theme {
	t, err := r.Lookup(id)
	if err != nil {
		panic(err)
	}
	return t
}

// All returns every theme, built-ins first in their fixed order, then the
// rest sorted by id.
func (r *Registry) All() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Theme, 0, len(r.themes))
	seen := make(map[string]bool, len(builtins))
	for _, b := range builtins {
		if t, ok := r.themes[b.ID]; ok {
			out = append(out, t)
			seen[b.ID] = true
		}
	}
	var extra []Theme
	for id, t := range r.themes {
		if !seen[id] {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ID < extra[j].ID })
	return append(out, extra...)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Lookup resolves id in the default registry.
func Lookup(id string) (Theme, error) { return defaultRegistry.Lookup(id) }

// MustLookup resolves id in the default registry and panics if it is unknown.
func MustLookup(id string) Theme { return defaultRegistry.MustLookup(id) }

// FormatThemes returns a human-readable listing of the registry.
func FormatThemes(r *Registry) string {
	var b strings.Builder
	b.WriteString("Themes:\n")
	for _, t := range r.All() {
		fmt.Fprintf(&b, "\n  [%s] %s\n", t.ID, t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "    %s\n", t.Description)
		}
		fmt.Fprintf(&b, "    %-12s %s %s %s %s %s\n", "colors:",
			t.Colors.Primary, t.Colors.Secondary, t.Colors.Accent, t.Colors.Background, t.Colors.Text)
		fmt.Fprintf(&b, "    %-12s %s / %s / %s\n", "fonts:", t.Fonts.Title, t.Fonts.Subtitle, t.Fonts.Body)
	}
	return b.String()
}
