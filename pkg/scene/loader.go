// loader.go — Parse composition JSON and report recoverable problems.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseComposition decodes a composition document and normalizes it.
func ParseComposition(data []byte) (*Composition, error) {
	comp := New()
	comp.Settings = Settings{}
	if err := json.Unmarshal(data, comp); err != nil {
		return nil, fmt.Errorf("parse composition JSON: %w", err)
	}
	if comp.Settings == (Settings{}) {
		comp.Settings = DefaultSettings()
	}
	comp.Normalize()
	return comp, nil
}

// LoadComposition reads and parses a composition file.
func LoadComposition(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read composition: %w", err)
	}
	return ParseComposition(data)
}

// Validate checks item references against the known asset ids. It returns
// warnings (never fatal errors); referenced-but-missing assets render as gaps.
func Validate(comp *Composition, assetIDs map[string]bool) []string {
	var warnings []string

	seen := make(map[string]bool, len(comp.Items))
	for _, it := range comp.Items {
		if seen[it.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate item id %q", it.ID))
		}
		seen[it.ID] = true

		switch it.Kind {
		case KindPhoto:
			if it.Photo == nil {
				warnings = append(warnings, fmt.Sprintf("photo item %q has no asset reference", it.ID))
				continue
			}
			if assetIDs != nil && !assetIDs[it.Photo.AssetID] {
				warnings = append(warnings, fmt.Sprintf("item %q references unknown asset %q, it will be skipped", it.ID, it.Photo.AssetID))
			}
		case KindText:
			if it.Text == nil {
				warnings = append(warnings, fmt.Sprintf("text item %q has no content", it.ID))
			}
		default:
			warnings = append(warnings, fmt.Sprintf("item %q has unknown kind %q", it.ID, it.Kind))
		}
	}

	return warnings
}

// ExampleJSON returns a sample composition for `memoria init`.
func ExampleJSON() string {
	return `{
  "width": 800,
  "height": 600,
  "backgroundColor": "#f8f4e6",
  "template": "grid",
  "settings": {
    "spacing": 20,
    "borderWidth": 8,
    "shadowIntensity": 30,
    "borderRadius": 15
  },
  "items": [
    {
      "id": "caption",
      "kind": "text",
      "x": 300, "y": 275, "width": 200, "height": 50,
      "zIndex": 10,
      "text": {
        "content": "Summer 2024",
        "style": { "fontSize": 40, "fontWeight": "bold", "color": "#8B4513", "shadow": true }
      }
    }
  ]
}`
}
