package theme

var builtinFonts = Fonts{Title: "serif", Subtitle: "cursive", Body: "sans-serif"}

var builtins = []Theme{
	{
		ID:          "elegant",
		Name:        "Elegant Ivory",
		Description: "Warm ivory with gold accents and serif typography",
		Colors:      Colors{Primary: "#8B4513", Secondary: "#F5F5DC", Accent: "#D4AF37", Background: "#FDF6E3", Text: "#4A4A4A"},
		Fonts:       builtinFonts,
	},
	{
		ID:          "blush",
		Name:        "Blush Romance",
		Description: "Soft blush pinks with rose gold details",
		Colors:      Colors{Primary: "#8B4A6B", Secondary: "#FCE4EC", Accent: "#E91E63", Background: "#FFF0F5", Text: "#5D4E75"},
		Fonts:       builtinFonts,
	},
	{
		ID:          "muted-gold",
		Name:        "Muted Gold",
		Description: "Sophisticated muted golds with cream tones",
		Colors:      Colors{Primary: "#B8860B", Secondary: "#FFF8DC", Accent: "#DAA520", Background: "#FFFEF7", Text: "#6B5B73"},
		Fonts:       builtinFonts,
	},
	{
		ID:          "sage",
		Name:        "Sage Serenity",
		Description: "Calming sage greens with natural warmth",
		Colors:      Colors{Primary: "#87A96B", Secondary: "#F0F4EC", Accent: "#9CAF88", Background: "#F8FBF6", Text: "#5A6B47"},
		Fonts:       builtinFonts,
	},
	{
		ID:          "lavender",
		Name:        "Lavender Dreams",
		Description: "Soft lavender with silver accents",
		Colors:      Colors{Primary: "#8A7CA8", Secondary: "#F3F0FF", Accent: "#B19CD9", Background: "#FEFCFF", Text: "#6B5B95"},
		Fonts:       builtinFonts,
	},
}

// DefaultID is the theme used when none is chosen.
const DefaultID = "elegant"
