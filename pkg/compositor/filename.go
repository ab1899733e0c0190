package compositor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Artifact names a kind of rendered output.
type Artifact string

const (
	Collage     Artifact = "collage"
	Certificate Artifact = "certificate"
	Thread      Artifact = "thread"
	Wheel       Artifact = "wheel"
	Reel        Artifact = "reel"
	Gallery     Artifact = "gallery"
	Moment      Artifact = "moment"
)

// SuggestFilename returns the download name for an artifact. subject is the
// photo name for certificates and wheels, the title for threads, an optional
// suffix for galleries and the clip time for moments. orientation carries the
// gallery mode and the moment type. ext includes the dot.
func SuggestFilename(kind Artifact, orientation, subject string, now time.Time, ext string) string {
	switch kind {
	case Certificate:
		return fmt.Sprintf("memory-certificate-%s-%s%s", orientation, stripExt(subject), ext)
	case Thread:
		return fmt.Sprintf("memory-thread-%s-%s%s", orientation, slug(subject), ext)
	case Wheel:
		return fmt.Sprintf("memory-wheel-video-%s%s", stripExt(subject), ext)
	case Reel:
		return fmt.Sprintf("ai-memory-reel-%d%s", now.UnixMilli(), ext)
	case Gallery:
		if subject == "" {
			return fmt.Sprintf("3d-gallery-%s%s", orientation, ext)
		}
		return fmt.Sprintf("3d-gallery-%s-%s%s", orientation, slug(subject), ext)
	case Moment:
		return fmt.Sprintf("unspoken-moment-%s-%s%s", orientation, subject, ext)
	default:
		return fmt.Sprintf("memoria-collage-%d%s", now.UnixMilli(), ext)
	}
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// slug lowercases s and joins its whitespace-separated fields with dashes.
func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
