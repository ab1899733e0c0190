// Package media describes uploaded photos and videos as the compositor sees them.
//
// Assets are produced by an upload/analysis collaborator and never mutated here.
package media

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes stills from video clips.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Asset is one uploaded photo or video.
type Asset struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"` // path, URL or "store:<id>"
	Name       string    `json:"name" yaml:"name"`
	Size       int64     `json:"size" yaml:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt,omitempty"`
	Kind       Kind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Video      *Video    `json:"video,omitempty" yaml:"video,omitempty"`
}

// Metadata is the opaque analysis bag attached by an external tagger.
type Metadata struct {
	Location    string    `json:"location,omitempty" yaml:"location,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Faces       int       `json:"faces,omitempty" yaml:"faces,omitempty"`
	Mood        string    `json:"mood,omitempty" yaml:"mood,omitempty"`
	Environment string    `json:"environment,omitempty" yaml:"environment,omitempty"`
	Colors      []string  `json:"colors,omitempty" yaml:"colors,omitempty"`
	Objects     []string  `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// Video holds the extra fields of a clip.
type Video struct {
	Duration  float64 `json:"duration" yaml:"duration"` // seconds
	Thumbnail string  `json:"thumbnail" yaml:"thumbnail"`
}

// New creates a photo asset with a fresh id.
func New(name, source string, size int64) Asset {
	return Asset{
		ID:         uuid.NewString(),
		Source:     source,
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
		Kind:       KindPhoto,
	}
}

var videoExts = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".avi": true, ".mkv": true}

// KindOf guesses the kind of a file from its extension.
func KindOf(name string) Kind {
	if videoExts[strings.ToLower(filepath.Ext(name))] {
		return KindVideo
	}
	return KindPhoto
}

// BaseName returns the display name without its extension.
func (a Asset) BaseName() string {
	return strings.TrimSuffix(a.Name, filepath.Ext(a.Name))
}

// ImageSource returns the reference to decode when drawing the asset.
// Video clips are drawn from their still thumbnail.
func (a Asset) ImageSource() string {
	if a.Kind == KindVideo && a.Video != nil && a.Video.Thumbnail != "" {
		return a.Video.Thumbnail
	}
	return a.Source
}

// Emotion returns the mood tag, or fallback when none was attached.
func (a Asset) Emotion(fallback string) string {
	if a.Metadata != nil && a.Metadata.Mood != "" {
		return a.Metadata.Mood
	}
	return fallback
}

// Index maps asset ids to assets.
func Index(assets []Asset) map[string]Asset {
	m := make(map[string]Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m
}
