package media

import "testing"

// TestDetectSubject checks the precedence faces > people keywords > scenery
// keywords > environment > object.
func TestDetectSubject(t *testing.T) {
	cases := []struct {
		name  string
		asset Asset
		want  Subject
	}{
		{"faces win", Asset{Name: "sunset.jpg", Metadata: &Metadata{Faces: 2}}, SubjectPeople},
		{"people keyword", Asset{Name: "Family_Dinner.png"}, SubjectPeople},
		{"scenery keyword", Asset{Name: "beach-day.jpg"}, SubjectScenery},
		{"environment tag", Asset{Name: "IMG_001.jpg", Metadata: &Metadata{Environment: "mountain"}}, SubjectScenery},
		{"indoor environment", Asset{Name: "IMG_002.jpg", Metadata: &Metadata{Environment: "indoor"}}, SubjectObject},
		{"nothing known", Asset{Name: "cup.jpg"}, SubjectObject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.asset.DetectSubject(); got != tc.want {
				t.Fatalf("DetectSubject(%q) = %s, want %s", tc.asset.Name, got, tc.want)
			}
		})
	}
}

// TestBaseNameAndImageSource covers extension stripping and the video
// thumbnail fallback.
func TestBaseNameAndImageSource(t *testing.T) {
	a := New("holiday.photo.jpeg", "/tmp/holiday.jpeg", 1024)
	if a.ID == "" {
		t.Fatal("New left the id empty")
	}
	if got := a.BaseName(); got != "holiday.photo" {
		t.Fatalf("BaseName = %q, want %q", got, "holiday.photo")
	}
	if got := a.ImageSource(); got != "/tmp/holiday.jpeg" {
		t.Fatalf("ImageSource = %q", got)
	}

	v := Asset{Kind: KindVideo, Source: "clip.mp4", Video: &Video{Duration: 3, Thumbnail: "clip.jpg"}}
	if got := v.ImageSource(); got != "clip.jpg" {
		t.Fatalf("video ImageSource = %q, want thumbnail", got)
	}
}

// TestEmotion returns the mood tag when present.
func TestEmotion(t *testing.T) {
	if got := (Asset{}).Emotion("happy"); got != "happy" {
		t.Fatalf("fallback = %q", got)
	}
	a := Asset{Metadata: &Metadata{Mood: "nostalgic"}}
	if got := a.Emotion("happy"); got != "nostalgic" {
		t.Fatalf("mood = %q", got)
	}
}
