package artifact

import (
	"bytes"
	"context"
	"errors"
	"image"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/xob0t/memoria/pkg/media"
)

func TestParseEffectAndAspect(t *testing.T) {
	if e, err := ParseEffect(""); err != nil || e != EffectSparkles {
		t.Errorf(`ParseEffect("") = %q, %v`, e, err)
	}
	if e, err := ParseEffect("zoom-breath"); err != nil || e != EffectBreathing {
		t.Errorf("ParseEffect(zoom-breath) = %q, %v", e, err)
	}
	if _, err := ParseEffect("wobble"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("wobble err = %v", err)
	}

	sizes := map[Aspect][2]float64{
		AspectWide:   {1920, 1080},
		AspectTall:   {1080, 1920},
		AspectSquare: {1080, 1080},
	}
	for a, want := range sizes {
		got, err := ParseAspect(string(a))
		if err != nil || got != a {
			t.Fatalf("ParseAspect(%q) = %q, %v", a, got, err)
		}
		if w, h := a.Size(); w != want[0] || h != want[1] {
			t.Errorf("%s size = %vx%v, want %v", a, w, h, want)
		}
	}
	if a, err := ParseAspect(""); err != nil || a != AspectWide {
		t.Errorf(`ParseAspect("") = %q, %v`, a, err)
	}
	if _, err := ParseAspect("4:3"); !errors.Is(err, ErrUnknownAspect) {
		t.Errorf("4:3 err = %v", err)
	}
}

func TestEffectCurves(t *testing.T) {
	lids := 0
	for i := range effectLoop {
		tm := float64(i) / effectLoop * 2 * math.Pi
		if s := HeartbeatScale(tm); s < 1 || s > 1.05 {
			t.Fatalf("heartbeat scale %v at %v", s, tm)
		}
		b := BlinkIntensity(tm)
		if b < 0 || b > 0.3 {
			t.Fatalf("blink intensity %v at %v", b, tm)
		}
		if b > 0.2 {
			lids++
		}
	}
	if lids == 0 || lids == effectLoop {
		t.Errorf("eyelids shown on %d of %d frames", lids, effectLoop)
	}
}

func TestAnimate(t *testing.T) {
	g := testGenerator(0.05)
	ctx := context.Background()
	photos := []media.Asset{asset("a", "a.jpg"), {ID: "x", Name: "x.jpg", Source: "missing"}, asset("b", "b.jpg")}

	for _, e := range Effects {
		r, err := g.Animate(ctx, Animation{Photos: photos, Effect: e, Aspect: AspectTall, Seed: 9})
		if err != nil {
			t.Fatalf("Animate(%s): %v", e, err)
		}
		if len(r.Warnings) != 1 {
			t.Errorf("%s warnings = %v", e, r.Warnings)
		}
		if r.Len() != DefaultReelSeconds*DefaultReelFPS || r.FPS() != DefaultReelFPS {
			t.Errorf("%s: %d frames at %d fps", e, r.Len(), r.FPS())
		}
		img, err := r.Frame(r.Len() - 1)
		if err != nil {
			t.Fatalf("%s frame: %v", e, err)
		}
		if b := img.Bounds(); b.Dx() != 54 || b.Dy() != 96 {
			t.Errorf("%s frame size = %v", e, b)
		}
	}

	r, err := g.Animate(ctx, Animation{Photos: photos, Duration: 2, FPS: 10})
	if err != nil {
		t.Fatal(err)
	}
	// Two loaded photos over 20 frames: ten frames each.
	for i, want := range map[int]int{0: 0, 9: 0, 10: 1, 19: 1} {
		if got := r.PhotoAt(i); got != want {
			t.Errorf("PhotoAt(%d) = %d, want %d", i, got, want)
		}
	}
	if _, err := r.Frame(20); err == nil {
		t.Error("frame past the end should fail")
	}

	var buf bytes.Buffer
	if err := r.WriteAVI(ctx, &buf, 80); err != nil {
		t.Fatalf("WriteAVI: %v", err)
	}
	if data := buf.Bytes(); string(data[:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Errorf("not an AVI: % x", data[:12])
	}
	if got := r.Filename(".avi"); got != "ai-memory-reel-1720958400000.avi" {
		t.Errorf("filename = %q", got)
	}
}

func TestAnimateErrors(t *testing.T) {
	g := testGenerator(0.05)
	ctx := context.Background()
	one := []media.Asset{asset("a", "a.jpg")}

	if _, err := g.Animate(ctx, Animation{}); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("empty reel err = %v", err)
	}
	if _, err := g.Animate(ctx, Animation{Photos: one, Effect: "spin"}); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("bad effect err = %v", err)
	}
	if _, err := g.Animate(ctx, Animation{Photos: one, Aspect: "2:1"}); !errors.Is(err, ErrUnknownAspect) {
		t.Errorf("bad aspect err = %v", err)
	}
	if _, err := g.Animate(ctx, Animation{Photos: one, Duration: MaxReelSeconds + 1}); !errors.Is(err, ErrReelTooLong) {
		t.Errorf("overlong reel err = %v", err)
	}
	broken := []media.Asset{{ID: "x", Source: "missing"}}
	if _, err := g.Animate(ctx, Animation{Photos: broken}); !errors.Is(err, errMissing) {
		t.Errorf("all photos broken err = %v", err)
	}
}

func TestGalleryLayout(t *testing.T) {
	for _, mode := range GalleryModes {
		for _, n := range []int{1, 4, 9} {
			cards := GalleryLayout(mode, n, 37)
			want := n
			if mode == ModeCube {
				want = min(n, MaxCubeFaces)
			}
			if len(cards) != want {
				t.Fatalf("%s/%d: %d cards", mode, n, len(cards))
			}
			seen := map[int]bool{}
			for i, c := range cards {
				if i > 0 && c.Z < cards[i-1].Z {
					t.Errorf("%s/%d: card %d drawn before a farther one", mode, n, i)
				}
				if c.Opacity <= 0 || c.Opacity > 1 || c.Scale <= 0 {
					t.Errorf("%s/%d: card %+v", mode, n, c)
				}
				seen[c.Index] = true
			}
			if len(seen) != want {
				t.Errorf("%s/%d: indexes %v", mode, n, seen)
			}
		}
	}

	// Frame 0 of a four photo carousel puts photo 1 at 90 degrees, nearest
	// the viewer.
	cards := GalleryLayout(ModeCarousel, 4, 0)
	front := cards[len(cards)-1]
	if !front.Front || front.Index != 1 {
		t.Errorf("front card = %+v", front)
	}
	for _, c := range cards[:len(cards)-1] {
		if c.Front {
			t.Errorf("second front card %+v", c)
		}
	}
	if math.Abs(front.X-GalleryWidth/2) > 20 {
		t.Errorf("front card off centre at x=%v", front.X)
	}
}

func TestGallery(t *testing.T) {
	g := testGenerator(0.05)
	ctx := context.Background()
	photos := []media.Asset{asset("a", "a.jpg"), {ID: "x", Source: "missing"}, asset("b", "b.jpg"), asset("c", "c.jpg")}

	for _, mode := range GalleryModes {
		r, err := g.Gallery(ctx, Gallery{Photos: photos, Mode: mode, Seed: 4})
		if err != nil {
			t.Fatalf("Gallery(%s): %v", mode, err)
		}
		if len(r.Warnings) != 1 || len(r.images) != 3 {
			t.Errorf("%s: %d photos, warnings %v", mode, len(r.images), r.Warnings)
		}
		img, err := r.Frame(GalleryFrames / 3)
		if err != nil {
			t.Fatalf("%s frame: %v", mode, err)
		}
		if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 54 {
			t.Errorf("%s frame size = %v", mode, b)
		}
		if got, want := r.Filename(".jpg"), "3d-gallery-"+string(mode)+"-preview.jpg"; got != want {
			t.Errorf("preview filename = %q, want %q", got, want)
		}
	}

	r, err := g.Gallery(ctx, Gallery{Photos: photos[:1], Mode: ModeSphere})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	var buf bytes.Buffer
	if err := r.WriteAVI(ctx, &buf, 0, 70); err != nil {
		t.Fatalf("WriteAVI: %v", err)
	}
	if string(buf.Bytes()[:4]) != "RIFF" {
		t.Error("not an AVI")
	}
	if got := r.Filename(".avi"); got != "3d-gallery-sphere.avi" {
		t.Errorf("reel filename = %q", got)
	}
	err = r.Frames(ctx, func(int, image.Image) error { count++; return nil })
	if err != nil || count != GalleryFrames {
		t.Errorf("Frames delivered %d, err %v", count, err)
	}
}

func TestGalleryErrors(t *testing.T) {
	g := testGenerator(0.05)
	ctx := context.Background()
	if _, err := g.Gallery(ctx, Gallery{}); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("empty gallery err = %v", err)
	}
	if _, err := g.Gallery(ctx, Gallery{Photos: []media.Asset{asset("a", "a.jpg")}, Mode: "torus"}); !errors.Is(err, ErrUnknownGalleryMode) {
		t.Errorf("bad mode err = %v", err)
	}

	many := make([]media.Asset, 10)
	for i := range many {
		many[i] = asset(string(rune('a'+i)), "p.jpg")
	}
	r, err := g.Gallery(ctx, Gallery{Photos: many, Mode: ModeCube})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.images) != MaxCubeFaces {
		t.Errorf("cube holds %d photos", len(r.images))
	}
}

func TestPortraitCrop(t *testing.T) {
	b := image.Rect(0, 0, 1000, 500)
	for _, mt := range MomentTypes {
		c := PortraitCrop(mt)
		if c.X+c.W > 1 || c.Y+c.H > 1 {
			t.Errorf("%s crop %+v leaves the frame", mt, c)
		}
		if r := c.Rect(b); !r.In(b) || r.Empty() {
			t.Errorf("%s rect %v not inside %v", mt, r, b)
		}
	}
	if got := PortraitCrop(MomentEmotional).Rect(b); got != image.Rect(300, 125, 700, 425) {
		t.Errorf("emotional peak rect = %v", got)
	}
	if PortraitCrop("") != PortraitCrop(MomentGesture) {
		t.Error("unknown types should use the gesture crop")
	}
	if got := MomentLighting.Label(); got != "LIGHTING SHIFT" {
		t.Errorf("label = %q", got)
	}
}

func TestMomentBox(t *testing.T) {
	for _, aspect := range []float64{0.3, 0.5, 0.75, 0.8, 1, 16.0 / 9, 3} {
		x, y, w, h := MomentBox(aspect)
		if x < 0 || y < 0 || x+w > MomentWidth || y+h > MomentHeight*0.8 {
			t.Errorf("aspect %v: box %v,%v %vx%v leaves room", aspect, x, y, w, h)
		}
		if math.Abs(w/h-aspect) > 1e-9 {
			t.Errorf("aspect %v drawn at %v", aspect, w/h)
		}
	}
	if _, y, _, h := MomentBox(0.78); y != MomentHeight*0.15 || h != MomentHeight*0.6 {
		t.Errorf("0.78 crop at y=%v h=%v", y, h)
	}
	if x, _, w, _ := MomentBox(1); w != momentMaxWidth || x != (MomentWidth-momentMaxWidth)/2 {
		t.Errorf("square crop at x=%v w=%v", x, w)
	}
}

func TestClipTime(t *testing.T) {
	for sec, want := range map[float64]string{0: "0:00", 5.9: "0:05", 65: "1:05", 600: "10:00", -3: "0:00"} {
		if got := ClipTime(sec); got != want {
			t.Errorf("ClipTime(%v) = %q, want %q", sec, got, want)
		}
	}
}

func TestMoment(t *testing.T) {
	g := testGenerator(0.05)
	ctx := context.Background()

	clip := media.Asset{
		ID: "v", Name: "party.mp4", Source: "mem:v", Kind: media.KindVideo,
		Video: &media.Video{Duration: 90, Thumbnail: "mem:v-thumb"},
	}
	out, err := g.Moment(ctx, Moment{Photo: clip, Type: MomentMovement, Timestamp: 65, Seed: 2})
	if err != nil {
		t.Fatalf("Moment: %v", err)
	}
	if b := out.Image.Bounds(); b.Dx() != 54 || b.Dy() != 96 {
		t.Errorf("size = %v", b)
	}
	if out.Filename != "unspoken-moment-movement_peak-1m05s.png" {
		t.Errorf("filename = %q", out.Filename)
	}

	if _, err := g.Moment(ctx, Moment{}); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("empty moment err = %v", err)
	}
	if _, err := g.Moment(ctx, Moment{Photo: clip, Type: "blink"}); !errors.Is(err, ErrUnknownMomentType) {
		t.Errorf("bad type err = %v", err)
	}
	if _, err := g.Moment(ctx, Moment{Photo: media.Asset{ID: "x", Source: "missing"}}); !errors.Is(err, errMissing) {
		t.Errorf("broken photo err = %v", err)
	}
}

func TestFillMoment(t *testing.T) {
	clip := media.Asset{ID: "v", Kind: media.KindVideo, Video: &media.Video{Duration: 60}}
	for seed := int64(1); seed <= 20; seed++ {
		m := fillMoment(Moment{Photo: clip, Seed: seed}, rand.New(rand.NewSource(seed)))
		if _, err := ParseMomentType(string(m.Type)); err != nil || m.Type == "" {
			t.Fatalf("seed %d type %q", seed, m.Type)
		}
		if m.Caption == "" || !contains(MomentEmotions, m.Emotion) {
			t.Errorf("seed %d caption %q emotion %q", seed, m.Caption, m.Emotion)
		}
		if m.Confidence < 0.85 || m.Confidence > 0.99 {
			t.Errorf("seed %d confidence %v", seed, m.Confidence)
		}
		if m.Timestamp < 5 || m.Timestamp > 55 {
			t.Errorf("seed %d timestamp %v", seed, m.Timestamp)
		}
	}

	moody := media.Asset{ID: "p", Metadata: &media.Metadata{Mood: "calm"}}
	m := fillMoment(Moment{Photo: moody, Caption: "Kept", Confidence: 1.4}, rand.New(rand.NewSource(1)))
	if m.Emotion != "calm" || m.Caption != "Kept" || m.Confidence != 1 || m.Timestamp != 0 {
		t.Errorf("filled = %+v", m)
	}
	if !strings.Contains(strings.Join(momentCaptions, "|"), PickMomentCaption(rand.New(rand.NewSource(3)))) {
		t.Error("caption outside the pool")
	}
}
