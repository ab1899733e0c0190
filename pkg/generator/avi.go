// avi.go - Pure Go AVI writer using the Motion JPEG (MJPEG) video codec.
// AVI has better native MJPEG support on Windows than MP4, and each frame is
// an independent JPEG, so frames of any content can be appended.
package generator

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// DefaultFPS is the reel frame rate when none is given.
const DefaultFPS = 15

const (
	avifHasIndex   = 0x10
	aviifKeyframe  = 0x10
	avihSize       = 56
	strhSize       = 56
	strfSize       = 40
	strlListSize   = 4 + (8 + strhSize) + (8 + strfSize)
	hdrlListSize   = 4 + (8 + avihSize) + (8 + strlListSize)
	indexEntrySize = 16
)

// Reel collects JPEG-encoded frames and writes them as an MJPEG AVI.
// All frames must share the size of the first one.
type Reel struct {
	fps     int
	quality int
	width   int
	height  int

	chunks [][]byte // distinct encoded frames
	order  []int    // chunk index per frame
}

// NewReel returns an empty reel. Non-positive fps or quality use defaults.
func NewReel(fps, quality int) *Reel {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Reel{fps: fps, quality: qualityOrDefault(quality)}
}

// FPS reports the reel frame rate.
func (r *Reel) FPS() int { return r.fps }

// Len reports the number of frames added so far.
func (r *Reel) Len() int { return len(r.order) }

// AddFrame encodes img and appends it.
func (r *Reel) AddFrame(img image.Image) error {
	b := img.Bounds()
	if len(r.order) == 0 {
		r.width, r.height = b.Dx(), b.Dy()
	} else if b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame %d is %dx%d, reel is %dx%d", len(r.order), b.Dx(), b.Dy(), r.width, r.height)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	r.chunks = append(r.chunks, buf.Bytes())
	r.order = append(r.order, len(r.chunks)-1)
	return nil
}

// Repeat appends the previous frame again without re-encoding it.
func (r *Reel) Repeat() {
	if len(r.order) == 0 {
		return
	}
	r.order = append(r.order, r.order[len(r.order)-1])
}

// WriteTo writes the complete AVI file to w.
func (r *Reel) WriteTo(w io.Writer) (int64, error) {
	if len(r.order) == 0 {
		return 0, fmt.Errorf("reel has no frames")
	}

	total := uint32(len(r.order))
	var moviSize uint32 = 4
	var maxChunk uint32
	for _, ci := range r.order {
		moviSize += 8 + padded(len(r.chunks[ci]))
		maxChunk = max(maxChunk, uint32(len(r.chunks[ci])))
	}
	idx1Size := 8 + total*indexEntrySize
	fileSize := 4 + (8 + hdrlListSize) + (8 + moviSize) + idx1Size

	width, height := uint32(r.width), uint32(r.height)
	fps := uint32(r.fps)

	aw := &aviWriter{w: bufio.NewWriter(w)}

	// === RIFF Header ===
	aw.fourCC("RIFF")
	aw.u32(fileSize)
	aw.fourCC("AVI ")

	// === hdrl LIST ===
	aw.fourCC("LIST")
	aw.u32(hdrlListSize)
	aw.fourCC("hdrl")

	// === avih (Main AVI Header) ===
	aw.fourCC("avih")
	aw.u32(avihSize)
	aw.u32(1000000 / fps)  // microseconds per frame
	aw.u32(maxChunk * fps) // max bytes per sec
	aw.u32(0)              // padding granularity
	aw.u32(avifHasIndex)
	aw.u32(total)
	aw.u32(0) // initial frames
	aw.u32(1) // number of streams
	aw.u32(maxChunk)
	aw.u32(width)
	aw.u32(height)
	aw.u32(0) // reserved
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// === strl LIST (Stream List) ===
	aw.fourCC("LIST")
	aw.u32(strlListSize)
	aw.fourCC("strl")

	// === strh (Stream Header) ===
	aw.fourCC("strh")
	aw.u32(strhSize)
	aw.fourCC("vids")
	aw.fourCC("MJPG")
	aw.u32(0) // flags
	aw.u16(0) // priority
	aw.u16(0) // language
	aw.u32(0) // initial frames
	aw.u32(1) // scale
	aw.u32(fps)
	aw.u32(0) // start
	aw.u32(total)
	aw.u32(maxChunk)
	aw.u32(0) // quality
	aw.u32(0) // sample size
	aw.u16(0) // left
	aw.u16(0) // top
	aw.u16(uint16(width))
	aw.u16(uint16(height))

	// === strf (BITMAPINFOHEADER) ===
	aw.fourCC("strf")
	aw.u32(strfSize)
	aw.u32(strfSize)
	aw.u32(width)
	aw.u32(height)
	aw.u16(1)  // planes
	aw.u16(24) // bit count
	aw.fourCC("MJPG")
	aw.u32(width * height * 3)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// === movi LIST ===
	aw.fourCC("LIST")
	aw.u32(moviSize)
	aw.fourCC("movi")
	for _, ci := range r.order {
		data := r.chunks[ci]
		aw.fourCC("00dc")
		aw.u32(uint32(len(data)))
		aw.bytes(data)
		if len(data)%2 != 0 {
			aw.bytes([]byte{0})
		}
	}

	// === idx1 (Index) ===
	aw.fourCC("idx1")
	aw.u32(total * indexEntrySize)
	offset := uint32(4) // from the movi fourCC
	for _, ci := range r.order {
		n := len(r.chunks[ci])
		aw.fourCC("00dc")
		aw.u32(aviifKeyframe)
		aw.u32(offset)
		aw.u32(uint32(n))
		offset += 8 + padded(n)
	}

	if aw.err == nil {
		aw.err = aw.w.Flush()
	}
	if aw.err != nil {
		return aw.n, fmt.Errorf("write AVI: %w", aw.err)
	}
	return aw.n, nil
}

// WriteReel encodes frames into an MJPEG AVI on w.
func WriteReel(w io.Writer, frames []image.Image, fps, quality int) error {
	reel := NewReel(fps, quality)
	for _, img := range frames {
		if err := reel.AddFrame(img); err != nil {
			return err
		}
	}
	_, err := reel.WriteTo(w)
	return err
}

func padded(n int) uint32 {
	return uint32(n + n%2)
}

// aviWriter keeps the first write error so the header code stays linear.
type aviWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (a *aviWriter) bytes(p []byte) {
	if a.err != nil {
		return
	}
	n, err := a.w.Write(p)
	a.n += int64(n)
	a.err = err
}

func (a *aviWriter) fourCC(s string) { a.bytes([]byte(s)) }

func (a *aviWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.bytes(b[:])
}

func (a *aviWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	a.bytes(b[:])
}
