package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// ErrNilSource is returned when a sink or reader is created without a source.
var ErrNilSource = errors.New("audio: nil source")

// ErrInvalidSampleRate is returned for non-positive device rates.
var ErrInvalidSampleRate = errors.New("audio: sample rate must be positive")

const bytesPerSample = 4

// Source produces mono frames. Render is called from the device goroutine
// only.
type Source interface {
	Render(dst []float32)
}

// Options configures a device sink.
type Options struct {
	SampleRate int

	// BufferSize is the device buffer duration. Zero lets the driver pick.
	BufferSize time.Duration
}

// Reader adapts a [Source] to io.Reader, emitting float32 little-endian
// samples. Requests that are not a multiple of four bytes are served from a
// carried-over sample.
type Reader struct {
	src     Source
	samples []float32

	pending [bytesPerSample]byte
	npend   int
}

// NewReader returns a Reader pulling from src.
func NewReader(src Source) (*Reader, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	return &Reader{src: src}, nil
}

// Read fills p completely and never returns an error.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0

	if r.npend > 0 {
		c := copy(p, r.pending[bytesPerSample-r.npend:])
		r.npend -= c
		n += c
	}

	frames := (len(p) - n) / bytesPerSample
	if frames > 0 {
		if cap(r.samples) < frames {
			r.samples = make([]float32, frames)
		}

		samples := r.samples[:frames]
		r.src.Render(samples)

		for _, s := range samples {
			binary.LittleEndian.PutUint32(p[n:], math.Float32bits(s))
			n += bytesPerSample
		}
	}

	if rest := len(p) - n; rest > 0 {
		var one [1]float32

		r.src.Render(one[:])
		binary.LittleEndian.PutUint32(r.pending[:], math.Float32bits(one[0]))
		copy(p[n:], r.pending[:rest])
		n += rest
		r.npend = bytesPerSample - rest
	}

	return n, nil
}
