//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Sink plays a [Source] on the default output device.
type Sink struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// Open creates the device context and a paused player pulling from src.
// Only one sink can exist per process.
func Open(src Source, opts Options) (*Sink, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, opts.SampleRate)
	}

	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	return &Sink{ctx: ctx, player: ctx.NewPlayer(r)}, nil
}

// Start begins playback. Starting a playing sink is a no-op.
func (s *Sink) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

// IsStarted reports whether playback is running.
func (s *Sink) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started
}

// Err returns the device error, if any.
func (s *Sink) Err() error {
	return s.ctx.Err()
}

// Close stops playback and releases the player. The device context stays
// alive until the process exits.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}

	err := s.player.Close()
	s.player = nil
	s.started = false

	return err
}
