//go:build headless

package audio

import (
	"fmt"
	"sync"
	"time"
)

const nullPeriod = 10 * time.Millisecond

// Sink pulls a [Source] in real time and discards the output.
type Sink struct {
	mu      sync.Mutex
	r       *Reader
	rate    int
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open returns a paused null sink.
func Open(src Source, opts Options) (*Sink, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, opts.SampleRate)
	}

	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}

	return &Sink{r: r, rate: opts.SampleRate}, nil
}

// Start begins pulling frames every 10 ms.
func (s *Sink) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.started = true
	s.done = make(chan struct{})
	buf := make([]byte, bytesPerSample*s.rate*int(nullPeriod)/int(time.Second))

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		tick := time.NewTicker(nullPeriod)
		defer tick.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-tick.C:
				_, _ = s.r.Read(buf)
			}
		}
	}()
}

// IsStarted reports whether the sink is pulling frames.
func (s *Sink) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started
}

// Err always returns nil.
func (s *Sink) Err() error {
	return nil
}

// Close stops pulling frames.
func (s *Sink) Close() error {
	s.mu.Lock()

	if s.started {
		close(s.done)
		s.started = false
	}

	s.mu.Unlock()
	s.wg.Wait()

	return nil
}
