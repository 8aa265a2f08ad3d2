package main

import (
	"errors"
	"fmt"

	"github.com/cwbudde/acoustics-lab/dsp/render"
	"github.com/cwbudde/acoustics-lab/internal/audio"
	"github.com/cwbudde/acoustics-lab/internal/config"
	"github.com/cwbudde/acoustics-lab/internal/lab"
)

// deviceRenderer is the software renderer played on the output device.
// Closing it stops the device before the render context.
type deviceRenderer struct {
	*lab.Software
	sink *audio.Sink
}

func (d *deviceRenderer) Close() error {
	return errors.Join(d.sink.Close(), d.Software.Close())
}

// deviceFactory opens the render context and the device sink for cfg. A
// device failure surfaces from Engine.Init as lab.ErrInitFailed.
func deviceFactory(cfg config.AudioConfig) lab.Factory {
	return func() (lab.Renderer, error) {
		ctx, err := render.NewContext(float64(cfg.SampleRate))
		if err != nil {
			return nil, err
		}

		sink, err := audio.Open(ctx, audio.Options{
			SampleRate: cfg.SampleRate,
			BufferSize: cfg.BufferSize,
		})
		if err != nil {
			_ = ctx.Close()
			return nil, fmt.Errorf("open output: %w", err)
		}

		sink.Start()

		return &deviceRenderer{Software: lab.NewSoftware(ctx), sink: sink}, nil
	}
}
