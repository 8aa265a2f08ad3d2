package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/cwbudde/acoustics-lab/internal/lab"
	"github.com/cwbudde/acoustics-lab/stats/level"
)

// errQuit ends the program when the user leaves the TUI.
var errQuit = errors.New("quit")

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colRed    = termbox.ColorRed
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colCyan   = termbox.ColorCyan
)

// phaseChoices are the phase presets the p key cycles through.
var phaseChoices = []float64{lab.PerfectPhase, 160, 90}

// Controller is the engine surface the TUI drives.
type Controller interface {
	Status() lab.Status
	SetSourceKind(kind lab.SourceKind) error
	SetFrequency(hz float64) error
	SetWeighting(p lab.Profile) (lab.GraphHandle, error)
	StartWeightingDemo() error
	StartANCDemo() error
	StopAll() error
	ToggleANC(enabled bool) error
	SetPhase(degrees float64) error
	SetLatency(enabled bool) error
	SetMasterGain(g float64) error
}

type tuiState struct {
	ctrl    Controller
	exit    bool
	lastErr error
}

func runTUI(ctx context.Context, e *lab.Engine, refresh time.Duration) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := &tuiState{ctrl: e}

	events := make(chan termbox.Event)

	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}

			events <- ev
		}
	}()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	taps := e.Taps()
	draw(state, taps)

	for !state.exit {
		select {
		case <-ctx.Done():
			termbox.Interrupt()
			for range events {
			}

			return nil
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, state)
			case termbox.EventError:
				return fmt.Errorf("terminal: %w", ev.Err)
			}

			draw(state, taps)
		case <-ticker.C:
			draw(state, taps)
		}
	}

	termbox.Interrupt()
	for range events {
	}

	return errQuit
}

// handleKey maps a key press to a control call. The outcome of the last
// call is kept for the status line.
func handleKey(ev termbox.Event, s *tuiState) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.exit = true
		return
	}

	st := s.ctrl.Status()

	var err error

	switch ev.Key {
	case termbox.KeyArrowUp:
		err = s.ctrl.SetMasterGain(math.Min(1, st.MasterGain+0.05))
	case termbox.KeyArrowDown:
		err = s.ctrl.SetMasterGain(math.Max(0, st.MasterGain-0.05))
	case termbox.KeySpace:
		err = s.ctrl.ToggleANC(!st.ANC.ANCEnabled)
	}

	switch ev.Ch {
	case 'w':
		err = s.ctrl.StartWeightingDemo()
	case 'a':
		err = s.ctrl.StartANCDemo()
	case 's':
		err = s.ctrl.StopAll()
	case '0', '1', '2', '3':
		_, err = s.ctrl.SetWeighting(lab.Profiles[ev.Ch-'0'])
	case 'n':
		err = s.ctrl.SetSourceKind(lab.SourceNoise)
	case 't':
		err = s.ctrl.SetSourceKind(lab.SourceTone)
	case '+':
		err = s.ctrl.SetFrequency(st.Frequency * math.Pow(2, 1.0/6))
	case '-':
		err = s.ctrl.SetFrequency(st.Frequency / math.Pow(2, 1.0/6))
	case 'p':
		err = s.ctrl.SetPhase(nextPhase(st.ANC.PhaseDegrees))
	case 'l':
		err = s.ctrl.SetLatency(!st.ANC.LatencyEnabled)
	}

	s.lastErr = err
}

// nextPhase returns the preset after phase, wrapping around.
func nextPhase(phase float64) float64 {
	for i, p := range phaseChoices {
		if p == phase {
			return phaseChoices[(i+1)%len(phaseChoices)]
		}
	}

	return phaseChoices[0]
}

var helpLines = []string{
	"w weighting demo   a ANC demo   s stop   q/Esc quit",
	"0-3 profile flat/A/B/C   n/t noise/tone   +/- tone ±1/6 oct",
	"space ANC on/off   p phase 180/160/90   l latency   ↑/↓ volume",
}

func draw(s *tuiState, taps []*lab.Tap) {
	_ = termbox.Clear(colDef, colDef)

	w, h := termbox.Size()
	st := s.ctrl.Status()

	printTB(0, 0, colCyan, colDef, "acoustics-lab: frequency weighting and noise cancellation")

	for i, line := range helpLines {
		printTB(0, 1+i, colDef, colDef, line)
	}

	printTB(0, 5, colWhite, colDef, statusLine(st))
	printTB(0, 6, colWhite, colDef, ancLine(st))

	if s.lastErr != nil {
		printTB(0, 7, colRed, colDef, s.lastErr.Error())
	}

	const top = 9

	switch st.Mode {
	case lab.ModeWeighting:
		drawSpectrum(0, top, w, h-top, taps[0], colGreen)
	case lab.ModeANC:
		rows := (h - top) / 3
		for i, col := range []termbox.Attribute{colYellow, colRed, colGreen} {
			drawSpectrum(0, top+i*rows, w, rows, taps[1+i], col)
		}
	}

	termbox.Flush()
}

func statusLine(st lab.Status) string {
	playing := "stopped"
	if st.Playing {
		playing = "playing"
	}

	return fmt.Sprintf("mode %-9s %s  profile %s (%d stages)  source %s @ %.0f Hz  volume %.2f",
		st.Mode, playing, st.Profile.Label(), len(st.Stages), st.Source, st.Frequency, st.MasterGain)
}

func ancLine(st lab.Status) string {
	running := "stopped"
	if st.ANC.Running {
		running = "running"
	}

	anc := "off"
	if st.ANC.ANCEnabled {
		anc = "on"
	}

	return fmt.Sprintf("anc %s, cancellation %s  phase %.0f°  latency %v  delay %s",
		running, anc, st.ANC.PhaseDegrees, st.ANC.LatencyEnabled, st.ANC.Delay())
}

// drawSpectrum draws a tap as vertical bars on a log frequency axis, with
// the tap name in the first row.
func drawSpectrum(x, y, w, h int, tap *lab.Tap, color termbox.Attribute) {
	if h < 2 || w < 1 {
		return
	}

	printTB(x, y, color, colDef, tapLabel(tap.Name(), tap.Level()))

	for i, height := range barHeights(tap.FrequencyData(), w, h-1) {
		for row := range height {
			termbox.SetCell(x+i, y+h-1-row, '█', color, colDef)
		}
	}
}

func tapLabel(name string, lvl level.Stats) string {
	return fmt.Sprintf("%s  rms %.1f dB  peak %.1f dB", name, lvl.RMSDB(), lvl.PeakDB())
}

// barHeights maps spectrum bytes onto width columns with logarithmic
// spacing and scales each column to at most height cells.
func barHeights(bytes []byte, width, height int) []int {
	out := make([]int, width)
	if len(bytes) < 2 || width <= 0 || height <= 0 {
		return out
	}

	bins := float64(len(bytes))

	for i := range out {
		lo := int(math.Pow(bins, float64(i)/float64(width)))
		hi := int(math.Pow(bins, float64(i+1)/float64(width)))
		hi = max(hi, lo+1)
		hi = min(hi, len(bytes))

		peak := byte(0)
		for _, b := range bytes[min(lo, len(bytes)-1):hi] {
			peak = max(peak, b)
		}

		out[i] = int(peak) * height / 255
	}

	return out
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
