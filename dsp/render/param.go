package render

import (
	"slices"
	"sync"

	"github.com/cwbudde/acoustics-lab/dsp/core"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventLinearRamp
)

type event struct {
	kind  eventKind
	value float64
	time  float64
}

// Param is an automatable node parameter. Scheduled events are evaluated
// against the context clock in seconds.
type Param struct {
	mu *sync.Mutex

	name     string
	minValue float64
	maxValue float64

	// value is the intrinsic value at the last rendered frame.
	value float64
	// anchor is where a ramp without a pending predecessor starts.
	anchorValue float64
	anchorTime  float64
	events      []event

	clock func() float64
}

func newParam(mu *sync.Mutex, clock func() float64, name string, value, minValue, maxValue float64) *Param {
	return &Param{
		mu:          mu,
		clock:       clock,
		name:        name,
		minValue:    minValue,
		maxValue:    maxValue,
		value:       value,
		anchorValue: value,
	}
}

// Name returns the parameter name.
func (p *Param) Name() string {
	return p.name
}

// Value returns the value at the current clock time.
func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.valueAt(p.clock())
}

// ValueAt returns the scheduled value at time t (seconds), including
// events that have not been rendered yet.
func (p *Param) ValueAt(t float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.valueAt(t)
}

// SetValue sets the value immediately, dropping any scheduled events.
func (p *Param) SetValue(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	p.events = p.events[:0]
	p.value = v
	p.anchorValue = v
	p.anchorTime = now
}

// SetValueAtTime schedules a step to v at time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.insert(event{kind: eventSet, value: v, time: t})
}

// LinearRampToValueAtTime schedules a linear ramp that reaches v at time t.
// The ramp starts at the preceding event, or at the current value and clock
// time when no event is pending.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.insert(event{kind: eventLinearRamp, value: v, time: t})
}

// CancelScheduledValues removes every event scheduled at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = slices.DeleteFunc(p.events, func(ev event) bool { return ev.time >= t })
}

// RampTo replaces pending automation with a linear ramp from the current
// value to v, ending window seconds from now. The read of the current value
// and the rescheduling happen under one lock, so a concurrent Render cannot
// slip in between.
func (p *Param) RampTo(v, window float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	from := p.valueAt(now)

	p.events = slices.DeleteFunc(p.events, func(ev event) bool { return ev.time >= now })
	p.insert(event{kind: eventSet, value: from, time: now})
	p.insert(event{kind: eventLinearRamp, value: v, time: now + window})
}

// insert adds ev keeping events ordered by time; equal times keep call order.
func (p *Param) insert(ev event) {
	if len(p.events) == 0 {
		now := p.clock()
		p.anchorValue = p.valueAt(now)
		p.anchorTime = now
	}

	i := len(p.events)
	for i > 0 && p.events[i-1].time > ev.time {
		i--
	}

	p.events = slices.Insert(p.events, i, ev)
}

// valueAt evaluates the automation timeline at time t. Caller holds mu.
func (p *Param) valueAt(t float64) float64 {
	if len(p.events) == 0 {
		return p.clamp(p.value)
	}

	prevValue, prevTime := p.anchorValue, p.anchorTime
	cur := p.value

	for _, ev := range p.events {
		if ev.time > t {
			if ev.kind == eventLinearRamp && ev.time > prevTime {
				frac := (t - prevTime) / (ev.time - prevTime)
				frac = core.Clamp(frac, 0, 1)

				return p.clamp(prevValue + (ev.value-prevValue)*frac)
			}

			return p.clamp(cur)
		}

		cur = ev.value
		prevValue, prevTime = ev.value, ev.time
	}

	return p.clamp(cur)
}

// fill writes the value for each frame starting at time start into dst and
// consumes events that end within the block. Caller holds mu.
func (p *Param) fill(dst []float64, start, step float64) {
	if len(p.events) == 0 {
		v := p.clamp(p.value)
		for i := range dst {
			dst[i] = v
		}

		return
	}

	for i := range dst {
		dst[i] = p.valueAt(start + float64(i)*step)
	}

	p.advance(start + float64(len(dst))*step)
}

// kRate returns the value at time t and consumes events that end by then.
// Caller holds mu.
func (p *Param) kRate(t float64) float64 {
	v := p.valueAt(t)
	p.advance(t)

	return v
}

// advance consumes events at or before t. Caller holds mu.
func (p *Param) advance(t float64) {
	p.value = p.valueAt(t)

	n := 0
	for n < len(p.events) && p.events[n].time <= t {
		p.anchorValue = p.events[n].value
		p.anchorTime = p.events[n].time
		n++
	}

	if n > 0 {
		p.events = slices.Delete(p.events, 0, n)
	}

	if len(p.events) == 0 {
		p.anchorValue = p.value
		p.anchorTime = t
	}
}

func (p *Param) clamp(v float64) float64 {
	return core.Clamp(v, p.minValue, p.maxValue)
}
