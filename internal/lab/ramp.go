package lab

import "time"

const (
	// RampWindow is the duration of ANC gain and delay ramps.
	RampWindow = 100 * time.Millisecond
	// MasterRampWindow is the duration of master volume ramps.
	MasterRampWindow = 20 * time.Millisecond
)

// atomicRamper is implemented by params that can re-anchor and ramp in a
// single step against a concurrently running clock.
type atomicRamper interface {
	RampTo(target, windowSeconds float64)
}

// scheduleRamp moves p linearly from its value at the current clock time to
// target over window. Pending automation is replaced, so the curve stays
// continuous when a ramp is retargeted mid-flight.
func scheduleRamp(r Renderer, p Param, target float64, window time.Duration) {
	if a, ok := p.(atomicRamper); ok {
		a.RampTo(target, window.Seconds())
		return
	}

	now := r.CurrentTime()
	from := p.ValueAt(now)

	p.CancelScheduledValues(now)
	p.SetValueAtTime(from, now)
	p.LinearRampToValueAtTime(target, now+window.Seconds())
}
