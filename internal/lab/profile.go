package lab

import (
	"fmt"
	"strings"

	"github.com/cwbudde/acoustics-lab/dsp/filter/biquad"
	"github.com/cwbudde/acoustics-lab/dsp/filter/design"
	"github.com/cwbudde/acoustics-lab/dsp/filter/weighting"
)

// StageSpec describes one biquad stage of a weighting cascade.
type StageSpec struct {
	Kind      design.Type
	Frequency float64
	Q         float64
	GainDB    float64
}

// String formats the stage like "peaking(2500 Hz, Q 0.5, +3 dB)".
func (s StageSpec) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s(%g Hz", s.Kind, s.Frequency)

	if s.Kind.UsesQ() {
		fmt.Fprintf(&b, ", Q %g", s.Q)
	}

	if s.Kind.UsesGain() {
		fmt.Fprintf(&b, ", %+g dB", s.GainDB)
	}

	b.WriteByte(')')

	return b.String()
}

// Coefficients designs the stage at sampleRate.
func (s StageSpec) Coefficients(sampleRate float64) (biquad.Coefficients, error) {
	return design.Design(s.Kind, s.Frequency, s.Q, s.GainDB, sampleRate)
}

// Profile selects a weighting cascade.
type Profile int

const (
	ProfileFlat Profile = iota
	ProfileA
	ProfileB
	ProfileC
)

// Profiles lists every profile in display order.
var Profiles = []Profile{ProfileFlat, ProfileA, ProfileB, ProfileC}

var profileStages = map[Profile][]StageSpec{
	ProfileFlat: nil,
	ProfileA: {
		{Kind: design.TypeHighpass, Frequency: 300, Q: 0.5},
		{Kind: design.TypeHighShelf, Frequency: 100, GainDB: -20},
		{Kind: design.TypePeaking, Frequency: 2500, Q: 0.5, GainDB: 3},
		{Kind: design.TypeLowpass, Frequency: 10000, Q: 0.5},
	},
	ProfileB: {
		{Kind: design.TypeHighpass, Frequency: 60, Q: 0.5},
		{Kind: design.TypeHighShelf, Frequency: 100, GainDB: -10},
		{Kind: design.TypeLowpass, Frequency: 12000, Q: 0.5},
	},
	ProfileC: {
		{Kind: design.TypeHighpass, Frequency: 31.5, Q: 0.5},
		{Kind: design.TypeLowpass, Frequency: 8000, Q: 0.5},
	},
}

// ParseProfile accepts flat, a, b, c and z (an alias of flat), in any case.
func ParseProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flat", "z":
		return ProfileFlat, nil
	case "a":
		return ProfileA, nil
	case "b":
		return ProfileB, nil
	case "c":
		return ProfileC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

func (p Profile) String() string {
	switch p {
	case ProfileFlat:
		return "flat"
	case ProfileA:
		return "a"
	case ProfileB:
		return "b"
	case ProfileC:
		return "c"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// Label returns the display name, e.g. "A-weighting".
func (p Profile) Label() string {
	if p == ProfileFlat {
		return "Flat (Z)"
	}

	return strings.ToUpper(p.String()) + "-weighting"
}

// Valid reports whether p is one of the defined profiles.
func (p Profile) Valid() bool {
	_, ok := profileStages[p]

	return ok
}

// Stages returns a copy of the cascade for p, input side first.
func (p Profile) Stages() []StageSpec {
	return append([]StageSpec(nil), profileStages[p]...)
}

// ResponseDB returns the cascade magnitude in dB at each frequency.
func (p Profile) ResponseDB(freqs []float64, sampleRate float64) ([]float64, error) {
	stages := profileStages[p]
	coeffs := make([]biquad.Coefficients, 0, len(stages))

	for _, s := range stages {
		c, err := s.Coefficients(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s stage %s: %w", p, s, err)
		}

		coeffs = append(coeffs, c)
	}

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = biquad.CascadeMagnitudeDB(coeffs, f, sampleRate)
	}

	return out, nil
}

// ReferenceDB returns the IEC 61672 curve the profile approximates,
// normalized to 0 dB at 1 kHz. Flat maps to the Z curve.
func (p Profile) ReferenceDB(freqs []float64) []float64 {
	return weighting.Curve(p.weightingType(), freqs)
}

func (p Profile) weightingType() weighting.Type {
	switch p {
	case ProfileA:
		return weighting.TypeA
	case ProfileB:
		return weighting.TypeB
	case ProfileC:
		return weighting.TypeC
	default:
		return weighting.TypeZ
	}
}
