package lab

import "errors"

var (
	// ErrNotInitialized is returned by control calls made before Init.
	ErrNotInitialized = errors.New("lab: engine not initialized")
	// ErrInitFailed wraps the renderer or device error that stopped Init.
	ErrInitFailed = errors.New("lab: initialization failed")
	// ErrClosed is returned by control calls made after Close.
	ErrClosed = errors.New("lab: engine closed")
	// ErrPhaseOutOfRange is returned for phase values outside [0, 360].
	ErrPhaseOutOfRange = errors.New("lab: phase must be within [0, 360] degrees")
	// ErrUnknownProfile is returned for weighting profile names other than
	// flat, a, b, c or z.
	ErrUnknownProfile = errors.New("lab: unknown weighting profile")
	// ErrUnknownSource is returned for source kinds other than noise or tone.
	ErrUnknownSource = errors.New("lab: unknown source kind")
	// ErrInvalidFrequency is returned for tone frequencies outside
	// (0, nyquist).
	ErrInvalidFrequency = errors.New("lab: tone frequency must be within (0, nyquist)")
	// ErrInvalidGain is returned for master gains outside [0, 1].
	ErrInvalidGain = errors.New("lab: master gain must be within [0, 1]")
)
