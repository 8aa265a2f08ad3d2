// Package noise synthesizes the looped pink-noise buffer the lab plays as
// its broadband excitation.
//
// The coloring filter is Paul Kellet's refined pink-noise approximation: six
// parallel leaky integrators plus a one-sample feedthrough term, driven by a
// white-noise stream in [-1, 1]. The buffer is generated once and shared
// read-only by every source node that loops it. Seamless looping comes from
// the buffer length (two seconds), not from periodicity.
package noise
