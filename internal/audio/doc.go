// Package audio plays a rendered mono signal on the default output device.
//
// The device callback pulls frames through [Reader], which converts the
// renderer's float32 output to little-endian bytes. Builds tagged headless
// replace the device with a real-time null sink that keeps the render clock
// running.
package audio
