//go:build noaudio

package playback

import "github.com/sirupsen/logrus"

// Output is unavailable in builds tagged noaudio.
type Output struct{ pump *Pump }

// Open always fails with ErrUnavailable.
func Open(Source, float64, int, logrus.FieldLogger) (*Output, error) {
	return nil, ErrUnavailable
}

func (o *Output) Start() error { return ErrUnavailable }
func (o *Output) Stop() error  { return ErrUnavailable }
func (o *Output) Pump() *Pump  { return o.pump }
func (o *Output) Close() error { return nil }
