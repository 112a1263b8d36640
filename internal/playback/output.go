//go:build !noaudio

package playback

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

// Output plays a Source on the default output device.
type Output struct {
	stream *portaudio.Stream
	pump   *Pump
	log    logrus.FieldLogger
}

// Open initializes PortAudio and opens a callback stream on the default
// device. framesPerBuffer is the device period; the chain splits it into
// render quanta.
func Open(src Source, sampleRate float64, framesPerBuffer int, log logrus.FieldLogger) (*Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("playback: initialize: %w", err)
	}

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("playback: default output: %w", err)
	}

	channels := min(src.Channels(), dev.MaxOutputChannels)
	pump := NewPump(src)

	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, framesPerBuffer, pump.Fill)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("playback: open stream: %w", err)
	}

	log.WithFields(logrus.Fields{
		"device":     dev.Name,
		"channels":   channels,
		"sampleRate": sampleRate,
		"frames":     framesPerBuffer,
	}).Info("audio output opened")

	return &Output{stream: stream, pump: pump, log: log}, nil
}

// Start begins pulling from the source.
func (o *Output) Start() error {
	return o.stream.Start()
}

// Stop halts the stream.
func (o *Output) Stop() error {
	return o.stream.Stop()
}

// Pump returns the converter feeding the device.
func (o *Output) Pump() *Pump { return o.pump }

// Close stops the stream and releases PortAudio.
func (o *Output) Close() error {
	err := o.stream.Close()

	if clipped := o.pump.Clipped(); clipped > 0 {
		o.log.WithField("samples", clipped).Warn("output clipped")
	}

	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}

	return err
}
