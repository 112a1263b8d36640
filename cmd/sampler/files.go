package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/wav"
	"github.com/cwbudde/algo-sampler/internal/dropwatch"
	"github.com/cwbudde/algo-sampler/internal/sampler"
)

func readSample(path string) (*buffer.Buffer, error) {
	buf, err := dropwatch.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return buf, nil
}

func writeSample(path string, buf *buffer.Buffer) error {
	return writeBytes(path, wav.Encode(buf, buf.Frames()))
}

func writeBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}

// openSession decodes path into a new session.
func (a *app) openSession(cmd *cobra.Command, path string) (*sampler.Session, error) {
	buf, err := readSample(path)
	if err != nil {
		return nil, err
	}

	s, err := sampler.NewSession(a.sessionOptions(cmd, buf.SampleRate)...)
	if err != nil {
		return nil, err
	}

	if err := s.Load(dropwatch.SampleName(path), buf, true); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}
