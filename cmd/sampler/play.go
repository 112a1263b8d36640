package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/internal/dropwatch"
	"github.com/cwbudde/algo-sampler/internal/playback"
	"github.com/cwbudde/algo-sampler/internal/sampler"
)

const devicePeriod = 512

func newPlayCmd(a *app) *cobra.Command {
	var loop bool

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a WAV file through the equalizer and master chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, err := a.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			if loop {
				r, ok := s.AddRegion(0, s.Buffer().Duration())
				if ok {
					if err := s.LoopRegion(r.ID); err != nil {
						return err
					}
				}
			}

			out, err := playback.Open(s.Chain(), s.Chain().SampleRate(), devicePeriod, a.log)
			if err != nil {
				return err
			}
			defer out.Close()

			s.Play()

			if err := out.Start(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "playing %s (%s s), Ctrl-C to stop\n",
				args[0], humanize.FtoaWithDigits(s.Buffer().Duration(), 2))

			waitPlayback(ctx, s)

			if err := out.Pump().Err(); err != nil {
				a.log.WithError(err).Error("render failed during playback")
			}

			return out.Stop()
		},
	}

	cmd.Flags().BoolVar(&loop, "loop", false, "Loop the whole sample until interrupted")

	return cmd
}

// waitPlayback returns when the source stops or ctx is done.
func waitPlayback(ctx context.Context, s *sampler.Session) {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if !s.Chain().Playing() {
				return
			}
		}
	}
}

// autoPlay loads dropped samples into the session and starts them.
type autoPlay struct {
	s   *sampler.Session
	log logrus.FieldLogger
}

func (p autoPlay) Load(name string, buf *buffer.Buffer, newSource bool) error {
	if err := p.s.Load(name, buf, newSource); err != nil {
		return err
	}

	fields := logrus.Fields{"sample": name, "duration": buf.Duration()}
	if bpm, ok := p.s.BPM(); ok {
		fields["bpm"] = bpm
	}

	p.log.WithFields(fields).Info("now playing")
	p.s.Play()

	return nil
}

func newWatchCmd(a *app) *cobra.Command {
	var silent bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Load and play every WAV file dropped into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, err := sampler.NewSession(a.sessionOptions(cmd, a.sampleRate)...)
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := dropwatch.New(args[0], autoPlay{s: s, log: a.log}, a.log)
			if err != nil {
				return err
			}

			if !silent {
				out, err := playback.Open(s.Chain(), s.Chain().SampleRate(), devicePeriod, a.log)
				if err != nil {
					return err
				}
				defer out.Close()

				if err := out.Start(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s, Ctrl-C to stop\n", args[0])

			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&silent, "silent", false, "Load dropped files without opening an audio device")

	return cmd
}
