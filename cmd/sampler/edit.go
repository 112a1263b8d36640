package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/eq"
	"github.com/cwbudde/algo-sampler/internal/sampler"
	"github.com/cwbudde/algo-sampler/internal/tempo"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print format, length, peak and tempo of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readSample(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:        %s\n", args[0])
			fmt.Fprintf(out, "channels:    %d\n", buf.NumChannels())
			fmt.Fprintf(out, "sample rate: %s Hz\n", humanize.Ftoa(buf.SampleRate))
			fmt.Fprintf(out, "frames:      %s\n", humanize.Comma(int64(buf.Frames())))
			fmt.Fprintf(out, "duration:    %s s\n", humanize.FtoaWithDigits(buf.Duration(), 3))
			fmt.Fprintf(out, "peak:        %s dBFS\n", humanize.FtoaWithDigits(core.LinearToDB(buffer.Peak(buf)), 2))

			if bpm, ok := tempo.Detect(buf); ok {
				fmt.Fprintf(out, "tempo:       %s BPM\n", humanize.FtoaWithDigits(bpm, 1))
			} else {
				fmt.Fprintln(out, "tempo:       -")
			}

			return nil
		},
	}
}

func newTrimCmd(a *app) *cobra.Command {
	var start, end float64

	cmd := &cobra.Command{
		Use:   "trim <in> <out>",
		Short: "Keep only the frames between --start and --end seconds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			r, ok := s.AddRegion(start, end)
			if !ok {
				return fmt.Errorf("trim: region %g..%g covers no frames", start, end)
			}

			if err := s.Trim(r.ID); err != nil {
				return err
			}

			return writeSample(args[1], s.Buffer())
		},
	}

	cmd.Flags().Float64Var(&start, "start", 0, "Region start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Region end in seconds")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newFxCmd(a *app) *cobra.Command {
	var (
		effect     string
		start, end float64
		p1, p2     float64
		volume     float64
	)

	cmd := &cobra.Command{
		Use:   "fx <in> <out>",
		Short: "Render an effect into a region and write the result",
		Long: `fx previews an effect on the region between --start and --end and freezes
it into the sample. --p1 and --p2 set the effect parameters in their own
units: drive for distortion, time and feedback for delay, bits and
normalized frequency for bitcrush. Reverse takes no parameters.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sampler.ParseKind(effect)
			if err != nil {
				return err
			}

			if kind == sampler.KindNone {
				return fmt.Errorf("fx: --effect is required")
			}

			s, err := a.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			r, ok := s.AddRegion(start, end)
			if !ok {
				return fmt.Errorf("fx: region %g..%g covers no frames", start, end)
			}

			ctx := cmd.Context()
			if err := s.ApplyEffect(ctx, r.ID, kind); err != nil {
				return err
			}

			if kind != sampler.KindReverse {
				ctrl := s.Controller()
				values := []float64{p1, p2}
				changed := []bool{cmd.Flags().Changed("p1"), cmd.Flags().Changed("p2")}

				for i, p := range sampler.Params(kind) {
					if !changed[i] {
						continue
					}

					if _, err := ctrl.Adjust(p, sampler.KnobPosition(p, values[i])); err != nil {
						return err
					}
				}

				ctrl.SetVolumeKnob(volume)

				if err := s.Freeze(ctx); err != nil {
					return err
				}
			}

			return writeSample(args[1], s.Buffer())
		},
	}

	cmd.Flags().StringVar(&effect, "effect", "", "Effect: distortion, delay, bitcrush or reverse")
	cmd.Flags().Float64Var(&start, "start", 0, "Region start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Region end in seconds")
	cmd.Flags().Float64Var(&p1, "p1", 0, "First effect parameter")
	cmd.Flags().Float64Var(&p2, "p2", 0, "Second effect parameter")
	cmd.Flags().Float64Var(&volume, "volume", 1, "Gain applied to the rendered region")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		gains  string
		master float64
	)

	cmd := &cobra.Command{
		Use:   "export <in> <out>",
		Short: "Bake equalizer and master gain into a normalized 16-bit WAV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseGains(gains)
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			s.Chain().SetEQGains(g)
			s.Chain().SetMasterGain(master)

			blob, err := s.Export(cmd.Context())
			if err != nil {
				return err
			}

			if err := writeBytes(args[1], blob); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", args[1], humanize.Bytes(uint64(len(blob))))

			return nil
		},
	}

	cmd.Flags().StringVar(&gains, "eq", "", "Comma-separated band gains in dB, low to high")
	cmd.Flags().Float64Var(&master, "master", sampler.DefaultMasterGain, "Master gain")

	return cmd
}

// parseGains reads up to eq.Bands comma-separated dB values. Missing bands
// stay flat.
func parseGains(s string) (eq.Gains, error) {
	var g eq.Gains

	s = strings.TrimSpace(s)
	if s == "" {
		return g, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) > eq.Bands {
		return g, fmt.Errorf("eq: %d values for %d bands", len(parts), eq.Bands)
	}

	e := eq.New()

	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		db, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return g, fmt.Errorf("eq: band %d: %w", i, err)
		}

		if _, err := e.SetGain(i, db); err != nil {
			return g, err
		}
	}

	return e.Gains(), nil
}
