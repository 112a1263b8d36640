// Command sampler edits, renders and stores audio samples from the command
// line.
//
// Usage:
//
//	sampler <command> [flags]
//
// Examples:
//
//	sampler info kick.wav
//	sampler trim loop.wav out.wav --start 0.5 --end 1.5
//	sampler fx loop.wav out.wav --effect delay --start 0 --end 2 --p1 0.3 --p2 0.5
//	sampler export loop.wav out.wav --eq 3,0,0,0,0,0,0,0,0,-3 --master 1
//	sampler play loop.wav --loop
//	sampler watch ~/Drops
//	sampler bank add drums kick.wav --name "Kick 1"
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/internal/sampler"
)

type app struct {
	dbPath     string
	logLevel   string
	sampleRate float64
	block      int

	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.StandardLogger()}

	root := &cobra.Command{
		Use:   "sampler",
		Short: "Edit, render and store audio samples",
		Long: `sampler loads WAV samples, applies region effects through the offline
renderer, bakes the 10-band equalizer and master gain into normalized
exports, and keeps finished samples in sqlite-backed banks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}

			a.log.SetLevel(level)
			a.log.SetOutput(cmd.ErrOrStderr())

			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDBPath(),
		"Path of the sample bank database")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warning",
		"Log level (debug, info, warning, error)")
	root.PersistentFlags().Float64Var(&a.sampleRate, "sample-rate", core.DefaultSampleRate,
		"Live render sample rate in Hz")
	root.PersistentFlags().IntVar(&a.block, "block", core.DefaultBlockSize,
		"Render quantum in frames")

	root.AddCommand(
		newInfoCmd(a),
		newTrimCmd(a),
		newFxCmd(a),
		newExportCmd(a),
		newPlayCmd(a),
		newWatchCmd(a),
		newBankCmd(a),
	)

	return root
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sampler.db"
	}

	return filepath.Join(dir, "algo-sampler", "bank.db")
}

// sessionOptions returns the session settings for a sample recorded at
// sampleRate. The live graph follows the file unless --sample-rate was set.
func (a *app) sessionOptions(cmd *cobra.Command, sampleRate float64) []sampler.Option {
	sr := sampleRate
	if cmd.Flags().Changed("sample-rate") || sr <= 0 {
		sr = a.sampleRate
	}

	return []sampler.Option{
		sampler.WithSampleRate(sr),
		sampler.WithBlockSize(a.block),
		sampler.WithLogger(a.log),
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
