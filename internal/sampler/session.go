package sampler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/render"
	"github.com/cwbudde/algo-sampler/dsp/resample"
	"github.com/cwbudde/algo-sampler/internal/bank"
	"github.com/cwbudde/algo-sampler/internal/dialog"
	"github.com/cwbudde/algo-sampler/internal/tempo"
)

// Session owns the committed sample, its regions, the live chain and the
// effect controller. Session methods never hold the session lock while
// calling into the controller.
type Session struct {
	mu sync.Mutex

	cfg   Config
	log   logrus.FieldLogger
	chain *Chain
	ctrl  *Controller

	name    string
	regions []Region
	current string
	bpm     float64
	hasBPM  bool
}

// NewSession returns an empty session.
func NewSession(opts ...Option) (*Session, error) {
	cfg := applyOptions(opts)

	chain, err := newChain(cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg,
		log:   cfg.Logger.WithField("component", "session"),
		chain: chain,
	}

	s.ctrl = NewController(chain, opts...)
	s.ctrl.OnCommit(func(*buffer.Buffer) { s.clearRegions() })

	return s, nil
}

// Close releases the live chain.
func (s *Session) Close() {
	s.chain.Close()
}

// Chain returns the live signal chain.
func (s *Session) Chain() *Chain { return s.chain }

// Controller returns the effect controller.
func (s *Session) Controller() *Controller { return s.ctrl }

// Config returns the session settings.
func (s *Session) Config() Config { return s.cfg }

// Load makes buf the committed buffer. A buffer at another sample rate is
// resampled to the session rate first, so preview, freeze and export all
// run at one rate. Any preview is cancelled and all regions are cleared.
// newSource marks a different sample, as opposed to a reload of the same
// one, and applies the EQ policy.
func (s *Session) Load(name string, buf *buffer.Buffer, newSource bool) error {
	if buf == nil {
		return ErrNoBuffer
	}

	rate := s.chain.SampleRate()
	if buf.SampleRate != rate {
		converted, err := resample.Buffer(buf, rate)
		if err != nil {
			return fmt.Errorf("sampler: load %q: %w", name, err)
		}

		s.log.WithFields(logrus.Fields{
			"sample": name,
			"from":   buf.SampleRate,
			"to":     rate,
		}).Debug("sample resampled")

		buf = converted
	}

	if err := s.ctrl.Cancel(); err != nil {
		return err
	}

	if newSource && s.cfg.EQPolicy == EQResetOnNewSource {
		s.chain.ResetEQ()
	}

	s.chain.Stop()
	s.chain.SetBuffer(buf)

	bpm, ok := tempo.Detect(buf)

	s.mu.Lock()
	if newSource || s.name == "" {
		s.name = name
	}

	s.regions = nil
	s.current = ""
	s.bpm, s.hasBPM = bpm, ok
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"sample":   name,
		"frames":   buf.Frames(),
		"channels": buf.NumChannels(),
		"new":      newSource,
	}).Info("sample loaded")

	return nil
}

// Name returns the name of the loaded sample.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name
}

// Buffer returns the committed buffer.
func (s *Session) Buffer() *buffer.Buffer { return s.chain.Buffer() }

// BPM returns the detected tempo of the loaded sample.
func (s *Session) BPM() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bpm, s.hasBPM
}

// AddRegion creates a region over [start, end) seconds and makes it
// current. A range covering no frames is ignored and reports false.
func (s *Session) AddRegion(start, end float64) (Region, bool) {
	r, ok := newRegion(s.chain.Buffer(), start, end)
	if !ok {
		return Region{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = append(s.regions, r)
	s.current = r.ID

	return r, true
}

// AddRegionRatio creates a region from fractions of the sample duration.
func (s *Session) AddRegionRatio(startRatio, endRatio float64) (Region, bool) {
	buf := s.chain.Buffer()
	if buf == nil {
		return Region{}, false
	}

	d := buf.Duration()

	return s.AddRegion(startRatio*d, endRatio*d)
}

// Regions returns all regions in creation order.
func (s *Session) Regions() []Region {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.regions)
}

// Region looks up a region by ID.
func (s *Session) Region(id string) (Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.regionLocked(id)
}

func (s *Session) regionLocked(id string) (Region, error) {
	i := slices.IndexFunc(s.regions, func(r Region) bool { return r.ID == id })
	if i < 0 {
		return Region{}, fmt.Errorf("%w: %s", ErrNoRegion, id)
	}

	return s.regions[i], nil
}

// Current returns the current edit target.
func (s *Session) Current() (Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.regionLocked(s.current)

	return r, err == nil
}

// SetCurrent makes id the edit target.
func (s *Session) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.regionLocked(id); err != nil {
		return err
	}

	s.current = id

	return nil
}

// Halve replaces region id by its first half.
func (s *Session) Halve(id string) (Region, error) {
	return s.reshape(id, func(r Region) (float64, float64) {
		return r.Start, r.Start + r.Duration()/2
	})
}

// Double replaces region id by one twice as long, clamped to the sample.
func (s *Session) Double(id string) (Region, error) {
	return s.reshape(id, func(r Region) (float64, float64) {
		return r.Start, r.Start + 2*r.Duration()
	})
}

// reshape swaps a region for a new one with fresh identity. A degenerate
// result leaves the region as it was.
func (s *Session) reshape(id string, bounds func(Region) (float64, float64)) (Region, error) {
	if active, ok := s.ctrl.Region(); ok && active.ID == id {
		if err := s.ctrl.Cancel(); err != nil {
			return Region{}, err
		}
	}

	buf := s.chain.Buffer()

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.regionLocked(id)
	if err != nil {
		return Region{}, err
	}

	start, end := bounds(old)

	r, ok := newRegion(buf, start, end)
	if !ok {
		return old, nil
	}

	r.Loop = old.Loop
	i := slices.IndexFunc(s.regions, func(x Region) bool { return x.ID == id })
	s.regions[i] = r

	if s.current == id {
		s.current = r.ID
	}

	return r, nil
}

// DeleteRegion removes a region, cancelling its preview if it has one.
func (s *Session) DeleteRegion(id string) error {
	if active, ok := s.ctrl.Region(); ok && active.ID == id {
		if err := s.ctrl.Cancel(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.regions, func(r Region) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoRegion, id)
	}

	s.regions = slices.Delete(s.regions, i, i+1)
	if s.current == id {
		s.current = ""
	}

	return nil
}

func (s *Session) clearRegions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = nil
	s.current = ""
}

// Trim keeps only the frames of region id and reloads the result as the
// same sample.
func (s *Session) Trim(id string) error {
	r, err := s.Region(id)
	if err != nil {
		return err
	}

	buf := s.chain.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}

	a, b := r.Ratios(buf)

	clip, ok := buffer.Slice(buf, a, b)
	if !ok {
		return nil
	}

	return s.Load(s.Name(), clip, false)
}

// ApplyEffect starts a preview of kind on region id, or commits it at once
// for reverse.
func (s *Session) ApplyEffect(ctx context.Context, id string, kind Kind) error {
	r, err := s.Region(id)
	if err != nil {
		return err
	}

	return s.ctrl.Activate(ctx, r, kind)
}

// Reverse reverses region id in place of the committed buffer.
func (s *Session) Reverse(ctx context.Context, id string) error {
	return s.ApplyEffect(ctx, id, KindReverse)
}

// Freeze commits the active preview.
func (s *Session) Freeze(ctx context.Context) error {
	_, err := s.ctrl.Freeze(ctx)
	return err
}

// Cancel drops the active preview.
func (s *Session) Cancel() error {
	return s.ctrl.Cancel()
}

// Export renders the committed buffer through the equalizer and master
// gain, normalizes and encodes it. An active preview is not included.
func (s *Session) Export(ctx context.Context) ([]byte, error) {
	snap := s.chain.Snapshot()
	if snap.Buffer == nil {
		return nil, ErrNoBuffer
	}

	blob, err := render.Export(ctx, snap.Buffer, snap.Mix(), core.WithBlockSize(s.cfg.Render.BlockSize))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.WithFields(logrus.Fields{
				"sample": s.Name(),
				"error":  err,
			}).Error("export failed")
		}

		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	return blob, nil
}

// SampleSaver is the part of the bank service used to save exports.
type SampleSaver interface {
	AddSample(ctx context.Context, bankID, name string, wav []byte, color string) (bank.Record, error)
}

// SaveToBank asks for a name, exports the sample and stores it in bankID.
// A dismissed prompt returns dialog.ErrCancelled and nothing is saved.
func (s *Session) SaveToBank(ctx context.Context, saver SampleSaver, dlg dialog.Service, bankID, color string) (bank.Record, error) {
	if dlg == nil {
		dlg = dialog.None{}
	}

	name, err := dlg.Prompt(ctx, "Sample name", s.Name())
	if err != nil {
		return bank.Record{}, err
	}

	blob, err := s.Export(ctx)
	if err != nil {
		_ = dlg.Alert(ctx, "Rendering failed.")
		return bank.Record{}, err
	}

	rec, err := saver.AddSample(ctx, bankID, name, blob, color)
	if err != nil {
		_ = dlg.Alert(ctx, "Saving to the bank failed.")
		return bank.Record{}, err
	}

	return rec, nil
}

// Play starts playback from the beginning, or from the start of the loop.
func (s *Session) Play() {
	start, _, looping := s.chain.LoopRange()
	if !looping {
		start = 0
	}

	s.chain.Play(start)
}

// Pause halts playback.
func (s *Session) Pause() { s.chain.Pause() }

// Resume continues playback from the current position.
func (s *Session) Resume() { s.chain.Resume() }

// Stop halts playback and rewinds.
func (s *Session) Stop() { s.chain.Stop() }

// Seek moves the play position to seconds.
func (s *Session) Seek(seconds float64) {
	if buf := s.chain.Buffer(); buf != nil {
		s.chain.Seek(buf.FrameAt(seconds))
	}
}

// Position returns the play position in seconds.
func (s *Session) Position() float64 {
	buf := s.chain.Buffer()
	if buf == nil {
		return 0
	}

	return float64(s.chain.Position()) / buf.SampleRate
}

// LoopRegion loops region id, or stops looping when id is empty.
func (s *Session) LoopRegion(id string) error {
	if id == "" {
		s.chain.ClearLoop()
		s.setLoopFlag("")

		return nil
	}

	r, err := s.Region(id)
	if err != nil {
		return err
	}

	buf := s.chain.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}

	start, end := r.FrameRange(buf)
	s.chain.Loop(start, end)
	s.setLoopFlag(id)

	return nil
}

func (s *Session) setLoopFlag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.regions {
		s.regions[i].Loop = s.regions[i].ID == id
	}
}
