package sampler

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/effects"
	"github.com/cwbudde/algo-sampler/dsp/eq"
	"github.com/cwbudde/algo-sampler/dsp/graph"
	"github.com/cwbudde/algo-sampler/dsp/render"
)

// Snapshot is the committed state used by export and bank save.
type Snapshot struct {
	Buffer *buffer.Buffer
	Gains  eq.Gains
	Master float64
}

// Mix returns the equalizer and master part of s.
func (s Snapshot) Mix() render.Mix {
	return render.Mix{Gains: s.Gains, Master: s.Master}
}

// stage holds the nodes of one effect activation. They are created fresh
// for each activation and removed from the graph on teardown.
type stage struct {
	kind    Kind
	node    graph.NodeID
	preview graph.NodeID
	gain    *graph.Gain
	shaper  *graph.WaveShaperNode
	delay   *graph.DelayNode
	crush   *graph.CrushNode
}

// Chain owns the live playback graph. Equalizer filters, eqSum, master gain
// and analyser are created once; effect nodes come and go with previews.
// All methods are safe for concurrent use, so an audio callback may call
// Process while the editor changes parameters.
type Chain struct {
	mu sync.Mutex

	cfg core.RenderConfig
	g   *graph.Graph
	h   Handles

	source   *graph.Source
	filters  [eq.Bands]*graph.BiquadNode
	master   *graph.Gain
	analyser *graph.Analyser

	eq    *eq.Equalizer
	buf   *buffer.Buffer
	stage *stage

	rebuilds int
}

// NewChain builds the clean chain.
func NewChain(opts ...Option) (*Chain, error) {
	return newChain(applyOptions(opts))
}

func newChain(cfg Config) (*Chain, error) {
	g, err := graph.New(cfg.Channels, core.WithSampleRate(cfg.Render.SampleRate), core.WithBlockSize(cfg.Render.BlockSize))
	if err != nil {
		return nil, fmt.Errorf("sampler: chain: %w", err)
	}

	an, err := graph.NewAnalyser()
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("sampler: chain: %w", err)
	}

	c := &Chain{
		cfg:      cfg.Render,
		g:        g,
		source:   graph.NewSource(nil),
		master:   graph.NewGain(core.Clamp(cfg.MasterGain, 0, MaxMasterGain)),
		analyser: an,
		eq:       eq.New(),
	}

	c.h = Handles{
		Source:      g.Add("source", c.source),
		Effect:      NoNode,
		EQSum:       g.Add("eqSum", graph.NewSum()),
		Preview:     NoNode,
		Destination: g.Destination(),
	}

	for i := range c.filters {
		c.filters[i] = graph.NewBiquadNode(eq.BandCoefficients(i, 0, cfg.Render.SampleRate))
		c.h.Filters[i] = g.Add(fmt.Sprintf("eq%d", i), c.filters[i])
	}

	c.h.Master = g.Add("master", c.master)
	c.h.Analyser = g.Add("analyser", c.analyser)

	c.rebuildLocked()

	return c, nil
}

// Close releases the graph.
func (c *Chain) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.g.Close()
}

// Rebuild disconnects every chain node and reconnects the plan for the
// current state.
func (c *Chain) Rebuild() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rebuildLocked()
}

func (c *Chain) rebuildLocked() {
	owned := []graph.NodeID{c.h.Source, c.h.Effect, c.h.EQSum, c.h.Preview, c.h.Master, c.h.Analyser}
	owned = append(owned, c.h.Filters[:]...)

	for _, id := range owned {
		c.g.DisconnectAll(id)
	}

	for _, e := range Plan(c.kindLocked(), c.h).Edges {
		// Plan only references live handles, so Connect cannot fail.
		_ = c.g.Connect(e.From, e.To)
	}

	c.rebuilds++
}

// Topology returns the plan for the current state.
func (c *Chain) Topology() Topology {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Plan(c.kindLocked(), c.h)
}

// Edges returns the edges actually present in the graph.
func (c *Chain) Edges() []graph.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Edges()
}

// NodeCount returns the number of live nodes in the graph.
func (c *Chain) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Len()
}

// Handles returns the current node handles.
func (c *Chain) Handles() Handles {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.h
}

// Rebuilds returns how many times the chain has been rewired.
func (c *Chain) Rebuilds() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rebuilds
}

// SetBuffer makes buf the committed buffer and rewires the chain. buf must
// be at the chain's sample rate; Session.Load resamples for callers.
func (c *Chain) SetBuffer(buf *buffer.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf = buf
	c.source.SetBuffer(buf)
	c.rebuildLocked()
}

// Buffer returns the committed buffer.
func (c *Chain) Buffer() *buffer.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf
}

// ActivateEffect tears down any previous effect stage and splices in fresh
// nodes for state. A state without an effect deactivates.
func (c *Chain) ActivateEffect(state EffectState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := state.Kind()
	if kind == KindNone {
		c.teardownLocked()
		c.rebuildLocked()

		return nil
	}

	st := &stage{kind: kind, gain: graph.NewGain(core.Clamp(state.PreviewVolume, 0, MaxMasterGain))}

	var node graph.Node

	switch fx := state.Effect.(type) {
	case render.Distortion:
		ws, err := effects.NewDistortion(fx.Drive)
		if err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		st.shaper, err = graph.NewWaveShaperNode(ws.Curve())
		if err != nil {
			return err
		}

		node = st.shaper
	case render.Delay:
		d, err := graph.NewDelayNode(c.cfg.SampleRate, fx.Time, fx.Feedback)
		if err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		st.delay = d
		node = d
	case render.Bitcrush:
		cr, err := graph.NewCrushNode(fx.Bits, fx.NormFreq)
		if err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		st.crush = cr
		node = cr
	case render.Reverse:
		return fmt.Errorf("sampler: reverse has no live preview")
	default:
		return fmt.Errorf("sampler: unsupported effect %v", fx)
	}

	c.teardownLocked()

	st.node = c.g.Add(kind.String(), node)
	st.preview = c.g.Add("preview", st.gain)
	c.stage = st
	c.h.Effect = st.node
	c.h.Preview = st.preview

	c.rebuildLocked()

	return nil
}

// DeactivateEffect discards the effect stage and rewires the clean chain.
func (c *Chain) DeactivateEffect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.rebuildLocked()
}

func (c *Chain) teardownLocked() {
	if c.stage == nil {
		return
	}

	c.g.Remove(c.stage.node)
	c.g.Remove(c.stage.preview)
	c.stage = nil
	c.h.Effect = NoNode
	c.h.Preview = NoNode
}

func (c *Chain) kindLocked() Kind {
	if c.stage == nil {
		return KindNone
	}

	return c.stage.kind
}

// ActiveKind returns the kind of the spliced effect, KindNone if none.
func (c *Chain) ActiveKind() Kind {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.kindLocked()
}

// SetEffectParam pushes new parameters to the live effect node. Delay time
// changes glide; everything else applies from the next quantum.
func (c *Chain) SetEffectParam(e render.Effect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stage
	if st == nil {
		return ErrNoPreview
	}

	if KindOf(e) != st.kind {
		return fmt.Errorf("sampler: %v does not match active %s", e, st.kind)
	}

	switch fx := e.(type) {
	case render.Distortion:
		ws, err := effects.NewDistortion(fx.Drive)
		if err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		return st.shaper.SetCurve(ws.Curve())
	case render.Delay:
		if err := st.delay.SetTime(fx.Time); err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		if err := st.delay.SetFeedback(fx.Feedback); err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}
	case render.Bitcrush:
		if err := st.crush.SetBits(fx.Bits); err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}

		if err := st.crush.SetNormFreq(fx.NormFreq); err != nil {
			return fmt.Errorf("sampler: %s: %w", fx, err)
		}
	}

	return nil
}

// SetPreviewVolume sets the preview gain, clamped to [0, MaxMasterGain].
func (c *Chain) SetPreviewVolume(v float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stage == nil {
		return 0, ErrNoPreview
	}

	v = core.Clamp(v, 0, MaxMasterGain)
	c.stage.gain.SetGain(v)

	return v, nil
}

// SetMasterGain sets the master gain, clamped to [0, MaxMasterGain], and
// returns the value applied.
func (c *Chain) SetMasterGain(v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	v = core.Clamp(v, 0, MaxMasterGain)
	c.master.SetGain(v)

	return v
}

// MasterGain returns the master gain.
func (c *Chain) MasterGain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.master.Gain()
}

// SetEQGain sets one band and updates its live filter.
func (c *Chain) SetEQGain(band int, db float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.eq.SetGain(band, db)
	if err != nil {
		return 0, err
	}

	c.syncFiltersLocked(band)

	return v, nil
}

// ResetEQBand returns one band to 0 dB.
func (c *Chain) ResetEQBand(band int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.eq.Reset(band); err != nil {
		return err
	}

	c.syncFiltersLocked(band)

	return nil
}

// ResetEQ flattens every band.
func (c *Chain) ResetEQ() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eq.ResetAll()
	c.syncFiltersLocked()
}

// SetEQGains replaces every band gain.
func (c *Chain) SetEQGains(g eq.Gains) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eq.SetGains(g)
	c.syncFiltersLocked()
}

// DrawEQ applies a freehand stroke across the band strip.
func (c *Chain) DrawEQ(from int, fromDB float64, to int, toDB float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	touched, err := c.eq.Draw(from, fromDB, to, toDB)
	if err != nil {
		return err
	}

	c.syncFiltersLocked(touched...)

	return nil
}

// EQGains returns the band gains.
func (c *Chain) EQGains() eq.Gains {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.eq.Gains()
}

// syncFiltersLocked redesigns the given bands, or all bands when none are given.
func (c *Chain) syncFiltersLocked(bands ...int) {
	if len(bands) == 0 {
		bands = make([]int, eq.Bands)
		for i := range bands {
			bands[i] = i
		}
	}

	for _, i := range bands {
		c.filters[i].SetCoefficients(eq.BandCoefficients(i, c.eq.Gain(i), c.cfg.SampleRate))
	}
}

// Snapshot returns the committed buffer, band gains and master gain. The
// active preview, if any, is not part of it.
func (c *Chain) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{Buffer: c.buf, Gains: c.eq.Gains(), Master: c.master.Gain()}
}

// Process renders the next len(out[0]) frames of live output.
func (c *Chain) Process(out [][]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.g.Render(out)
}

// Spectrum returns the analyser curve in dBFS at freqs.
func (c *Chain) Spectrum(freqs []float64) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.analyser.SpectrumDB(freqs)
}

// Level returns the peak output level of the last quantum.
func (c *Chain) Level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.analyser.Peak()
}

// SampleRate returns the live render rate.
func (c *Chain) SampleRate() float64 { return c.cfg.SampleRate }

// Channels returns the live output width.
func (c *Chain) Channels() int { return c.g.Channels() }

// Play starts the source at frame offset.
func (c *Chain) Play(offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Start(offset)
}

// Resume continues from the current position.
func (c *Chain) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Start(c.source.Position())
}

// Pause halts playback, keeping the position.
func (c *Chain) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Pause()
}

// Stop halts playback and rewinds.
func (c *Chain) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Stop()
}

// Seek moves the play position.
func (c *Chain) Seek(frame int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Seek(frame)
}

// Loop repeats frames [start, end).
func (c *Chain) Loop(start, end int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.SetLoop(start, end)
}

// ClearLoop turns looping off.
func (c *Chain) ClearLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.ClearLoop()
}

// Position returns the play position in frames.
func (c *Chain) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Position()
}

// Playing reports whether the source is running.
func (c *Chain) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Playing()
}

// LoopRange returns the loop bounds of the source in frames.
func (c *Chain) LoopRange() (start, end int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Loop()
}
