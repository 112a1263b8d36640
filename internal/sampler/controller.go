package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
	"github.com/cwbudde/algo-sampler/dsp/render"
)

// Phase is the lifecycle state of the region effect preview.
type Phase int

const (
	// PhaseIdle means no preview is active.
	PhaseIdle Phase = iota
	// PhasePreview means an effect is spliced into the live chain.
	PhasePreview
	// PhaseRendering means a freeze is rendering offline.
	PhaseRendering
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreview:
		return "preview"
	case PhaseRendering:
		return "rendering"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Controller runs the activate, adjust, freeze or cancel cycle for one
// region at a time. Activating a second preview cancels the first.
type Controller struct {
	mu sync.Mutex

	chain *Chain
	cfg   Config
	log   logrus.FieldLogger

	phase  Phase
	region Region
	state  EffectState

	onCommit func(*buffer.Buffer)

	// rendering runs after a freeze has left the lock and before it
	// renders. Tests use it to hold a freeze in flight.
	rendering func()
}

// NewController returns an idle controller driving chain.
func NewController(chain *Chain, opts ...Option) *Controller {
	cfg := applyOptions(opts)

	return &Controller{
		chain: chain,
		cfg:   cfg,
		log:   cfg.Logger.WithField("component", "controller"),
	}
}

// OnCommit registers fn to run after a new buffer has been committed.
func (c *Controller) OnCommit(fn func(*buffer.Buffer)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onCommit = fn
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

// State returns the active effect state; it is zero while idle.
func (c *Controller) State() EffectState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Region returns the region under preview.
func (c *Controller) Region() (Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.region, c.phase != PhaseIdle
}

// Activate starts a preview of kind on region with default parameters and
// loops the region. Reverse is committed immediately instead, and KindNone
// cancels. Any earlier preview is torn down first.
func (c *Controller) Activate(ctx context.Context, region Region, kind Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseRendering {
		return ErrBusy
	}

	buf := c.chain.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}

	switch kind {
	case KindNone:
		c.cancelLocked()
		return nil
	case KindReverse:
		c.cancelLocked()

		out, err := render.RenderEffect(ctx, buf, region.Start, region.End, render.Reverse{})
		if err != nil {
			return c.renderFailed(region, kind, err)
		}

		c.commitLocked(out)

		return nil
	case KindDistortion, KindDelay, KindBitcrush:
	default:
		return fmt.Errorf("sampler: unsupported effect %s", kind)
	}

	state := EffectState{Effect: DefaultEffect(kind), PreviewVolume: DefaultPreviewVolume}
	if err := c.chain.ActivateEffect(state); err != nil {
		return err
	}

	c.phase = PhasePreview
	c.region = region
	c.state = state

	start, end := region.FrameRange(buf)
	c.chain.Loop(start, end)
	c.chain.Play(start)

	c.log.WithFields(logrus.Fields{
		"region": region.ID,
		"effect": kind.String(),
	}).Debug("preview activated")

	return nil
}

// Adjust maps a normalized knob position to p and applies it live.
func (c *Controller) Adjust(p Param, normalized float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePreview {
		return 0, ErrNoPreview
	}

	value := Knob(p, normalized)

	next, ok := withParam(c.state.Effect, p, value)
	if !ok {
		return 0, fmt.Errorf("sampler: %s has no parameter %s", c.state.Kind(), p)
	}

	if err := c.chain.SetEffectParam(next); err != nil {
		return 0, err
	}

	c.state.Effect = next

	return value, nil
}

// SetVolumeKnob drives the preview gain while a preview is active and the
// master gain otherwise. It returns the value applied.
func (c *Controller) SetVolumeKnob(v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhasePreview {
		applied, err := c.chain.SetPreviewVolume(v)
		if err == nil {
			c.state.PreviewVolume = applied
			return applied
		}
	}

	return c.chain.SetMasterGain(v)
}

// Freeze renders the previewed effect into the region, applies the preview
// volume to the region samples and commits the result. A second Freeze or
// Cancel while rendering returns ErrBusy. On failure the committed buffer
// and the preview are kept.
func (c *Controller) Freeze(ctx context.Context) (*buffer.Buffer, error) {
	c.mu.Lock()

	switch c.phase {
	case PhaseRendering:
		c.mu.Unlock()
		return nil, ErrBusy
	case PhaseIdle:
		c.mu.Unlock()
		return nil, ErrNoPreview
	case PhasePreview:
	}

	c.phase = PhaseRendering
	region, state := c.region, c.state
	src := c.chain.Buffer()
	hook := c.rendering
	c.mu.Unlock()

	if hook != nil {
		hook()
	}

	out, err := c.bake(ctx, src, region, state)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.phase = PhasePreview
		return nil, c.renderFailed(region, state.Kind(), err)
	}

	c.chain.DeactivateEffect()
	c.chain.ClearLoop()
	c.phase = PhaseIdle
	c.state = EffectState{}
	c.region = Region{}
	c.commitLocked(out)

	c.log.WithFields(logrus.Fields{
		"region": region.ID,
		"effect": state.Kind().String(),
	}).Info("effect frozen")

	return out, nil
}

func (c *Controller) bake(ctx context.Context, src *buffer.Buffer, region Region, state EffectState) (*buffer.Buffer, error) {
	if src == nil {
		return nil, ErrNoBuffer
	}

	out, err := render.RenderEffect(ctx, src, region.Start, region.End, state.Effect, core.WithBlockSize(c.cfg.Render.BlockSize))
	if err != nil {
		return nil, err
	}

	if state.PreviewVolume != 1 && out != src {
		start, end := region.FrameRange(out)
		buffer.ScaleRange(out, start, end, state.PreviewVolume)
	}

	return out, nil
}

// Cancel drops the preview without rendering. Cancelling while idle is a
// no-op; cancelling while rendering returns ErrBusy.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseRendering {
		return ErrBusy
	}

	c.cancelLocked()

	return nil
}

func (c *Controller) cancelLocked() {
	if c.phase != PhasePreview {
		return
	}

	c.chain.DeactivateEffect()
	c.chain.ClearLoop()
	c.phase = PhaseIdle
	c.state = EffectState{}
	c.region = Region{}
}

func (c *Controller) commitLocked(buf *buffer.Buffer) {
	c.chain.SetBuffer(buf)

	if c.onCommit != nil {
		c.onCommit(buf)
	}
}

func (c *Controller) renderFailed(region Region, kind Kind, err error) error {
	if !errors.Is(err, context.Canceled) {
		c.log.WithFields(logrus.Fields{
			"region": region.ID,
			"effect": kind.String(),
			"error":  err,
		}).Error("offline render failed")
	}

	return fmt.Errorf("%w: %w", ErrRender, err)
}
