package sampler

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/wav"
	"github.com/cwbudde/algo-sampler/internal/bank"
	"github.com/cwbudde/algo-sampler/internal/dialog"
)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()

	s, err := NewSession(append(testOptions(), opts...)...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	t.Cleanup(s.Close)

	return s
}

func loaded(t *testing.T, frames int, opts ...Option) *Session {
	t.Helper()

	s := newTestSession(t, opts...)
	if err := s.Load("kick", constBuffer(t, frames, 0.5), true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	return s
}

func TestSessionLoad(t *testing.T) {
	s := newTestSession(t)

	if err := s.Load("x", nil, true); !errors.Is(err, ErrNoBuffer) {
		t.Fatalf("Load(nil) = %v", err)
	}

	buf := constBuffer(t, 2000, 0.5)
	if err := s.Load("kick", buf, true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Buffer() != buf || s.Name() != "kick" {
		t.Fatalf("Buffer/Name = %p/%q", s.Buffer(), s.Name())
	}

	if _, ok := s.BPM(); ok {
		t.Fatal("BPM detected on a constant buffer")
	}
}

func TestSessionRegions(t *testing.T) {
	s := loaded(t, 2000)

	if _, ok := s.AddRegion(1, 1); ok {
		t.Fatal("empty region accepted")
	}

	r, ok := s.AddRegion(1, 0)
	if !ok || r.Start != 0 || r.End != 1 {
		t.Fatalf("AddRegion(1, 0) = %+v, %v", r, ok)
	}

	if cur, ok := s.Current(); !ok || cur.ID != r.ID {
		t.Fatalf("Current = %+v, %v", cur, ok)
	}

	half, err := s.Halve(r.ID)
	if err != nil || half.End != 0.5 || half.ID == r.ID {
		t.Fatalf("Halve = %+v, %v", half, err)
	}

	if _, err := s.Region(r.ID); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("old region still present: %v", err)
	}

	if cur, _ := s.Current(); cur.ID != half.ID {
		t.Fatal("current did not follow the halved region")
	}

	tail, ok := s.AddRegionRatio(0.75, 0.9)
	if !ok || tail.Start != 1.5 || tail.End != 1.8 {
		t.Fatalf("AddRegionRatio = %+v, %v", tail, ok)
	}

	doubled, err := s.Double(tail.ID)
	if err != nil || doubled.Start != 1.5 || doubled.End != 2 {
		t.Fatalf("Double = %+v, %v", doubled, err)
	}

	if got := len(s.Regions()); got != 2 {
		t.Fatalf("len(Regions) = %d, want 2", got)
	}

	if err := s.DeleteRegion(doubled.ID); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}

	if err := s.DeleteRegion(doubled.ID); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("second DeleteRegion = %v", err)
	}

	if err := s.SetCurrent("nope"); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("SetCurrent(nope) = %v", err)
	}
}

func TestSessionLoadClearsRegions(t *testing.T) {
	s := loaded(t, 2000)
	s.AddRegion(0, 1)

	if err := s.Load("snare", constBuffer(t, 500, 0.1), true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := len(s.Regions()); got != 0 {
		t.Fatalf("len(Regions) = %d after load", got)
	}

	if _, ok := s.Current(); ok {
		t.Fatal("current region survived load")
	}
}

func TestSessionTrim(t *testing.T) {
	s := loaded(t, 2000)
	r, _ := s.AddRegion(0.5, 1)

	if err := s.Trim(r.ID); err != nil {
		t.Fatalf("Trim: %v", err)
	}

	if got := s.Buffer().Frames(); got != 500 {
		t.Fatalf("Frames = %d, want 500", got)
	}

	if s.Name() != "kick" || len(s.Regions()) != 0 {
		t.Fatalf("after trim: name %q, regions %d", s.Name(), len(s.Regions()))
	}
}

func TestSessionFreezeClearsRegions(t *testing.T) {
	s := loaded(t, 2000)
	r, _ := s.AddRegion(0, 1)
	s.AddRegion(1, 2)

	if err := s.ApplyEffect(context.Background(), r.ID, KindDistortion); err != nil {
		t.Fatalf("ApplyEffect: %v", err)
	}

	if err := s.Freeze(context.Background()); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if got := len(s.Regions()); got != 0 {
		t.Fatalf("len(Regions) = %d after freeze", got)
	}
}

func TestSessionReverse(t *testing.T) {
	s := newTestSession(t)
	buf := rampBuffer(t, 10)

	if err := s.Load("ramp", buf, true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	r, _ := s.AddRegion(0, 0.01)

	if err := s.Reverse(context.Background(), r.ID); err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	got := s.Buffer().Channel(0)
	if got[0] != 1 || got[9] != 0.1 {
		t.Fatalf("reversed = %v", got)
	}

	if len(s.Regions()) != 0 {
		t.Fatal("regions survived reverse")
	}
}

func TestSessionDeleteCancelsPreview(t *testing.T) {
	s := loaded(t, 2000)
	r, _ := s.AddRegion(0, 1)

	if err := s.ApplyEffect(context.Background(), r.ID, KindDelay); err != nil {
		t.Fatalf("ApplyEffect: %v", err)
	}

	if err := s.DeleteRegion(r.ID); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}

	if s.Controller().Phase() != PhaseIdle || s.Chain().ActiveKind() != KindNone {
		t.Fatal("preview survived region deletion")
	}
}

func TestSessionEQPolicy(t *testing.T) {
	for _, tt := range []struct {
		policy EQPolicy
		flat   bool
	}{
		{EQKeep, false},
		{EQResetOnNewSource, true},
	} {
		s := loaded(t, 100, WithEQPolicy(tt.policy))

		if _, err := s.Chain().SetEQGain(4, 6); err != nil {
			t.Fatalf("SetEQGain: %v", err)
		}

		if err := s.Load("kick", constBuffer(t, 100, 0.2), false); err != nil {
			t.Fatalf("reload: %v", err)
		}

		if s.Chain().EQGains().Flat() {
			t.Fatalf("policy %d: reload flattened EQ", tt.policy)
		}

		if err := s.Load("snare", constBuffer(t, 100, 0.2), true); err != nil {
			t.Fatalf("Load: %v", err)
		}

		if got := s.Chain().EQGains().Flat(); got != tt.flat {
			t.Fatalf("policy %d: flat = %v, want %v", tt.policy, got, tt.flat)
		}
	}
}

func TestSessionExportExcludesPreview(t *testing.T) {
	s := loaded(t, 2000)

	want, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	r, _ := s.AddRegion(0, 1)
	if err := s.ApplyEffect(context.Background(), r.ID, KindBitcrush); err != nil {
		t.Fatalf("ApplyEffect: %v", err)
	}

	got, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export during preview: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatal("export changed while a preview was active")
	}

	dec, err := wav.Decode(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if dec.Frames() != 2000 || dec.NumChannels() != 2 {
		t.Fatalf("decoded %d frames x %d channels", dec.Frames(), dec.NumChannels())
	}

	if peak := buffer.Peak(dec); !near(peak, 0.98, 1e-3) {
		t.Fatalf("peak = %g, want 0.98", peak)
	}
}

func TestSessionExportWithoutBuffer(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Export(context.Background()); !errors.Is(err, ErrNoBuffer) {
		t.Fatalf("Export = %v, want ErrNoBuffer", err)
	}
}

func newTestBank(t *testing.T) (*bank.Service, bank.Bank) {
	t.Helper()

	store, err := bank.OpenSQLStore(filepath.Join(t.TempDir(), "bank.db"))
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}

	svc, err := bank.NewService(context.Background(), store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	t.Cleanup(func() { _ = svc.Close() })

	b, err := svc.CreateBank(context.Background(), "drums")
	if err != nil {
		t.Fatalf("CreateBank: %v", err)
	}

	return svc, b
}

func TestSessionSaveToBank(t *testing.T) {
	s := loaded(t, 500)
	svc, b := newTestBank(t)

	rec, err := s.SaveToBank(context.Background(), svc, dialog.NewScripted(""), b.ID, "")
	if err != nil {
		t.Fatalf("SaveToBank: %v", err)
	}

	if rec.Name != "kick" || rec.Color != bank.DefaultColor || rec.Size == 0 {
		t.Fatalf("record = %+v", rec)
	}

	blob, err := svc.SampleData(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("SampleData: %v", err)
	}

	want, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !bytes.Equal(blob, want) {
		t.Fatal("stored sample differs from export")
	}
}

func TestSessionSaveToBankCancelled(t *testing.T) {
	s := loaded(t, 500)
	svc, b := newTestBank(t)

	if _, err := s.SaveToBank(context.Background(), svc, dialog.NewScripted(), b.ID, ""); !errors.Is(err, dialog.ErrCancelled) {
		t.Fatalf("SaveToBank = %v, want ErrCancelled", err)
	}

	samples, err := svc.Samples(b.ID)
	if err != nil || len(samples) != 0 {
		t.Fatalf("Samples = %v, %v", samples, err)
	}
}

func TestSessionSaveToBankUnknownBank(t *testing.T) {
	s := loaded(t, 500)
	svc, _ := newTestBank(t)
	dlg := dialog.NewScripted("loop")

	if _, err := s.SaveToBank(context.Background(), svc, dlg, "missing", "red"); !errors.Is(err, bank.ErrNotFound) {
		t.Fatalf("SaveToBank = %v, want ErrNotFound", err)
	}

	if len(dlg.Alerts()) != 1 {
		t.Fatalf("alerts = %v", dlg.Alerts())
	}
}

func TestSessionTransport(t *testing.T) {
	s := loaded(t, 2000)
	r, _ := s.AddRegion(0.5, 1)

	if err := s.LoopRegion(r.ID); err != nil {
		t.Fatalf("LoopRegion: %v", err)
	}

	if got, _ := s.Region(r.ID); !got.Loop {
		t.Fatal("region not flagged as looping")
	}

	s.Play()

	if got := s.Position(); got != 0.5 {
		t.Fatalf("Position = %g, want 0.5", got)
	}

	s.Seek(0.75)
	s.Pause()

	if s.Chain().Playing() || s.Position() != 0.75 {
		t.Fatalf("after pause: playing %v at %g", s.Chain().Playing(), s.Position())
	}

	s.Resume()

	if !s.Chain().Playing() {
		t.Fatal("Resume did not restart playback")
	}

	if err := s.LoopRegion(""); err != nil {
		t.Fatalf("LoopRegion(\"\"): %v", err)
	}

	if _, _, ok := s.Chain().LoopRange(); ok {
		t.Fatal("loop not cleared")
	}

	s.Stop()

	if s.Position() != 0 || s.Chain().Playing() {
		t.Fatal("Stop did not rewind")
	}
}

func peakIndex(x []float64) int {
	best := 0
	for i, v := range x {
		if math.Abs(v) > math.Abs(x[best]) {
			best = i
		}
	}

	return best
}

func TestSessionLoadResamplesToSessionRate(t *testing.T) {
	s := newTestSession(t)

	b, err := buffer.New(1, 4000, 2*testRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Load("hi-rate", b, true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := s.Buffer()
	if got.SampleRate != testRate || got.Frames() != 2000 {
		t.Fatalf("loaded rate=%g frames=%d, want %d and 2000", got.SampleRate, got.Frames(), testRate)
	}

	if d := got.Duration(); d != 2 {
		t.Fatalf("Duration = %g, want 2", d)
	}
}

func TestSessionDelayPreviewMatchesFreezeAcrossRates(t *testing.T) {
	s := newTestSession(t)

	impulse := make([]float64, 2*testRate)
	impulse[400] = 1

	b, err := buffer.FromChannels(2*testRate, impulse)
	if err != nil {
		t.Fatalf("FromChannels: %v", err)
	}

	if err := s.Load("click", b, true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	dry := peakIndex(s.Buffer().Channel(0))
	if dry < 195 || dry > 205 {
		t.Fatalf("impulse at frame %d after load, want ~200", dry)
	}

	r, _ := s.AddRegion(0, 1)
	if err := s.ApplyEffect(context.Background(), r.ID, KindDelay); err != nil {
		t.Fatalf("ApplyEffect: %v", err)
	}

	s.Controller().SetVolumeKnob(1)

	lo, hi := dry+100, dry+400
	live := pull(t, s.Chain(), hi)[0]
	liveEcho := lo + peakIndex(live[lo:hi])

	if err := s.Freeze(context.Background()); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	frozen := s.Buffer().Channel(0)
	frozenEcho := lo + peakIndex(frozen[lo:hi])

	want := dry + 250 // default delay time is 0.25 s
	if liveEcho != want || frozenEcho != want {
		t.Fatalf("echo live=%d frozen=%d, want %d", liveEcho, frozenEcho, want)
	}
}

func TestSessionDistortionFreezeEndToEnd(t *testing.T) {
	curveAtHalf := 3 * 0.5 * (20 * math.Pi / 180) / math.Pi

	tests := []struct {
		name   string
		volume float64
		want   float64
	}{
		{"default preview volume", DefaultPreviewVolume, DefaultPreviewVolume * curveAtHalf},
		{"unity preview volume", 1, curveAtHalf},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := loaded(t, 2000)
			r, _ := s.AddRegion(0.5, 1.5)

			if err := s.ApplyEffect(context.Background(), r.ID, KindDistortion); err != nil {
				t.Fatalf("ApplyEffect: %v", err)
			}

			if v, err := s.Controller().Adjust(ParamDrive, 0); err != nil || v != 0 {
				t.Fatalf("Adjust(drive, 0) = %g, %v", v, err)
			}

			s.Controller().SetVolumeKnob(tc.volume)

			if err := s.Freeze(context.Background()); err != nil {
				t.Fatalf("Freeze: %v", err)
			}

			for ch, data := range s.Buffer().Channels() {
				for i, v := range data {
					want := 0.5
					if i >= 500 && i < 1500 {
						want = tc.want
					}

					if !near(v, want, 1e-9) {
						t.Fatalf("ch %d frame %d = %v, want %v", ch, i, v, want)
					}
				}
			}
		})
	}
}
