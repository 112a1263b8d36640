// Package dropwatch loads WAV files dropped into a folder as new samples.
package dropwatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/wav"
)

// DefaultSettle is how long a file must stay unchanged before it is read.
const DefaultSettle = 150 * time.Millisecond

// Loader receives decoded samples. *sampler.Session implements it.
type Loader interface {
	Load(name string, buf *buffer.Buffer, newSource bool) error
}

// Watcher watches one directory for WAV files.
type Watcher struct {
	w      *fsnotify.Watcher
	dir    string
	loader Loader
	log    logrus.FieldLogger
	settle time.Duration
	ready  chan string
}

// New starts watching dir. Call Run to process events.
func New(dir string, loader Loader, log logrus.FieldLogger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dropwatch: %w", err)
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("dropwatch: watch %s: %w", dir, err)
	}

	return &Watcher{
		w:      w,
		dir:    dir,
		loader: loader,
		log:    log.WithField("dir", dir),
		settle: DefaultSettle,
		ready:  make(chan string, 16),
	}, nil
}

// SetSettle changes the quiet period before a file is read.
func (w *Watcher) SetSettle(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.w.Close()

	d := newDebouncer(ctx, w.settle, w.ready)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsWAV(ev.Name) {
				continue
			}

			d.touch(ev.Name)
		case path := <-w.ready:
			d.done(path)
			w.load(path)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}

			w.log.WithError(err).Warn("watch error")
		}
	}
}

// debouncer sends a path to ready once it has been quiet for settle. It is
// owned by the Run goroutine.
type debouncer struct {
	ctx    context.Context
	settle time.Duration
	ready  chan<- string
	timers map[string]*time.Timer
}

func newDebouncer(ctx context.Context, settle time.Duration, ready chan<- string) *debouncer {
	return &debouncer{ctx: ctx, settle: settle, ready: ready, timers: make(map[string]*time.Timer)}
}

// touch restarts the quiet period of path. A timer that already fired has
// queued path; the load that follows reads the newest bytes, so it is not
// re-armed.
func (d *debouncer) touch(path string) {
	if t, ok := d.timers[path]; ok {
		if t.Stop() {
			t.Reset(d.settle)
		}

		return
	}

	d.timers[path] = time.AfterFunc(d.settle, func() {
		select {
		case d.ready <- path:
		case <-d.ctx.Done():
		}
	})
}

// done forgets path after it was received from ready.
func (d *debouncer) done(path string) {
	delete(d.timers, path)
}

func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
}

func (w *Watcher) load(path string) {
	log := w.log.WithField("file", filepath.Base(path))

	buf, err := ReadFile(path)
	if err != nil {
		log.WithError(err).Warn("skipping file")
		return
	}

	if err := w.loader.Load(SampleName(path), buf, true); err != nil {
		log.WithError(err).Error("load failed")
		return
	}

	log.Info("sample dropped")
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*buffer.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return wav.Decode(bytes.NewReader(data))
}

// IsWAV reports whether path has a .wav extension.
func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// SampleName returns the file name without directory and extension.
func SampleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
