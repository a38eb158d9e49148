// Package speech turns model responses into spoken audio. The controller
// plays at most one utterance at a time: a new Speak interrupts and
// replaces whatever is playing, it never queues.
package speech

import (
	"context"
	"sync"

	"github.com/voxlab/askai/pkg/core/voice/tts"
)

// Options mirror the voice options surface: voice id, language, pitch and
// speaking rate. Zero fields fall back to the controller defaults.
type Options struct {
	Voice    string
	Language string
	Pitch    float64
	Rate     float64
}

// DefaultOptions is the voice used when the caller supplies nothing.
var DefaultOptions = Options{
	Language: "en",
	Pitch:    1.0,
	Rate:     0.9,
}

// Callbacks receive utterance lifecycle signals. An utterance that was
// interrupted by a later Speak or by Stop fires none of them after the
// interruption; in particular a stale OnDone never arrives.
type Callbacks struct {
	OnStart func()
	OnDone  func()
	OnError func(error)
}

// Sink plays raw audio chunks until the channel closes or the context is
// canceled.
type Sink interface {
	Play(ctx context.Context, chunks <-chan []byte) error
}

// Controller sequences synthesis and playback. It owns the speaking state
// explicitly; callers query Speaking rather than tracking their own flag.
type Controller struct {
	provider tts.Provider
	sink     Sink
	defaults Options

	mu      sync.Mutex
	seq     uint64
	current *utterance
}

type utterance struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a controller over a TTS provider and an audio sink.
func New(provider tts.Provider, sink Sink, defaults Options) *Controller {
	if defaults == (Options{}) {
		defaults = DefaultOptions
	}
	return &Controller{provider: provider, sink: sink, defaults: defaults}
}

// Speak synthesizes and plays text asynchronously. If an utterance is
// already playing it is stopped first. Playback failures are reported via
// cb.OnError and leave the controller in a non-speaking state; they are
// never fatal to the caller.
func (c *Controller) Speak(ctx context.Context, text string, opts Options, cb Callbacks) {
	merged := c.merge(opts)

	uttCtx, cancel := context.WithCancel(ctx)
	utt := &utterance{cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	c.seq++
	utt.id = c.seq
	previous := c.current
	c.current = utt
	c.mu.Unlock()

	if previous != nil {
		previous.cancel()
		<-previous.done
	}

	go c.run(uttCtx, utt, text, merged, cb)
}

// Stop interrupts the current utterance, if any. Safe to call when nothing
// is playing.
func (c *Controller) Stop() {
	c.mu.Lock()
	current := c.current
	c.current = nil
	c.mu.Unlock()

	if current != nil {
		current.cancel()
		<-current.done
	}
}

// Speaking reports whether an utterance is active.
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Controller) run(ctx context.Context, utt *utterance, text string, opts Options, cb Callbacks) {
	defer close(utt.done)
	defer utt.cancel()

	stream, err := c.provider.SynthesizeStream(ctx, text, tts.SynthesizeOptions{
		Voice:    opts.Voice,
		Language: opts.Language,
		Speed:    opts.Rate,
		Format:   "pcm",
	})
	if err != nil {
		c.finish(utt, cb, err)
		return
	}
	defer stream.Close()

	if c.stale(utt) {
		return
	}
	if cb.OnStart != nil {
		cb.OnStart()
	}

	playErr := c.sink.Play(ctx, stream.Chunks())
	stream.Close()
	if playErr == nil {
		playErr = stream.Err()
	}
	if ctx.Err() != nil {
		// Interrupted; the replacing utterance owns the callbacks now.
		c.clear(utt)
		return
	}
	c.finish(utt, cb, playErr)
}

// finish retires the utterance and fires the terminal callback, unless a
// later Speak already replaced it.
func (c *Controller) finish(utt *utterance, cb Callbacks, err error) {
	if !c.clear(utt) {
		return
	}
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

// clear removes utt from current if it still is current.
func (c *Controller) clear(utt *utterance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != utt {
		return false
	}
	c.current = nil
	return true
}

func (c *Controller) stale(utt *utterance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != utt
}

func (c *Controller) merge(opts Options) Options {
	if opts.Voice == "" {
		opts.Voice = c.defaults.Voice
	}
	if opts.Language == "" {
		opts.Language = c.defaults.Language
	}
	if opts.Pitch == 0 {
		opts.Pitch = c.defaults.Pitch
	}
	if opts.Rate == 0 {
		opts.Rate = c.defaults.Rate
	}
	return opts
}
