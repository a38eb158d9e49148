package speech

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays PCM audio through the system speaker.
type OtoSink struct {
	ctx        *oto.Context
	sampleRate int
}

// NewOtoSink initializes the speaker. At 24kHz mono 16-bit, the 4800-byte
// buffer is ~100ms of audio; small enough to keep interrupt latency low.
func NewOtoSink(sampleRate, channels int) (*OtoSink, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4800,
	})
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready
	return &OtoSink{ctx: otoCtx, sampleRate: sampleRate}, nil
}

// Play feeds chunks to the speaker until the channel closes and the buffer
// drains, or the context is canceled.
func (s *OtoSink) Play(ctx context.Context, chunks <-chan []byte) error {
	reader := newChunkReader()
	player := s.ctx.NewPlayer(reader)
	player.Play()
	defer player.Close()

	for {
		select {
		case <-ctx.Done():
			reader.finish()
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				reader.finish()
				return s.drain(ctx, player)
			}
			reader.write(chunk)
		}
	}
}

// drain waits for the player to consume its remaining buffer.
func (s *OtoSink) drain(ctx context.Context, player *oto.Player) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// chunkReader adapts pushed chunks to the io.Reader the player pulls from.
type chunkReader struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newChunkReader() *chunkReader {
	r := &chunkReader{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *chunkReader) write(data []byte) {
	r.mu.Lock()
	r.buf = append(r.buf, data...)
	r.mu.Unlock()
	r.cond.Signal()
}

func (r *chunkReader) finish() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cond.Broadcast()
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.buf) == 0 && !r.closed {
		r.cond.Wait()
	}
	if len(r.buf) == 0 {
		return 0, io.EOF
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
