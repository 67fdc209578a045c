package recording

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/anvilforge/rig/internal/display/outputsink"
)

// bufferCapacityBytes bounds the in-memory replay buffer bufferOutput
// keeps for save_recording_buffer; old chunks are dropped once exceeded,
// mirroring a fixed-depth precise-recording ring.
const bufferCapacityBytes = 64 << 20

// FileOutputFactory is the production OutputFactory: it writes each
// output's encoded stream through an outputsink.Sink rather than muxing
// into a real container, since no muxer library is available in this
// stack — callers needing a playable file must mux bufferOutput/fileOutput's
// raw NAL stream downstream of CH.
type FileOutputFactory struct {
	sink outputsink.Sink

	mu     sync.Mutex
	muxer  *fileOutput
	buffer *bufferOutput
}

// NewFileOutputFactory builds a factory persisting through sink (typically
// an outputsink.LocalDisk or outputsink.S3).
func NewFileOutputFactory(sink outputsink.Sink) *FileOutputFactory {
	return &FileOutputFactory{sink: sink}
}

func (f *FileOutputFactory) NewMuxerOutput(filename string, muxerSettings map[string]any) Output {
	out := &fileOutput{sink: f.sink, filename: filename}
	f.mu.Lock()
	f.muxer = out
	f.mu.Unlock()
	return out
}

func (f *FileOutputFactory) NewBufferOutput(filename string, muxerSettings map[string]any) BufferOutput {
	out := &bufferOutput{sink: f.sink, filename: filename}
	f.mu.Lock()
	f.buffer = out
	f.mu.Unlock()
	return out
}

// CurrentMuxer returns the most recently created muxer output, or nil
// before any capture_new_process has run. FramePipeline polls this rather
// than Controller exposing it, since Controller's outputs are otherwise
// private to its own lifecycle management.
func (f *FileOutputFactory) CurrentMuxer() writableOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.muxer == nil {
		return nil
	}
	return f.muxer
}

// CurrentBuffer returns the most recently created buffer output, or nil.
func (f *FileOutputFactory) CurrentBuffer() writableOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buffer == nil {
		return nil
	}
	return f.buffer
}

// fileOutput is the muxer output: Start/Stop bracket a stream of Write
// calls the encoder's completion callback feeds directly.
type fileOutput struct {
	sink     outputsink.Sink
	filename string

	mu      sync.Mutex
	buf     bytes.Buffer
	running bool
	onStart func()
	onStop  func()
}

func (o *fileOutput) Start() error {
	o.mu.Lock()
	o.running = true
	onStart := o.onStart
	o.mu.Unlock()
	if onStart != nil {
		onStart()
	}
	return nil
}

func (o *fileOutput) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	data := o.buf.Bytes()
	onStop := o.onStop
	o.mu.Unlock()

	if err := outputsink.PutBytes(context.Background(), o.sink, o.filename, data); err != nil {
		log.Warn("recording: flush muxer output failed", "filename", o.filename, "error", err)
	}
	if onStop != nil {
		onStop()
	}
}

func (o *fileOutput) OnStart(fn func()) { o.mu.Lock(); o.onStart = fn; o.mu.Unlock() }
func (o *fileOutput) OnStop(fn func())  { o.mu.Lock(); o.onStop = fn; o.mu.Unlock() }

// Write appends an encoded chunk while the output is running; called by
// the encoder's EncodeCompleteCallback, not part of the Output interface
// (FramePipeline reaches it through the writableOutput interface).
func (o *fileOutput) Write(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return fmt.Errorf("recording: output %q is not running", o.filename)
	}
	o.buf.Write(data)
	return nil
}

// bufferOutput is the precise-recording-buffer output: it keeps only the
// most recent bufferCapacityBytes of encoded data and flushes that window
// to a named file on save_recording_buffer, instead of continuously
// writing like fileOutput.
type bufferOutput struct {
	sink     outputsink.Sink
	filename string

	mu       sync.Mutex
	ring     []byte
	running  bool
	onStart  func()
	onStop   func()
	onFinish func(filename string)
}

func (b *bufferOutput) Start() error {
	b.mu.Lock()
	b.running = true
	onStart := b.onStart
	b.mu.Unlock()
	if onStart != nil {
		onStart()
	}
	return nil
}

func (b *bufferOutput) Stop() {
	b.mu.Lock()
	b.running = false
	b.ring = nil
	onStop := b.onStop
	b.mu.Unlock()
	if onStop != nil {
		onStop()
	}
}

func (b *bufferOutput) OnStart(fn func())                    { b.mu.Lock(); b.onStart = fn; b.mu.Unlock() }
func (b *bufferOutput) OnStop(fn func())                     { b.mu.Lock(); b.onStop = fn; b.mu.Unlock() }
func (b *bufferOutput) OnBufferFinished(fn func(filename string)) {
	b.mu.Lock()
	b.onFinish = fn
	b.mu.Unlock()
}

// Write appends an encoded chunk to the ring, trimming from the front once
// bufferCapacityBytes is exceeded.
func (b *bufferOutput) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return fmt.Errorf("recording: buffer output %q is not running", b.filename)
	}
	b.ring = append(b.ring, data...)
	if overflow := len(b.ring) - bufferCapacityBytes; overflow > 0 {
		b.ring = b.ring[overflow:]
	}
	return nil
}

// PreciseBuffer flushes the current ring contents to filename and fires
// OnBufferFinished, matching save_recording_buffer's one-shot flush
// (spec.md §4.9).
func (b *bufferOutput) PreciseBuffer(filename string) error {
	b.mu.Lock()
	snapshot := append([]byte(nil), b.ring...)
	onFinish := b.onFinish
	b.mu.Unlock()

	if err := outputsink.PutBytes(context.Background(), b.sink, filename, snapshot); err != nil {
		return err
	}
	if onFinish != nil {
		onFinish(filename)
	}
	return nil
}
