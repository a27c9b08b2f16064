// Package tensor is the candidate backend of the harness: a
// deferred-evaluation tensor engine. Movement operations are zero-copy
// strided views, elementwise operations build fused per-element closures,
// and reductions, matrix multiplication, convolution and contiguous
// materialization become kernels enqueued on a FIFO device stream only when
// a result is forced.
//
// Every kernel reports its work to the device's counters: operations
// performed and float32 elements touched. The harness resets and reads the
// counters around each timed trial.
package tensor

import (
	"sync"
	"sync/atomic"

	"github.com/LynnColeArt/vsbench"
)

// Device owns an execution stream and the work counters of every kernel
// that runs on it.
type Device struct {
	name   string
	stream *Stream
	ops    uint64
	mem    uint64
}

// New creates a device with a fresh execution stream.
func New() *Device {
	return &Device{
		name:   "STREAM",
		stream: newStream(),
	}
}

func init() {
	vsbench.Register("stream", func() (vsbench.Device, error) { return New(), nil })
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Drain blocks until all previously enqueued kernels have completed.
func (d *Device) Drain() error {
	d.stream.Synchronize()
	return nil
}

// Close shuts down the device's stream. The device is unusable afterwards.
func (d *Device) Close() {
	d.stream.Close()
}

// Reset clears the work counters. Callers reset only while the stream is
// drained; the engine never resets on its own.
func (d *Device) Reset() {
	atomic.StoreUint64(&d.ops, 0)
	atomic.StoreUint64(&d.mem, 0)
}

// Read returns cumulative operations performed and float32 elements touched
// since the last Reset.
func (d *Device) Read() (ops, mem uint64) {
	return atomic.LoadUint64(&d.ops), atomic.LoadUint64(&d.mem)
}

// count is called by kernels as they execute on the stream goroutine.
func (d *Device) count(ops, mem uint64) {
	atomic.AddUint64(&d.ops, ops)
	atomic.AddUint64(&d.mem, mem)
}

// Stream is an ordered execution queue. Kernels submitted to a stream run
// one at a time in submission order on a worker goroutine.
type Stream struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

func newStream() *Stream {
	s := &Stream{
		tasks: make(chan func(), 1024),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Submit adds a kernel to the stream.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all submitted kernels to complete.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Close waits for all submitted kernels, stops the worker goroutine and
// blocks until it has exited. Submitting to a closed stream panics.
func (s *Stream) Close() {
	s.wg.Wait()
	close(s.tasks)
	<-s.done
}
