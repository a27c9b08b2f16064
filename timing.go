package vsbench

import (
	"time"
)

// DefaultTrials is the number of timed trials per measurement.
const DefaultTrials = 8

// Device identifies the execution backend of a result. Backends advertise
// optional behavior through the capability interfaces Drainer, TransferSyncer
// and Counters; the harness queries for them and degrades to no-ops when a
// capability is absent.
type Device interface {
	Name() string
}

// Drainer is implemented by devices with an execution queue that can be
// drained. Drain blocks until all previously enqueued work has completed.
type Drainer interface {
	Drain() error
}

// TransferSyncer is implemented by unified-memory devices that expose no
// queue-drain primitive. SyncTransfer issues a trivial transfer to host
// memory as a synchronization proxy and blocks until it completes.
type TransferSyncer interface {
	SyncTransfer()
}

// Counters is the work-counter contract of a candidate engine: cumulative
// operations performed and memory elements touched since the last Reset.
// The harness resets the counters before every timed trial and reads them
// after; it never writes them during execution.
type Counters interface {
	Reset()
	Read() (ops, mem uint64)
}

// NopCounters is used for backends that report no work. Read always
// returns zero.
type NopCounters struct{}

func (NopCounters) Reset() {}

func (NopCounters) Read() (ops, mem uint64) { return 0, 0 }

// Handle is a possibly deferred computation result. Build returns a Handle
// without performing work on a deferred backend; Force triggers execution
// (queued on asynchronous devices); Host transfers the materialized result
// into host memory and implies completion.
type Handle interface {
	Force() error
	Host() ([]float32, error)
	Shape() []int
	Device() Device
}

// BuildFunc constructs one invocation of a scenario computation. It is
// called once per timed trial so that no result is reused across trials.
type BuildFunc func() (Handle, error)

// Result is one backend's measurement: the materialized output, the minimum
// latency across trials, and the retained work counters.
type Result struct {
	Out   []float32
	Shape []int
	MinMs float64
	Ops   uint64
	Mem   uint64 // float32 elements touched
}

// barrier blocks until all asynchronously queued work for dev has completed.
// Devices without a drain or transfer-sync capability are synchronous and
// need no barrier.
func barrier(dev Device) error {
	switch d := dev.(type) {
	case Drainer:
		return d.Drain()
	case TransferSyncer:
		d.SyncTransfer()
	}
	return nil
}

// Measure times build over trials invocations. Each trial discards the
// previous handle, resets ctrs, builds and forces a fresh computation, and
// applies the device barrier before the end timestamp. The minimum elapsed
// time is retained, along with the counter snapshot of the last trial whose
// operation count was non-zero. A trial that hits a cache and reports zero
// work therefore does not clobber an earlier real measurement; if every
// trial reports zero work the counters stay zero, which is accepted.
func Measure(build BuildFunc, trials int, ctrs Counters) (*Result, error) {
	if trials <= 0 {
		trials = DefaultTrials
	}
	if ctrs == nil {
		ctrs = NopCounters{}
	}

	res := &Result{}
	var h Handle
	for i := 0; i < trials; i++ {
		h = nil // drop the previous result before recomputing
		ctrs.Reset()

		st := time.Now()
		var err error
		h, err = build()
		if err != nil {
			return nil, NewExecutionError("Measure", "build failed", err)
		}
		if err := h.Force(); err != nil {
			return nil, NewExecutionError("Measure", "force failed", err)
		}
		if err := barrier(h.Device()); err != nil {
			return nil, NewExecutionError("Measure", "barrier failed", err)
		}
		et := float64(time.Since(st)) / float64(time.Millisecond)

		if res.MinMs == 0 || et < res.MinMs {
			res.MinMs = et
		}
		if ops, mem := ctrs.Read(); ops != 0 {
			res.Ops, res.Mem = ops, mem
		}
	}

	out, err := h.Host()
	if err != nil {
		return nil, NewExecutionError("Measure", "host transfer failed", err)
	}
	res.Out = out
	res.Shape = h.Shape()
	return res, nil
}
