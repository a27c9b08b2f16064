// Package eager is the trusted reference backend of the harness: dense
// row-major float32 arrays with immediate execution, matrix multiplication
// through gonum's blas32.
//
// Two device variants exist. The host device runs every kernel inline and
// needs no completion barrier. The accel device models a unified-memory
// accelerator: kernels are submitted in order to a worker goroutine and the
// only way to synchronize is a trivial transfer to host memory, exposed as
// SyncTransfer.
package eager

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/LynnColeArt/vsbench"
)

// Device executes eager kernels. A nil task queue means synchronous host
// execution; otherwise kernels run FIFO on a worker goroutine.
type Device struct {
	name  string
	tasks chan func()
}

var hostDevice = &Device{name: hostName()}

// Host returns the synchronous host device.
func Host() *Device {
	return hostDevice
}

// OpenAccel starts a unified-memory accel device. Each call returns a fresh
// device with its own execution queue.
func OpenAccel() *Device {
	d := &Device{
		name:  "UMA",
		tasks: make(chan func(), 1024),
	}
	go d.worker()
	return d
}

func init() {
	vsbench.Register("host", func() (vsbench.Device, error) { return Host(), nil })
	vsbench.Register("accel", func() (vsbench.Device, error) { return OpenAccel(), nil })
}

// Name returns the device name, including the detected SIMD class for the
// host device.
func (d *Device) Name() string {
	return d.name
}

// SyncTransfer issues a one-element copy through the execution queue and
// blocks until it completes. On the host device it returns immediately.
// This is the accel device's only synchronization primitive; it has no
// queue-drain call.
func (d *Device) SyncTransfer() {
	if d.tasks == nil {
		return
	}
	var scratch [1]float32
	done := make(chan struct{})
	d.tasks <- func() {
		scratch[0] = 0
		close(done)
	}
	<-done
	_ = scratch
}

func (d *Device) worker() {
	for task := range d.tasks {
		task()
	}
}

// do runs a kernel body: inline on the host device, enqueued on accel.
// Output buffers are allocated before submission, so FIFO order preserves
// data dependencies between kernels.
func (d *Device) do(f func()) {
	if d.tasks == nil {
		f()
		return
	}
	d.tasks <- f
}

func hostName() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "CPU/AVX512"
	case cpu.X86.HasAVX2:
		return "CPU/AVX2"
	case runtime.GOARCH == "arm64":
		return "CPU/NEON"
	default:
		return "CPU"
	}
}
