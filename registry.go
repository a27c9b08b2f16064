// Package vsbench capability-queryable backend registry
package vsbench

import "sync"

var (
	regMu    sync.Mutex
	registry = make(map[string]func() (Device, error))
)

// Register makes a backend device available under name. Backends register
// themselves from init; re-registering a name replaces the previous entry.
func Register(name string, open func() (Device, error)) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = open
}

// Open returns the device registered under name. An unregistered name is a
// MissingBackend error; callers that treat the backend as optional degrade
// to a synchronous device rather than failing.
func Open(name string) (Device, error) {
	regMu.Lock()
	open, ok := registry[name]
	regMu.Unlock()
	if !ok {
		return nil, NewMissingBackendError(name)
	}
	return open()
}
