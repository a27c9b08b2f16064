// Package vsbench environment-driven configuration
package vsbench

import (
	"os"
	"strconv"
	"strings"
)

// DefaultInChans is the convolution input-channel sweep when IN_CHANS is
// unset.
var DefaultInChans = []int{4, 16, 64}

// Config holds the startup configuration of a benchmark run. It is read
// once from the environment; flags in cmd/vsbench may override fields.
type Config struct {
	// InChans is the input-channel sweep for convolution scenarios.
	InChans []int

	// Accel selects the alternate accelerator device for the reference
	// backend instead of default host execution.
	Accel bool

	// Trials overrides the per-measurement trial count when positive.
	Trials int
}

// FromEnv reads configuration from the process environment:
//
//	IN_CHANS  comma-separated channel counts, default "4,16,64"
//	ACCEL     boolean-like flag, default off
//
// Malformed values fall back to the defaults.
func FromEnv() Config {
	cfg := Config{InChans: DefaultInChans}

	if s := os.Getenv("IN_CHANS"); s != "" {
		var chans []int
		for _, f := range strings.Split(s, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || n <= 0 {
				chans = nil
				break
			}
			chans = append(chans, n)
		}
		if len(chans) > 0 {
			cfg.InChans = chans
		}
	}

	if s := os.Getenv("ACCEL"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			cfg.Accel = v
		} else if n, err := strconv.Atoi(s); err == nil {
			cfg.Accel = n != 0
		}
	}

	return cfg
}
