// Copyright ©2025 The vsbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command vsbench runs the cross-backend benchmark suite: every scenario is
// timed on the reference and candidate backends, reported on one line, and
// verified for numerical agreement. The exit status is non-zero when any
// scenario fails verification.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/LynnColeArt/vsbench"
	"github.com/LynnColeArt/vsbench/suite"
)

func main() {
	var (
		trials  = flag.Int("trials", vsbench.DefaultTrials, "Timed trials per measurement")
		logDir  = flag.String("log", "", "Directory for JSON session logs (disabled when empty)")
		atol    = flag.Float64("atol", vsbench.DefaultAtol, "Absolute verification tolerance")
		rtol    = flag.Float64("rtol", vsbench.DefaultRtol, "Relative verification tolerance")
		version = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		v, sum := vsbench.Version()
		if v == "" {
			v = "unknown"
		}
		fmt.Println("vsbench", v, sum)
		return
	}

	cfg := vsbench.FromEnv()
	cfg.Trials = *trials

	devs, err := suite.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}

	h := vsbench.New(devs.Cand)
	h.Trials = cfg.Trials
	h.Atol = *atol
	h.Rtol = *rtol

	if *logDir != "" {
		rl, err := vsbench.NewRunLog(*logDir, "vsbench")
		if err != nil {
			log.Fatalf("Failed to create run log: %v", err)
		}
		h.Log = rl
	}

	runErr := suite.Run(h, devs, cfg)
	devs.Cand.Close()
	if h.Log != nil {
		fmt.Printf("Session log: %s\n", h.Log.File())
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
