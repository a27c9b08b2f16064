package vsbench

import "testing"

func TestVersion(t *testing.T) {
	// Test binaries are built with module support, so the main-module path
	// resolves; the version itself is toolchain-dependent ("" or "(devel)"
	// in development builds), so only stability is asserted.
	v1, sum1 := Version()
	v2, sum2 := Version()
	if v1 != v2 || sum1 != sum2 {
		t.Errorf("Version not stable: (%q, %q) then (%q, %q)", v1, sum1, v2, sum2)
	}
}
