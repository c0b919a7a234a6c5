//go:build debug

package check

import "testing"

func TestAssertPanicsOnFalseInDebugBuilds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Assert(false, ...) should panic in a debug build")
		}
	}()
	Assert(false, "should panic")
}

func TestAssertNoopOnTrue(t *testing.T) {
	Assert(true, "never panics")
}
