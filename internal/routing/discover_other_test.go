//go:build !linux

package routing

import "testing"

func TestDumpAODVUnavailableOffLinux(t *testing.T) {
	if _, err := DumpAODV("wlan0"); err == nil {
		t.Fatal("DumpAODV should report unavailable outside linux")
	}
}
