package main

import (
	"testing"

	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/ustr"
)

func testConfig() Config {
	return Config{RAMSize: 64 << 20, TimerFrequency: 1000}
}

func TestNewKernelConstructsRunningKernelProc(t *testing.T) {
	k, kp, ok := NewKernel(testConfig())
	if !ok {
		t.Fatal("NewKernel failed")
	}
	if kp.Pid != 1 {
		t.Errorf("kernel proc pid = %d, want 1", kp.Pid)
	}
	if k.Procs().Current().Pid != kp.Pid {
		t.Error("Procs().Current() does not match the returned kernel proc")
	}
}

func TestBootRegistersDevicesAndFilesystems(t *testing.T) {
	k, _, ok := NewKernel(testConfig())
	if !ok {
		t.Fatal("NewKernel failed")
	}
	if err := k.Boot(testConfig()); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	for _, id := range []int{defs.D_CONSOLE, defs.D_DEVNULL, defs.D_STAT, defs.D_PROF} {
		if _, ok := k.Devices().Lookup(uint(id)); !ok {
			t.Errorf("device id %d was not registered by Boot", id)
		}
	}

	if _, err := k.FS().Lookup(ustr.MkUstrRoot()); err != 0 {
		t.Errorf("root lookup after Boot failed: %v", err)
	}
	if _, err := k.FS().Lookup(ustr.Mk("/proc/version")); err != 0 {
		t.Errorf("/proc/version lookup after Boot failed: %v", err)
	}
}

func TestMemInfoAndCPUInfoAreNonEmpty(t *testing.T) {
	k, _, ok := NewKernel(testConfig())
	if !ok {
		t.Fatal("NewKernel failed")
	}
	if k.MemInfo() == "" {
		t.Error("MemInfo() returned an empty string")
	}
	if k.CPUInfo() == "" {
		t.Error("CPUInfo() returned an empty string")
	}
}

func TestAddressSpaceRoundTripThroughKernel(t *testing.T) {
	k, _, ok := NewKernel(testConfig())
	if !ok {
		t.Fatal("NewKernel failed")
	}
	as, ok := k.NewAddressSpace()
	if !ok {
		t.Fatal("NewAddressSpace failed")
	}
	const va = 0x40000000
	if !k.MapPages(as, va, 4096, 2 /* writable */) {
		t.Fatal("MapPages failed")
	}
	pa, ok := k.Translate(as, va)
	if !ok {
		t.Fatal("Translate failed to resolve a just-mapped page")
	}
	if pa == 0 {
		t.Error("Translate returned physical address 0 for a mapped page")
	}
}

func TestItoaFormatsNegativeAndZero(t *testing.T) {
	cases := map[int]string{0: "0", 7: "7", -12: "-12", 100: "100"}
	for in, want := range cases {
		if got := itoa(in); got != want {
			t.Errorf("itoa(%d) = %q, want %q", in, got, want)
		}
	}
}
