package caller

import (
	"strings"
	"testing"
)

func TestDumpIncludesThisFile(t *testing.T) {
	s := Dump(0)
	if !strings.Contains(s, "caller_test.go") {
		t.Errorf("Dump(0) = %q, want a frame mentioning caller_test.go", s)
	}
}

func TestDumpEmptyPastStackTop(t *testing.T) {
	s := Dump(1 << 20)
	if s != "" {
		t.Errorf("Dump with an absurd start depth = %q, want empty", s)
	}
}

func TestAssertPanicsOnFalse(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, "boom") {
			t.Errorf("panic value = %v, want it to start with \"boom\"", r)
		}
	}()
	Assert(false, "boom")
}

func TestAssertNoPanicOnTrue(t *testing.T) {
	Assert(true, "should never be seen")
}
