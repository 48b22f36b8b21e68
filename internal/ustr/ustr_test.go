package ustr

import "testing"

func TestIsdotIsdotdot(t *testing.T) {
	if !Mk(".").Isdot() {
		t.Error(`Mk(".").Isdot() = false, want true`)
	}
	if Mk("..").Isdot() {
		t.Error(`Mk("..").Isdot() = true, want false`)
	}
	if !Mk("..").Isdotdot() {
		t.Error(`Mk("..").Isdotdot() = false, want true`)
	}
	if Mk("a").Isdotdot() {
		t.Error(`Mk("a").Isdotdot() = true, want false`)
	}
}

func TestEq(t *testing.T) {
	if !Mk("/foo/bar").Eq(Mk("/foo/bar")) {
		t.Error("identical paths compared unequal")
	}
	if Mk("/foo").Eq(Mk("/foobar")) {
		t.Error("differing paths compared equal")
	}
}

func TestIsAbsolute(t *testing.T) {
	if !Mk("/a").IsAbsolute() {
		t.Error(`Mk("/a").IsAbsolute() = false, want true`)
	}
	if Mk("a").IsAbsolute() {
		t.Error(`Mk("a").IsAbsolute() = true, want false`)
	}
	if MkUstr().IsAbsolute() {
		t.Error("empty Ustr reported absolute")
	}
}

func TestHasPrefixAndTrimPrefix(t *testing.T) {
	p := Mk("/usr/bin")
	full := Mk("/usr/bin/go")

	if !full.HasPrefix(p) {
		t.Fatalf("%q should have prefix %q", full, p)
	}
	if full.HasPrefix(Mk("/usr/bi")) {
		t.Error("partial path-component match reported as prefix")
	}
	if !Mk("/").HasPrefix(Mk("/")) {
		t.Error(`"/".HasPrefix("/") = false, want true`)
	}

	rest := full.TrimPrefix(p)
	if rest.String() != "/go" {
		t.Errorf("TrimPrefix = %q, want \"/go\"", rest)
	}

	exact := p.TrimPrefix(p)
	if exact.String() != "/" {
		t.Errorf("TrimPrefix of an exact match = %q, want \"/\"", exact)
	}
}

func TestExtend(t *testing.T) {
	got := Mk("/usr").Extend(Mk("bin"))
	if got.String() != "/usr/bin" {
		t.Errorf("Extend() = %q, want \"/usr/bin\"", got)
	}
}

func TestSplit(t *testing.T) {
	parts := Mk("/usr//bin/go/").Split()
	if len(parts) != 3 {
		t.Fatalf("Split() returned %d parts, want 3: %v", len(parts), parts)
	}
	want := []string{"usr", "bin", "go"}
	for i, p := range parts {
		if p.String() != want[i] {
			t.Errorf("part %d = %q, want %q", i, p, want[i])
		}
	}
}

func TestMkUstrRoot(t *testing.T) {
	if MkUstrRoot().String() != "/" {
		t.Errorf("MkUstrRoot() = %q, want \"/\"", MkUstrRoot())
	}
}
