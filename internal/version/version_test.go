package version

import "testing"

func TestUnameFields(t *testing.T) {
	u := Uname()
	if u.Sysname != "BXKernel" {
		t.Errorf("Sysname = %q, want \"BXKernel\"", u.Sysname)
	}
	if u.Machine != "x86_64" {
		t.Errorf("Machine = %q, want \"x86_64\"", u.Machine)
	}
	if u.Version != VersionLine() {
		t.Errorf("Version = %q, want %q", u.Version, VersionLine())
	}
}

func TestVersionLineFormat(t *testing.T) {
	if got := VersionLine(); got != "BXKernel x86_64\n" {
		t.Errorf("VersionLine() = %q, want \"BXKernel x86_64\\n\"", got)
	}
}

func TestReleaseIsValidSemver(t *testing.T) {
	if !IsValidRelease() {
		t.Errorf("Release %q is not a valid semver tag", Release)
	}
}
