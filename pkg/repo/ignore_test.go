package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func ignoreCheckerFor(t *testing.T, rules string) *IgnoreChecker {
	t.Helper()
	dir := t.TempDir()
	if rules != "" {
		if err := os.WriteFile(filepath.Join(dir, ".bkkignore"), []byte(rules), 0o644); err != nil {
			t.Fatalf("write .bkkignore: %v", err)
		}
	}
	return NewIgnoreChecker(dir)
}

func TestIgnoreMetadataAlways(t *testing.T) {
	ic := ignoreCheckerFor(t, "")
	for _, p := range []string{".bkk", ".bkk/index", ".git", ".git/HEAD"} {
		if !ic.IsIgnored(p, false) {
			t.Errorf("%q should always be ignored", p)
		}
	}
	if ic.IsIgnored("src/main.go", false) {
		t.Error("regular file ignored with no rules")
	}
}

func TestIgnorePatterns(t *testing.T) {
	ic := ignoreCheckerFor(t, `
# build artifacts
*.o
build/
/top-only.txt
logs/*.log
`)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"main.o", false, true},
		{"src/deep/util.o", false, true}, // basename pattern matches any segment
		{"main.c", false, false},
		{"build", true, true},
		{"build/out.bin", false, true},
		{"top-only.txt", false, true},
		{"logs/app.log", false, true},
		{"logs/app.txt", false, false},
	}
	for _, tc := range cases {
		if got := ic.IsIgnored(tc.path, tc.isDir); got != tc.want {
			t.Errorf("IsIgnored(%q, %v): got %v, want %v", tc.path, tc.isDir, got, tc.want)
		}
	}
}

func TestIgnoreDirOnlyPattern(t *testing.T) {
	ic := ignoreCheckerFor(t, "build/\n")

	if !ic.IsIgnored("build", true) {
		t.Error("directory build should be ignored")
	}
	if !ic.IsIgnored("build/out.bin", false) {
		t.Error("file under ignored directory should be ignored")
	}
	if ic.IsIgnored("build", false) {
		t.Error("plain file named build should not match a dir-only pattern")
	}
	if ic.IsIgnored("src/build.go", false) {
		t.Error("unrelated file should not be ignored")
	}
}

func TestIgnoreNegation(t *testing.T) {
	ic := ignoreCheckerFor(t, "*.log\n!keep.log\n")

	if !ic.IsIgnored("debug.log", false) {
		t.Error("debug.log should be ignored")
	}
	if ic.IsIgnored("keep.log", false) {
		t.Error("keep.log should be re-included by negation")
	}
}

func TestIgnoreLaterRuleWins(t *testing.T) {
	ic := ignoreCheckerFor(t, "!special.txt\nspecial.txt\n")
	if !ic.IsIgnored("special.txt", false) {
		t.Error("later positive rule should override earlier negation")
	}
}
