package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestInitLayout(t *testing.T) {
	r := testRepo(t)

	for _, d := range []string{"objects", "refs/heads", "refs/tags"} {
		p := filepath.Join(r.BkkDir, filepath.FromSlash(d))
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", d, err)
		}
	}

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.Symbolic != "refs/heads/main" {
		t.Errorf("HEAD: got %q, want refs/heads/main", head.Symbolic)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Core.RepositoryFormatVersion != 0 {
		t.Errorf("format version: got %d, want 0", cfg.Core.RepositoryFormatVersion)
	}
}

func TestInitRefusesExisting(t *testing.T) {
	r := testRepo(t)
	if _, err := Init(r.RootDir); err == nil {
		t.Error("second Init in the same directory should fail")
	}
}

func TestOpenWalksUp(t *testing.T) {
	r := testRepo(t)

	sub := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open from subdirectory: %v", err)
	}
	if opened.RootDir != r.RootDir {
		t.Errorf("RootDir: got %q, want %q", opened.RootDir, r.RootDir)
	}
}

func TestOpenNotARepository(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, ErrNotARepository) {
		t.Errorf("expected ErrNotARepository, got: %v", err)
	}
}

func TestOpenRejectsUnknownFormatVersion(t *testing.T) {
	r := testRepo(t)

	cfg := DefaultConfig()
	cfg.Core.RepositoryFormatVersion = 9
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	if _, err := Open(r.RootDir); err == nil {
		t.Error("expected error for unsupported format version")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := testRepo(t)

	cfg := DefaultConfig()
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	cfg.User.SigningKey = "~/.ssh/id_ed25519"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.User.Name != "Test User" || got.User.Email != "test@example.com" {
		t.Errorf("user config: got %+v", got.User)
	}
	if got.User.SigningKey != "~/.ssh/id_ed25519" {
		t.Errorf("signing key: got %q", got.User.SigningKey)
	}
}
