package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilePersister_SaveLoadRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "newsdesk")
	p := NewFilePersister(dir, "news_management_token")

	if tok, err := p.Load(ctx); err != nil || tok != "" {
		t.Fatalf("missing file should load empty: %q %v", tok, err)
	}
	if err := p.Save(ctx, "tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(p.Path()) != "news_management_token.json" {
		t.Fatalf("unexpected path: %s", p.Path())
	}
	fi, err := os.Stat(p.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("perm=%v, want 0600", fi.Mode().Perm())
	}
	if err := p.Save(ctx, "tok2"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	tok, err := p.Load(ctx)
	if err != nil || tok != "tok2" {
		t.Fatalf("Load: %q %v", tok, err)
	}

	if err := p.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := p.Remove(ctx); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := os.Stat(p.Path()); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err=%v", err)
	}
}

func TestFilePersister_Corrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewFilePersister(dir, "k")
	if err := os.WriteFile(p.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := p.Load(context.Background()); err == nil {
		t.Fatalf("expected error on corrupt file")
	}
}

func TestFilePersister_ReloadThroughStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	s1 := NewStore(NewFilePersister(dir, "news_management_token"), nil)
	if err := s1.SetCredential(ctx, "persisted"); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}

	s2 := NewStore(NewFilePersister(dir, "news_management_token"), nil)
	if err := s2.LoadCredential(ctx); err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if s2.Credential() != "persisted" || s2.Identity() != nil {
		t.Fatalf("reload: cred=%q identity=%v", s2.Credential(), s2.Identity())
	}

	if err := s2.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	s3 := NewStore(NewFilePersister(dir, "news_management_token"), nil)
	_ = s3.LoadCredential(ctx)
	if s3.IsAuthenticated() {
		t.Fatalf("cleared credential must not come back")
	}
}
