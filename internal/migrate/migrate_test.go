package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/and161185/newsdesk/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	files, err := Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for _, name := range files {
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		b, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		body := string(b)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s lacks goose annotations", name)
		}
	}
}
