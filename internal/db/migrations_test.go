package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAsyncStorageDump(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "ObjectForm",
			input: `{"@durood_count":"12","@durood_date":"2026-10-16","@unused":null}`,
			want:  map[string]string{"@durood_count": "12", "@durood_date": "2026-10-16"},
		},
		{
			name:  "PairForm",
			input: `[["@istighfar_2026-10-16","{\"total\":3,\"details\":{\"0\":3}}"],["@x",null],["bad"]]`,
			want:  map[string]string{"@istighfar_2026-10-16": `{"total":3,"details":{"0":3}}`},
		},
		{
			name:    "Invalid",
			input:   `"just a string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAsyncStorageDump([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestReadAsyncStorageDump_MissingFile(t *testing.T) {
	if _, err := ReadAsyncStorageDump(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportEntries(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := db.Set(ctx, "@istighfar_2026-10-16", "existing"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dump.json")
	dump := `{"@istighfar_2026-10-16":"5","@istighfar_2026-10-15":"4","@theme":"dark"}`
	if err := os.WriteFile(path, []byte(dump), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	entries, err := ReadAsyncStorageDump(path)
	if err != nil {
		t.Fatalf("ReadAsyncStorageDump failed: %v", err)
	}

	n, err := db.ImportEntries(ctx, entries, []string{"@istighfar_"})
	if err != nil {
		t.Fatalf("ImportEntries failed: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d entries, want 1", n)
	}

	v, _, _ := db.Get(ctx, "@istighfar_2026-10-16")
	if v != "existing" {
		t.Errorf("existing key overwritten: %q", v)
	}
	if _, ok, _ := db.Get(ctx, "@theme"); ok {
		t.Error("key outside prefixes was imported")
	}
}
