package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadUnitsJSONL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mix_chunk.jsonl",
		`{"hash_code": "a1", "text": "first chunk"}`+"\n"+
			"\n"+
			`{"hash_code": "b2", "text": "second chunk"}`+"\n")

	units, err := ReadUnits(path)
	if err != nil {
		t.Fatalf("ReadUnits: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].DocName != "mix_chunk" || units[0].SourceID != "a1" || units[0].Text != "first chunk" {
		t.Errorf("units[0] = %+v", units[0])
	}
}

func TestReadUnitsJSONArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "arr.jsonl",
		`[{"hash_code": "a1", "text": "one"}, {"hash_code": "b2", "text": "two"}]`)

	units, err := ReadUnits(path)
	if err != nil {
		t.Fatalf("ReadUnits: %v", err)
	}
	if len(units) != 2 || units[1].SourceID != "b2" {
		t.Errorf("units = %+v", units)
	}
}

func TestReadUnitsHashFallback(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nohash.jsonl", `{"text": "no id here"}`+"\n")

	units, err := ReadUnits(path)
	if err != nil {
		t.Fatalf("ReadUnits: %v", err)
	}
	if units[0].SourceID != HashID("no id here") {
		t.Errorf("SourceID = %q, want content hash", units[0].SourceID)
	}
}

func TestReadUnitsMalformedLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.jsonl", "{not json}\n")
	if _, err := ReadUnits(path); err == nil {
		t.Fatal("expected error for malformed corpus line")
	}
}

func TestReadEntityList(t *testing.T) {
	path := writeFile(t, t.TempDir(), "entities.txt",
		"Paris\n\n# a comment\nFrance\nParis\n  Tokyo  \n")

	got, err := ReadEntityList(path)
	if err != nil {
		t.Fatalf("ReadEntityList: %v", err)
	}
	want := []string{"Paris", "France", "Tokyo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadEntityList = %v, want %v", got, want)
	}
}

func TestStem(t *testing.T) {
	tests := []struct{ path, want string }{
		{"corpus/mix_chunk.jsonl", "mix_chunk"},
		{"mix_chunk.jsonl", "mix_chunk"},
		{"/abs/path/data.txt", "data"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestListCorpusFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl", "{}")
	writeFile(t, dir, "b.jsonl", "{}")
	writeFile(t, dir, "notes.txt", "skip me")

	// Single file resolves to itself.
	files, err := ListCorpusFiles(a)
	if err != nil || len(files) != 1 || files[0] != a {
		t.Fatalf("files = %v, err = %v", files, err)
	}

	// Directory resolves to its .jsonl entries only.
	files, err = ListCorpusFiles(dir)
	if err != nil {
		t.Fatalf("ListCorpusFiles: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want the two .jsonl files", files)
	}

	empty := t.TempDir()
	if _, err := ListCorpusFiles(empty); err == nil {
		t.Error("expected error for a directory without corpus files")
	}
}
