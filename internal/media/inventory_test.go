package media

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var testExts = []string{".mp4", ".wav", ".mkv"}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(testLogger(), filepath.Join(t.TempDir(), "absent"), testExts)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("Scan() error = %v, want ErrMissingInput", err)
	}
}

func TestScanNoSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "image.png"))

	_, err := Scan(testLogger(), dir, testExts)
	if !errors.Is(err, ErrNoMediaFound) {
		t.Fatalf("Scan() error = %v, want ErrNoMediaFound", err)
	}
}

func TestScanFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_lecture.mp4"))
	touch(t, filepath.Join(dir, "a_interview.wav"))
	touch(t, filepath.Join(dir, "c_meeting.MKV")) // extension match is case-insensitive
	touch(t, filepath.Join(dir, "readme.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := Scan(testLogger(), dir, testExts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("Scan() returned %d files, want 3", len(files))
	}
	wantStems := []string{"a_interview", "b_lecture", "c_meeting"}
	for i, want := range wantStems {
		if files[i].Stem != want {
			t.Errorf("files[%d].Stem = %q, want %q", i, files[i].Stem, want)
		}
	}
	if files[2].Ext != ".mkv" {
		t.Errorf("files[2].Ext = %q, want lowercased %q", files[2].Ext, ".mkv")
	}
}

func TestScanIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.mp4", "m.wav", "a.mkv"} {
		touch(t, filepath.Join(dir, name))
	}

	first, err := Scan(testLogger(), dir, testExts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	second, err := Scan(testLogger(), dir, testExts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run order differs at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestNewFile(t *testing.T) {
	f := NewFile("/media/My.Talk.MP4")
	if f.Stem != "My.Talk" {
		t.Errorf("Stem = %q, want %q", f.Stem, "My.Talk")
	}
	if f.Ext != ".mp4" {
		t.Errorf("Ext = %q, want %q", f.Ext, ".mp4")
	}
}
