package render

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestBrowserURL(t *testing.T) {
	got, err := browserURL("http://localhost:8080/")
	if err != nil {
		t.Fatalf("browserURL: %v", err)
	}
	if got != "http://localhost:8080/" {
		t.Errorf("browserURL passed URL through as %q", got)
	}

	if runtime.GOOS == "windows" {
		t.Skip("file URL layout differs on windows")
	}
	dir := t.TempDir()
	got, err = browserURL(filepath.Join(dir, "lacI result.html"))
	if err != nil {
		t.Fatalf("browserURL: %v", err)
	}
	if !strings.HasPrefix(got, "file:///") {
		t.Errorf("expected file:/// URL, got %q", got)
	}
	if !strings.HasSuffix(got, "/lacI%20result.html") {
		t.Errorf("expected escaped file name, got %q", got)
	}
}
