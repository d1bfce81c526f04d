package main

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inamate/vecpad/internal/discovery"
)

type editorCall struct {
	path   string
	sample bool
	called bool
}

func stubEditor(t *testing.T) *editorCall {
	t.Helper()
	got := &editorCall{}
	prev, prevLog := runEditor, slog.Default()
	runEditor = func(path string, sample bool) error {
		got.path, got.sample, got.called = path, sample, true
		return nil
	}
	t.Cleanup(func() {
		runEditor = prev
		slog.SetDefault(prevLog)
	})
	return got
}

func TestEditAction(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantPath   string
		wantSample bool
	}{
		{"no args", nil, "", false},
		{"file", []string{"pic.bin"}, "pic.bin", false},
		{"sample", []string{"--sample"}, "", true},
		{"log and file", []string{"--log", "LOG", "pic.bin"}, "pic.bin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stubEditor(t)
			logPath := filepath.Join(t.TempDir(), "vecview.log")
			args := []string{"vecview"}
			for _, a := range tt.args {
				args = append(args, strings.ReplaceAll(a, "LOG", logPath))
			}

			if err := makeapp(&bytes.Buffer{}).Run(args); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !got.called {
				t.Fatal("editor did not start")
			}
			if got.path != tt.wantPath || got.sample != tt.wantSample {
				t.Errorf("editor(%q, %v), want (%q, %v)", got.path, got.sample, tt.wantPath, tt.wantSample)
			}
		})
	}
}

func TestEditActionBadLogPath(t *testing.T) {
	got := stubEditor(t)
	bad := filepath.Join(t.TempDir(), "missing", "vecview.log")
	if err := makeapp(&bytes.Buffer{}).Run([]string{"vecview", "--log", bad}); err == nil {
		t.Error("expected an error for an unwritable log path")
	}
	if got.called {
		t.Error("editor should not start when the log cannot be opened")
	}
}

func TestDiscoverCommand(t *testing.T) {
	got := stubEditor(t)
	prev := browse
	t.Cleanup(func() { browse = prev })

	var timeout time.Duration
	browse = func(d time.Duration) ([]discovery.Server, error) {
		timeout = d
		return []discovery.Server{
			{Name: "studio", Addr: "10.0.0.2:8080", Info: map[string]string{"version": "1"}},
		}, nil
	}

	var out bytes.Buffer
	if err := makeapp(&out).Run([]string{"vecview", "discover", "--timeout", "500ms"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.called {
		t.Error("discover should not start the editor")
	}
	if timeout != 500*time.Millisecond {
		t.Errorf("timeout = %v, want 500ms", timeout)
	}
	if want := "studio\t10.0.0.2:8080\tversion=1\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	browse = func(time.Duration) ([]discovery.Server, error) { return nil, errors.New("no network") }
	if err := makeapp(&out).Run([]string{"vecview", "discover"}); err == nil {
		t.Error("expected the browse error")
	}
}
