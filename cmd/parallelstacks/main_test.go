package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getsentry/parallelstacks/internal/backtrace"
	"github.com/getsentry/parallelstacks/internal/render"
)

const dump = `Thread 2 (LWP 2):
#0  0x0000000000401136 in wait (x=1) at w.c:3
#1  0x0000000000401200 in main () at main.c:9

Thread 1 (LWP 1):
#0  0x0000000000401150 in poll (fd=3) at p.c:7
#1  0x0000000000401200 in main () at main.c:9
`

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: options{format: render.Text, retries: 2},
		},
		{
			name: "all flags",
			args: []string{"-format", "dot", "-max-depth", "3", "-v", "dump.txt"},
			want: options{format: render.DOT, maxDepth: 3, retries: 2, verbose: true, input: "dump.txt"},
		},
		{name: "unknown format", args: []string{"-format", "svg"}, wantErr: true},
		{name: "negative depth", args: []string{"-max-depth", "-1"}, wantErr: true},
		{name: "too many files", args: []string{"a", "b"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				return
			}
			got.timeout = 0
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunFromStdin(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{format: render.Text}, strings.NewReader(dump), &out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "  main\n    wait\n    poll\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte(dump), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err := run(context.Background(), options{format: render.Text, maxDepth: 1, input: path}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "  main\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunMalformedDump(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{format: render.Text}, strings.NewReader("Thread 1 (LWP 1):\n#0  main (\n"), &out)
	if !errors.Is(err, backtrace.ErrInvalidFormat) {
		t.Fatalf("expected a format error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != dump || r.URL.Query().Get("format") != "text" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("  main\n    wait\n    poll\n"))
	}))
	defer server.Close()

	var out bytes.Buffer
	o := options{format: render.Text, server: server.URL}
	if err := run(context.Background(), o, strings.NewReader(dump), &out); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "  main\n    wait\n    poll\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
