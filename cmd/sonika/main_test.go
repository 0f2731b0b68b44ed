package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/oduortoni/sonika/internal/catalog"
	"github.com/oduortoni/sonika/internal/config"
)

func writeTunes(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Repeat("x", 2048)), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// resetFlags restores every flag in flags to its default value and marks it
// as not set.
func resetFlags(t *testing.T, flags *pflag.FlagSet) {
	t.Helper()
	flags.VisitAll(func(flag *pflag.Flag) {
		if err := flag.Value.Set(flag.DefValue); err != nil {
			t.Fatalf("Failed to reset --%s: %v", flag.Name, err)
		}
		flag.Changed = false
	})
}

// execute runs the root command with args, starting from default flag
// values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func() {
		rootCommand.SetOut(nil)
		rootCommand.SetArgs(nil)
		resetFlags(t, rootCommand.PersistentFlags())
		resetFlags(t, listCommand.Flags())
	}
	reset()
	t.Cleanup(reset)

	var out bytes.Buffer
	rootCommand.SetOut(&out)
	rootCommand.SetArgs(args)
	err := rootCommand.Execute()
	return out.String(), err
}

func TestListCommandJSON(t *testing.T) {
	dir := writeTunes(t, "song1.mp3", "notes.txt", "song2.MP3")

	out, err := execute(t, "list", "--tunes-dir", dir, "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	var list catalog.SongList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("Failed to decode %q: %v", out, err)
	}
	if len(list.Songs) != 1 || list.Songs[0] != "song1.mp3" {
		t.Errorf("songs = %v, want [song1.mp3]", list.Songs)
	}
}

func TestListCommandTable(t *testing.T) {
	dir := writeTunes(t, "a.ogg", "b.mp3")

	out, err := execute(t, "list", "--tunes-dir", dir, "--extension", "ogg")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "a.ogg") || !strings.Contains(out, "2.0 kB") {
		t.Errorf("list output = %q, want a.ogg with its size", out)
	}
	if strings.Contains(out, "b.mp3") {
		t.Errorf("list output = %q, should not contain b.mp3", out)
	}
}

func TestListCommandInvalidConfiguration(t *testing.T) {
	if _, err := execute(t, "list", "--extension", ".mp3"); err == nil {
		t.Error("list with an invalid extension should fail")
	}
	if _, err := execute(t, "list", "--config", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("list with a missing configuration file should fail")
	}
}

func TestListCommandFlagsDoNotLeak(t *testing.T) {
	dir := writeTunes(t, "a.ogg", "b.mp3")

	if _, err := execute(t, "list", "--tunes-dir", dir, "--extension", "ogg", "--json"); err != nil {
		t.Fatalf("list error = %v", err)
	}

	out, err := execute(t, "list", "--tunes-dir", dir)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "b.mp3") || strings.Contains(out, "a.ogg") {
		t.Errorf("list output = %q, want only b.mp3 with the default extension", out)
	}
	if strings.Contains(out, "{") {
		t.Errorf("list output = %q, want a table", out)
	}
	if flag := rootCommand.PersistentFlags().Lookup("extension"); flag.Changed {
		t.Error("--extension is still marked as set")
	}
}

func TestPrintBanner(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.StaticDir = filepath.Join(root, "static")
	cfg.TunesDir = filepath.Join(root, "tunes")
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}

	var out bytes.Buffer
	if err := printBanner(&out, cfg, addr); err != nil {
		t.Fatalf("printBanner() error = %v", err)
	}

	for _, want := range []string{cfg.StaticDir, cfg.TunesDir, "http://127.0.0.1:8080"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("banner = %q, want it to mention %q", out.String(), want)
		}
	}
}
