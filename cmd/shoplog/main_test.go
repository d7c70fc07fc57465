package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shoplog/internal/config"
	"github.com/verte-zerg/shoplog/internal/logfile"
	"github.com/verte-zerg/shoplog/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolateXDG(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(t.TempDir(), "data"))
}

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

const shopPrefix = "12:00:01 [INFO] [Shop] » "

func TestAnalyzeFile(t *testing.T) {
	isolateXDG(t)
	path := writeLog(t, t.TempDir(), "server.log",
		shopPrefix+"Gracz1 zakupil Gigabox (x1)",
		shopPrefix+"Gracz1 zakupil Gigabox (x1)",
		"12:00:02 [INFO] [Shop] » Gracz1 ᴢᴀᴋᴜᴘɪʟ Mały zestaw kluczy",
		"short",
	)

	out, err := runCLI(t, path, "--no-color")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{
		"=== Purchase Summary ===",
		"=== Player Purchase Summary ===",
		"1. gracz1 - spent: 29.98 PLN",
		"   Items: gigabox (x1) (1x), maly zestaw kluczy (1x)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeDiscoversSingleFile(t *testing.T) {
	isolateXDG(t)
	dir := t.TempDir()
	writeLog(t, dir, "only.log", shopPrefix+"kowal zakupil kamien")

	out, err := runCLI(t, "--dir", dir, "--currency", "EUR")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "1. kowal - spent: 0.00 EUR") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestAnalyzeMultipleFilesNonInteractive(t *testing.T) {
	isolateXDG(t)
	dir := t.TempDir()
	writeLog(t, dir, "a.log", shopPrefix+"kowal zakupil kamien")
	writeLog(t, dir, "b.log", shopPrefix+"kowal zakupil kamien")

	if _, err := runCLI(t, "--dir", dir); err != errMultipleFiles {
		t.Fatalf("expected errMultipleFiles, got %v", err)
	}
}

func TestAnalyzeNoLogFiles(t *testing.T) {
	isolateXDG(t)
	_, err := runCLI(t, "--dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), logfile.ErrNoLogFiles.Error()) {
		t.Fatalf("expected no log files error, got %v", err)
	}
}

func TestAnalyzeUsesConfigPrices(t *testing.T) {
	isolateXDG(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[analyze]\ncurrency = \"EUR\"\n\n[prices]\nkamien = 1.25\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	path := writeLog(t, t.TempDir(), "server.log",
		shopPrefix+"kowal zakupil kamien",
		"12:01:09 [INFO] [Shop] » kowal zakupil kamien",
	)

	out, err := runCLI(t, path, "--currency", "USD")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "1. kowal - spent: 2.50 USD") {
		t.Fatalf("expected flag to override config currency:\n%s", out)
	}
}

func TestCatalogSetAndList(t *testing.T) {
	isolateXDG(t)
	db := filepath.Join(t.TempDir(), "catalog.db")

	if _, err := runCLI(t, "--catalog-db", db, "catalog", "set", "Kamień", "1.5"); err != nil {
		t.Fatalf("catalog set failed: %v", err)
	}
	out, err := runCLI(t, "--catalog-db", db, "catalog")
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	found := false
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "kamien ") && strings.Contains(line, "1.50") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stored price in catalog:\n%s", out)
	}

	if _, err := runCLI(t, "--catalog-db", db, "catalog", "set", "kamien", "abc"); err == nil {
		t.Fatalf("expected error for invalid price")
	}
}

func TestSampleRoundTrip(t *testing.T) {
	isolateXDG(t)
	path := filepath.Join(t.TempDir(), "logs", "sample.log")
	if _, err := runCLI(t, "sample", "--purchases", "50", "--seed", "7", "--out", path); err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	lines, err := logfile.ReadLines(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(lines) < 50 {
		t.Fatalf("expected at least 50 lines, got %d", len(lines))
	}

	out, err := runCLI(t, path)
	if err != nil {
		t.Fatalf("analyze sample failed: %v", err)
	}
	if !strings.Contains(out, "=== Purchase Summary ===") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{Workers: 0, Width: defaultWidth, Currency: defaultCurrency}
	if err := validateConfig(base); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	bad := []model.Config{
		{Workers: -1, Width: defaultWidth, Currency: "PLN"},
		{Workers: 1, Width: minWidth - 1, Currency: "PLN"},
		{Workers: 1, Width: defaultWidth, Currency: "  "},
	}
	for _, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestApplyIntConfig(t *testing.T) {
	cmd := &cobra.Command{}
	var workers int
	cmd.Flags().IntVar(&workers, "workers", 0, "")

	value := 6
	applyIntConfig(cmd, "workers", &workers, &value)
	if workers != 6 {
		t.Fatalf("expected config value, got %d", workers)
	}

	if err := cmd.Flags().Set("workers", "2"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyIntConfig(cmd, "workers", &workers, &value)
	if workers != 2 {
		t.Fatalf("expected flag to win, got %d", workers)
	}
	applyIntConfig(cmd, "workers", &workers, nil)
	if workers != 2 {
		t.Fatalf("expected nil config to be ignored, got %d", workers)
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Analyze.Workers != nil || len(cfg.Prices) != 0 {
		t.Fatalf("expected all template values commented out, got %+v", cfg)
	}
}
