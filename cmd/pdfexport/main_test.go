package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const reportYAML = `
export:
  dpi: 96
  title: "Résumé"
report:
  name: CLI
  pages:
    - width: 120
      height: 80
      objects:
        - {type: text, x: 4, y: 4, width: 100, height: 20, text: "Page [Page#]"}
`

func TestRenderVerifyInfo(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "report.yaml")
	if err := os.WriteFile(cfgPath, []byte(reportYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outPath := filepath.Join(dir, "out.pdf")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"render", "-o", outPath, "-quality", "500", cfgPath}, &stdout, &stderr); err != nil {
		t.Fatalf("render: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 pages") {
		t.Fatalf("render output %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), `"msg":"export finished"`) {
		t.Fatalf("expected JSON log line, got %q", stderr.String())
	}

	stdout.Reset()
	if err := run([]string{"verify", outPath}, &stdout, &stderr); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(stdout.String(), "ok") {
		t.Fatalf("verify output %q", stdout.String())
	}

	stdout.Reset()
	if err := run([]string{"info", outPath}, &stdout, &stderr); err != nil {
		t.Fatalf("info: %v", err)
	}
	var got map[string][]infoEntry
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("info json: %v\n%s", err, stdout.String())
	}
	want := []infoEntry{{"Producer", "pdfexport"}, {"Title", "Résumé"}}
	if len(got["info"]) != 2 || got["info"][0] != want[0] || got["info"][1] != want[1] {
		t.Fatalf("info %v, want %v", got["info"], want)
	}
}

func TestUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	for _, args := range [][]string{nil, {"bogus"}, {"render", "x.yaml"}, {"verify"}} {
		if err := run(args, &stdout, &stderr); err != errUsage {
			t.Errorf("run(%q) = %v, want usage error", args, err)
		}
	}
}

func TestRenderRemovesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "report.yaml")
	bad := "report:\n  pages:\n    - width: 50\n      height: 50\n      objects:\n        - {type: image, x: 0, y: 0, width: 10, height: 10, path: missing.png}\n"
	if err := os.WriteFile(cfgPath, []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outPath := filepath.Join(dir, "out.pdf")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"render", "-o", outPath, cfgPath}, &stdout, &stderr); err == nil {
		t.Fatalf("expected failure for missing image")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatalf("partial output left behind: %v", err)
	}
}
