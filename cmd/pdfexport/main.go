package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/term"

	"github.com/wudi/pdfexport/config"
	"github.com/wudi/pdfexport/export"
	"github.com/wudi/pdfexport/observability"
	"github.com/wudi/pdfexport/xref"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "pdfexport: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  pdfexport render -o out.pdf [-dpi N] [-quality N] [-v] report.yaml\n")
	fmt.Fprintf(w, "  pdfexport verify file.pdf\n")
	fmt.Fprintf(w, "  pdfexport info file.pdf\n")
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	switch args[0] {
	case "render":
		return render(args[1:], stdout, stderr)
	case "verify":
		return verify(args[1:], stdout, stderr)
	case "info":
		return info(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return errUsage
}

func newLogger(w io.Writer, verbose bool) observability.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return observability.NewSlogLogger(slog.New(h))
}

func render(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "Output PDF path")
	dpi := fs.Int("dpi", 0, "Image resolution, clamped to [96, 1200] (overrides config)")
	quality := fs.Int("quality", 0, "JPEG quality, clamped to [10, 100] (overrides config)")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 || *out == "" {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	rep, err := cfg.BuildReport()
	if err != nil {
		return err
	}
	settings := cfg.Settings()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dpi":
			settings.SetImageDPI(*dpi)
		case "quality":
			settings.SetJPEGQuality(*quality)
		}
	})
	font, err := cfg.FontData()
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	bw := bufio.NewWriter(f)
	st, err := export.Export(bw, rep, settings,
		export.WithLogger(newLogger(stderr, *verbose)),
		export.WithFont(font))
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(*out)
		return err
	}
	fmt.Fprintf(stdout, "%s: %d pages, %d images (%d reused), %d bytes\n",
		*out, st.Pages, st.ImagesWritten, st.ImageCacheHits, st.Bytes)
	return nil
}

func openPDF(args []string, name string, stderr io.Writer) (*os.File, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return nil, errUsage
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return f, nil
}

func verify(args []string, stdout, stderr io.Writer) error {
	f, err := openPDF(args, "verify", stderr)
	if err != nil {
		return err
	}
	defer f.Close()
	tbl, err := xref.Verify(context.Background(), f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	fmt.Fprintf(stdout, "%s: ok, %d objects, xref at %d\n", f.Name(), len(tbl.Objects()), tbl.StartXRef())
	return nil
}

func info(args []string, stdout, stderr io.Writer) error {
	f, err := openPDF(args, "info", stderr)
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := xref.Info(context.Background(), f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return emitSection(stdout, "info", orderedInfo(keys, entries))
}

type infoEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func orderedInfo(keys []string, entries map[string]string) []infoEntry {
	out := make([]infoEntry, len(keys))
	for i, k := range keys {
		out[i] = infoEntry{Key: k, Value: entries[k]}
	}
	return out
}

func emitSection(w io.Writer, name string, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{name: payload})
}
