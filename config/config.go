// Package config loads export settings and report definitions from YAML.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wudi/pdfexport/builder"
	"github.com/wudi/pdfexport/export"
	"github.com/wudi/pdfexport/raster"
	"github.com/wudi/pdfexport/report"
)

// Config is the root configuration structure.
type Config struct {
	Export ExportConfig `yaml:"export"`
	Report ReportConfig `yaml:"report"`

	// dir resolves relative paths; set by Load.
	dir string
}

// ExportConfig holds export settings. DPI and Quality are pointers to
// distinguish "not set" from an explicit value that gets clamped.
type ExportConfig struct {
	DPI          *int      `yaml:"dpi"`
	Quality      *int      `yaml:"quality"`
	Title        string    `yaml:"title"`
	Subject      string    `yaml:"subject"`
	Keywords     string    `yaml:"keywords"`
	Author       string    `yaml:"author"`
	Creator      string    `yaml:"creator"`
	Producer     string    `yaml:"producer"`
	CreationDate time.Time `yaml:"creation_date"`
	Font         string    `yaml:"font"`
}

// ReportConfig describes the pages of a report.
type ReportConfig struct {
	Name  string       `yaml:"name"`
	Pages []PageConfig `yaml:"pages"`
}

type PageConfig struct {
	Size       string           `yaml:"size"`
	Width      float64          `yaml:"width"`
	Height     float64          `yaml:"height"`
	Margins    []float64        `yaml:"margins"`
	Background string           `yaml:"background"`
	Border     *BorderConfig    `yaml:"border"`
	Watermark  *WatermarkConfig `yaml:"watermark"`
	Objects    []ObjectConfig   `yaml:"objects"`
}

type BorderConfig struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

type WatermarkConfig struct {
	Text  string  `yaml:"text"`
	Size  float64 `yaml:"size"`
	Color string  `yaml:"color"`
	Angle float64 `yaml:"angle"`
	Image string  `yaml:"image"`
	OnTop bool    `yaml:"on_top"`
}

// ObjectConfig is one page object. Type selects which fields apply.
type ObjectConfig struct {
	Type        string  `yaml:"type"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Text        string  `yaml:"text"`
	Size        float64 `yaml:"size"`
	Color       string  `yaml:"color"`
	Fill        string  `yaml:"fill"`
	Stroke      string  `yaml:"stroke"`
	StrokeWidth float64 `yaml:"stroke_width"`
	Align       string  `yaml:"align"`
	Link        string  `yaml:"link"`
	Path        string  `yaml:"path"`

	Columns    []float64  `yaml:"columns"`
	Rows       [][]string `yaml:"rows"`
	HeaderRows int        `yaml:"header_rows"`
	RowHeight  float64    `yaml:"row_height"`
}

// Page sizes in 96-dpi pixels.
var pageSizes = map[string][2]float64{
	"a3":     {1123, 1587},
	"a4":     {794, 1123},
	"a5":     {559, 794},
	"letter": {816, 1056},
	"legal":  {816, 1344},
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Settings converts the export block.
func (c *Config) Settings() export.Settings {
	e := c.Export
	s := export.Settings{
		Title:        e.Title,
		Subject:      e.Subject,
		Keywords:     e.Keywords,
		Author:       e.Author,
		Creator:      e.Creator,
		Producer:     e.Producer,
		CreationDate: e.CreationDate,
	}
	if e.DPI != nil {
		s.SetImageDPI(*e.DPI)
	}
	if e.Quality != nil {
		s.SetJPEGQuality(*e.Quality)
	}
	return s
}

// FontData reads the configured font file, or returns nil for the default.
func (c *Config) FontData() ([]byte, error) {
	if c.Export.Font == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.resolve(c.Export.Font))
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return data, nil
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// BuildReport turns the report block into a report.
func (c *Config) BuildReport() (*report.Memory, error) {
	if len(c.Report.Pages) == 0 {
		return nil, fmt.Errorf("report %q has no pages", c.Report.Name)
	}
	b := builder.NewBuilder().SetName(c.Report.Name)
	for i, pc := range c.Report.Pages {
		if err := c.addPage(b, pc); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	return b.Build()
}

func (c *Config) addPage(b builder.ReportBuilder, pc PageConfig) error {
	w, h := pc.Width, pc.Height
	if pc.Size != "" {
		sz, ok := pageSizes[strings.ToLower(pc.Size)]
		if !ok {
			return fmt.Errorf("unknown page size %q", pc.Size)
		}
		w, h = sz[0], sz[1]
	}
	p := b.NewPage(w, h)

	switch len(pc.Margins) {
	case 0:
	case 1:
		m := pc.Margins[0]
		p.SetMargins(m, m, m, m)
	case 4:
		p.SetMargins(pc.Margins[0], pc.Margins[1], pc.Margins[2], pc.Margins[3])
	default:
		return fmt.Errorf("margins need 1 or 4 values, got %d", len(pc.Margins))
	}
	if pc.Background != "" {
		col, err := ParseColor(pc.Background)
		if err != nil {
			return err
		}
		p.SetBackground(col)
	}
	if pc.Border != nil {
		col, err := optionalColor(pc.Border.Color)
		if err != nil {
			return err
		}
		p.SetBorder(col, pc.Border.Width)
	}
	if wm := pc.Watermark; wm != nil {
		opts := builder.WatermarkOptions{Text: wm.Text, FontSize: wm.Size, Angle: wm.Angle, OnTop: wm.OnTop}
		if wm.Color != "" {
			col, err := ParseColor(wm.Color)
			if err != nil {
				return err
			}
			opts.Color = &col
		}
		if wm.Image != "" {
			opts.Image = &report.FileImage{Path: c.resolve(wm.Image)}
		}
		p.SetWatermark(opts)
	}
	for i, oc := range pc.Objects {
		next, err := c.addObject(p, oc)
		if err != nil {
			return fmt.Errorf("object %d (%s): %w", i+1, oc.Type, err)
		}
		p = next
	}
	p.Finish()
	return nil
}

func (c *Config) addObject(p builder.PageBuilder, oc ObjectConfig) (builder.PageBuilder, error) {
	fg, err := optionalColor(oc.Color)
	if err != nil {
		return nil, err
	}
	align, err := parseAlign(oc.Align)
	if err != nil {
		return nil, err
	}
	switch oc.Type {
	case "text":
		opts := builder.TextOptions{FontSize: oc.Size, Color: fg, Align: align, Hyperlink: oc.Link}
		if oc.Fill != "" {
			bg, err := ParseColor(oc.Fill)
			if err != nil {
				return nil, err
			}
			opts.Background = &bg
		}
		return p.DrawText(oc.Text, oc.X, oc.Y, oc.Width, oc.Height, opts), nil
	case "rect":
		opts := builder.RectOptions{LineWidth: oc.StrokeWidth}
		if oc.Fill != "" {
			opts.Fill = true
			if opts.FillColor, err = ParseColor(oc.Fill); err != nil {
				return nil, err
			}
		}
		if oc.Stroke != "" {
			opts.Stroke = true
			if opts.StrokeColor, err = ParseColor(oc.Stroke); err != nil {
				return nil, err
			}
		}
		return p.DrawRectangle(oc.X, oc.Y, oc.Width, oc.Height, opts), nil
	case "line":
		return p.DrawLine(oc.X, oc.Y, oc.X+oc.Width, oc.Y+oc.Height, builder.LineOptions{StrokeColor: fg, LineWidth: oc.StrokeWidth}), nil
	case "image":
		if oc.Path == "" {
			return nil, fmt.Errorf("image needs a path")
		}
		src := &report.FileImage{Path: c.resolve(oc.Path)}
		return p.DrawImage(src, oc.X, oc.Y, oc.Width, oc.Height, builder.ImageOptions{Hyperlink: oc.Link}), nil
	case "table":
		t := builder.Table{Columns: oc.Columns, HeaderRows: oc.HeaderRows}
		for _, r := range oc.Rows {
			row := builder.TableRow{}
			for _, cell := range r {
				row.Cells = append(row.Cells, builder.TableCell{Text: cell, Align: align})
			}
			t.Rows = append(t.Rows, row)
		}
		stroke, err := optionalColor(oc.Stroke)
		if err != nil {
			return nil, err
		}
		return p.DrawTable(t, builder.TableOptions{
			X: oc.X, Y: oc.Y,
			BorderColor: stroke,
			BorderWidth: oc.StrokeWidth,
			FontSize:    oc.Size,
			TextColor:   fg,
			RowHeight:   oc.RowHeight,
		}), nil
	}
	return nil, fmt.Errorf("unknown object type %q", oc.Type)
}

func parseAlign(s string) (raster.Align, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return raster.AlignLeft, nil
	case "center", "centre":
		return raster.AlignCenter, nil
	case "right":
		return raster.AlignRight, nil
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

func optionalColor(s string) (builder.Color, error) {
	if s == "" {
		return builder.Color{}, nil
	}
	return ParseColor(s)
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (builder.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return builder.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return builder.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	a := uint64(0xFF)
	if len(hex) == 8 {
		a = v & 0xFF
		v >>= 8
	}
	c := builder.Color{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
		A: float64(a) / 255,
	}
	if a == 0 {
		// The builder reads a zero A as opaque.
		c.A = 1.0 / 512
	}
	return c, nil
}
