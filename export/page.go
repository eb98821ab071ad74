package export

import (
	"github.com/wudi/pdfexport/coords"
	"github.com/wudi/pdfexport/ir/raw"
	"github.com/wudi/pdfexport/ir/semantic"
	"github.com/wudi/pdfexport/observability"
	"github.com/wudi/pdfexport/raster"
	"github.com/wudi/pdfexport/report"
)

type pageState struct {
	ref     raw.ObjectRef
	page    report.Page
	width   float64
	height  float64
	content coords.Rect
	canvas  *raster.Canvas
	links   []semantic.Link
}

func (ps *pageState) release() {
	if ps.canvas != nil {
		ps.canvas.Release()
	}
}

// BeginPage reserves the page object and paints the background, the
// bottom watermark and the border. A page whose bitmap would exceed the
// pixel limit is kept without an image.
func (e *Exporter) BeginPage(p report.Page) error {
	if !e.started {
		return ErrNotStarted
	}
	if e.done {
		return ErrExportClosed
	}
	if e.page != nil {
		return ErrPageOpen
	}
	w, h := p.Size()
	m := p.Margins()
	ps := &pageState{
		ref:     e.w.Prepare(),
		page:    p,
		width:   w,
		height:  h,
		content: coords.Rect{W: w, H: h}.Inset(m.Left, m.Top, m.Right, m.Bottom),
	}
	e.page = ps
	e.dom.page = len(e.kids) + 1
	log := e.log.With(observability.Int("page", e.dom.page))

	canvas, err := raster.NewCanvas(w, h, e.settings.ImageDPI(), e.fonts)
	if err != nil {
		if !isTooLarge(err) {
			return err
		}
		e.skipped++
		log.Warn("page bitmap too large, writing page without image", observability.Error("error", err))
		return nil
	}
	ps.canvas = canvas
	log.Debug("page begin",
		observability.Int("width_px", canvas.Image().Bounds().Dx()),
		observability.Int("height_px", canvas.Image().Bounds().Dy()))

	if err := canvas.Clear(pageFill(p)); err != nil {
		return err
	}
	page := canvas.Context(0, 0, e.expand)
	if wm := p.Watermark(); wm != nil && !wm.OnTop {
		if err := wm.Draw(page); err != nil {
			return err
		}
	}
	return p.Border().Draw(page, ps.content)
}

// DrawComponent paints c on the open page and records its hyperlink.
func (e *Exporter) DrawComponent(c report.Component) error {
	ps := e.page
	if ps == nil {
		return ErrNoPage
	}
	if l, ok := c.(report.Linker); ok && l.LinkTarget() != "" {
		r := c.Bounds().Offset(ps.content.X, ps.content.Y)
		ps.links = append(ps.links, semantic.Link{Rect: pdfRect(r, ps.height), URI: l.LinkTarget()})
	}
	if ps.canvas == nil {
		return nil
	}
	return c.Draw(ps.canvas.Context(ps.content.X, ps.content.Y, e.expand))
}

// EndPage paints the top watermark, writes the page image through the
// image store, then the content stream, link annotations and page object.
func (e *Exporter) EndPage() error {
	ps := e.page
	if ps == nil {
		return ErrNoPage
	}
	defer func() {
		ps.release()
		e.page = nil
	}()

	mediaBox := semantic.Rectangle{URX: ps.width * coords.PointsPerPixel, URY: ps.height * coords.PointsPerPixel}
	pg := semantic.Page{Parent: e.pagesRef, MediaBox: mediaBox}

	if ps.canvas != nil {
		if wm := ps.page.Watermark(); wm != nil && wm.OnTop {
			if err := wm.Draw(ps.canvas.Context(0, 0, e.expand)); err != nil {
				return err
			}
		}
		img, err := e.store.AppendImage(ps.canvas.Image(), e.settings.JPEGQuality())
		if err != nil {
			return err
		}
		var contents semantic.Contents
		contents.DrawImage(img.Name, mediaBox)
		pg.Contents, err = e.write(&contents)
		if err != nil {
			return err
		}
		pg.XObjects = map[string]raw.ObjectRef{img.Name: img.Ref}
	}
	for _, l := range ps.links {
		ref, err := e.write(l)
		if err != nil {
			return err
		}
		pg.Annots = append(pg.Annots, ref)
	}
	if err := e.writeObject(ps.ref, pg); err != nil {
		return err
	}
	e.kids = append(e.kids, ps.ref)
	e.log.Debug("page end", observability.Int("page", len(e.kids)), observability.Int("links", len(ps.links)))
	return nil
}
