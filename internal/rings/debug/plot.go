package debug

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/growthrings/internal/fsutil"
	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// ReportFile is the convergence report written by Flush.
const ReportFile = "convergence.html"

var mutedChain = color.RGBA{R: 150, G: 150, B: 150, A: 255}

// PlotObserver draws each checkpoint as a PNG over a grayscale copy of the
// reference image. Every run writes into its own directory below the output
// directory. Render failures are logged and counted, never returned.
type PlotObserver struct {
	fs         fsutil.FileSystem
	dir        string
	background image.Image
	names      map[string]bool
	collector  *Collector

	rendered int
	failed   int
}

// NewPlotObserver prepares a run directory under outputDir. img may be nil.
// When names are given only those checkpoints are drawn; all are counted.
func NewPlotObserver(fs fsutil.FileSystem, outputDir string, img image.Image, names ...string) (*PlotObserver, error) {
	dir := filepath.Join(outputDir, "ringmerge-"+uuid.NewString())
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	po := &PlotObserver{
		fs:        fs,
		dir:       dir,
		collector: NewCollector(),
	}
	po.collector.SetEnabled(true)
	if img != nil {
		po.background = imaging.Grayscale(img)
	}
	if len(names) > 0 {
		po.names = make(map[string]bool, len(names))
		for _, n := range names {
			po.names[n] = true
		}
	}
	diagf("debug output in %s", dir)
	return po, nil
}

// Dir is the run directory.
func (po *PlotObserver) Dir() string { return po.dir }

// Rendered is the number of images written.
func (po *PlotObserver) Rendered() int { return po.rendered }

// Failed is the number of checkpoints that could not be drawn.
func (po *PlotObserver) Failed() int { return po.failed }

// Passes exposes the per-pass tallies.
func (po *PlotObserver) Passes() []PassRecord { return po.collector.Passes() }

// Observe implements Observer.
func (po *PlotObserver) Observe(cp Checkpoint) {
	po.collector.Observe(cp)
	if po.names != nil && !po.names[cp.Name] {
		return
	}

	name := fmt.Sprintf("pass%d_%05d_%s.png", cp.Pass, cp.Step, cp.Name)
	if err := po.render(cp, filepath.Join(po.dir, name)); err != nil {
		po.failed++
		opsf("render %s: %v", name, err)
		return
	}
	po.rendered++
	tracef("wrote %s (%d chains)", name, len(cp.Chains))
}

// Flush writes the convergence report.
func (po *PlotObserver) Flush() error {
	path := filepath.Join(po.dir, ReportFile)
	f, err := po.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	passes := po.collector.Passes()
	subtitle := fmt.Sprintf("%d images, %d failed", po.rendered, po.failed)
	if err := WriteConvergenceReport(f, passes, subtitle); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	diagf("wrote %s for %d passes", path, len(passes))
	return nil
}

func (po *PlotObserver) render(cp Checkpoint, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("pass %d step %d: %s", cp.Pass, cp.Step, cp.Name)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "-y (px)"

	if po.background != nil {
		b := po.background.Bounds()
		p.Add(plotter.NewImage(po.background, 0, -float64(b.Dy()), float64(b.Dx()), 0))
	}

	highlighted := make(map[*chain.Chain]bool, len(cp.Highlight))
	for _, c := range cp.Highlight {
		if c != nil {
			highlighted[c] = true
		}
	}
	colors := Palette(len(cp.Highlight))

	for _, c := range cp.Chains {
		if c.Size() == 0 || highlighted[c] {
			continue
		}
		line, err := chainLine(c)
		if err != nil {
			return fmt.Errorf("chain %d: %w", c.ID, err)
		}
		line.Color = mutedChain
		line.Width = vg.Points(0.5)
		p.Add(line)
	}
	for i, c := range cp.Highlight {
		if c == nil || c.Size() == 0 {
			continue
		}
		line, err := chainLine(c)
		if err != nil {
			return fmt.Errorf("chain %d: %w", c.ID, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("chain %d", c.ID), line)
	}

	pith, err := plotter.NewScatter(plotter.XYs{{X: cp.Center.X, Y: -cp.Center.Y}})
	if err != nil {
		return fmt.Errorf("center marker: %w", err)
	}
	pith.GlyphStyle.Shape = draw.CrossGlyph{}
	pith.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	p.Add(pith)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encode plot: %w", err)
	}
	f, err := po.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save plot: %w", err)
	}
	return f.Close()
}

// chainLine traces c from ExtA to ExtB in plot coordinates. Closed chains
// are drawn as a loop.
func chainLine(c *chain.Chain) (*plotter.Line, error) {
	ordered := c.Ordered()
	pts := make(plotter.XYs, 0, len(ordered)+1)
	for _, n := range ordered {
		pts = append(pts, plotter.XY{X: n.X, Y: -n.Y})
	}
	if c.Size() == c.Nr {
		pts = append(pts, pts[0])
	}
	return plotter.NewLine(pts)
}

// Palette returns n distinct colours stepping the hue by the golden angle.
func Palette(n int) []color.Color {
	const golden = 0.618033988749895
	out := make([]color.Color, n)
	h := 0.0
	for i := range out {
		out[i] = colorful.Hsv(h*360, 0.75, 0.9).Clamped()
		h = math.Mod(h+golden, 1)
	}
	return out
}
