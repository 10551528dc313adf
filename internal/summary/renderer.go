package summary

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/geofin/countrypulse/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Module provides the summary image renderer.
var Module = fx.Provide(NewRenderer)

const (
	imageWidth  = 800
	imageHeight = 400

	imageFileName = "summary.png"
)

// Entry is one ranked row of the snapshot.
type Entry struct {
	Name         string
	EstimatedGDP float64
}

// Snapshot is the aggregate view rendered into the summary image. It has no
// stored identity of its own; the PNG is the only persisted form.
type Snapshot struct {
	TotalCountries  int64
	TopByGDP        []Entry
	LastRefreshedAt *time.Time
}

type Renderer struct {
	path    string
	log     *zap.Logger
	printer *message.Printer
}

func NewRenderer(cfg config.Config, log *zap.Logger) *Renderer {
	return &Renderer{
		path:    filepath.Join(cfg.SummaryCacheDir, imageFileName),
		log:     log.Named("summary"),
		printer: message.NewPrinter(language.English),
	}
}

// Path returns where the rendered image lives.
func (r *Renderer) Path() string {
	return r.path
}

// Render draws the snapshot to a fixed-size PNG. The file is written to a
// temp name in the target directory and renamed into place, so a concurrent
// reader sees either the previous image or the new one, never a partial
// write.
func (r *Renderer) Render(snap Snapshot) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	titleFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("build title face: %w", err)
	}
	defer titleFace.Close()
	bodyFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("build body face: %w", err)
	}
	defer bodyFace.Close()

	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	background := color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	lastRefresh := "N/A"
	if snap.LastRefreshedAt != nil {
		lastRefresh = snap.LastRefreshedAt.UTC().Format(time.RFC3339)
	}

	r.drawText(img, titleFace, 20, 52, "Country Currency & Exchange Summary")
	r.drawText(img, bodyFace, 20, 96, fmt.Sprintf("Total countries: %d", snap.TotalCountries))
	r.drawText(img, bodyFace, 20, 126, "Last refresh: "+lastRefresh)
	r.drawText(img, bodyFace, 20, 176, "Top 5 by estimated GDP:")
	for i, entry := range snap.TopByGDP {
		gdp := r.printer.Sprint(number.Decimal(entry.EstimatedGDP, number.MaxFractionDigits(2)))
		r.drawText(img, bodyFace, 40, 206+i*28, fmt.Sprintf("%d. %s - %s", i+1, entry.Name, gdp))
	}

	tmp, err := os.CreateTemp(dir, "summary-*.png")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode summary image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace summary image: %w", err)
	}

	r.log.Info("summary image rendered",
		zap.String("path", r.path),
		zap.Int64("total_countries", snap.TotalCountries),
	)
	return nil
}

func (r *Renderer) drawText(dst draw.Image, face font.Face, x, y int, text string) {
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
