// Command pgdemo builds renderers on a headless device and reports how the
// resource pools shared their objects.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/sync/errgroup"

	"github.com/halli2/playground"
	"github.com/halli2/playground/assets"
	"github.com/halli2/playground/backend"
	_ "github.com/halli2/playground/backend/noop"
	"github.com/halli2/playground/cache"
	"github.com/halli2/playground/manifest"
	"github.com/halli2/playground/renderers"
	"github.com/halli2/playground/resources"
)

type config struct {
	backend   string
	assetDir  string
	manifest  string
	format    string
	renderers int
	watch     bool
	verbose   bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.backend, "backend", "", "backend name (default: first available)")
	flag.StringVar(&cfg.assetDir, "assets", "", "asset directory (default: discovered next to the executable)")
	flag.StringVar(&cfg.manifest, "manifest", "", "pipeline manifest to apply")
	flag.StringVar(&cfg.format, "format", "bgra8unorm", "color target format")
	flag.IntVar(&cfg.renderers, "renderers", 2, "number of triangle renderers to build")
	flag.BoolVar(&cfg.watch, "watch", false, "re-apply the manifest when it changes, until interrupted")
	flag.BoolVar(&cfg.verbose, "v", false, "log pool activity")
	flag.Parse()

	logger := newLogger(os.Stderr, cfg.verbose)
	playground.SetLogger(slog.New(logger))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(sigCtx, cfg, os.Stdout); err != nil {
		logger.Fatal("pgdemo failed", "err", err)
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "pgdemo",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func run(sigCtx context.Context, cfg config, out io.Writer) error {
	format, err := manifest.ParseFormat(cfg.format)
	if err != nil {
		return err
	}

	opened, err := openBackend(cfg.backend)
	if err != nil {
		return err
	}

	opts := []playground.Option{
		playground.WithQueue(opened.Queue),
		playground.WithFormat(format),
		playground.WithOnClose(opened.Close),
	}
	if cfg.assetDir != "" {
		opts = append(opts, playground.WithAssets(assets.Chain{
			assets.NewFileSystem(cfg.assetDir),
			assets.Builtin(),
		}))
	}

	ctx, err := playground.NewContextFromHAL(opened.Device, opts...)
	if err != nil {
		opened.Close()
		return err
	}
	defer ctx.Close()

	// Triangles are built concurrently and share one shader, layout and
	// pipeline.
	tris := make([]*renderers.Triangle, cfg.renderers)
	var g errgroup.Group
	for i := range tris {
		g.Go(func() error {
			tri, err := renderers.NewTriangle(ctx, ctx.Format())
			if err != nil {
				return fmt.Errorf("triangle renderer %d: %w", i, err)
			}
			tris[i] = tri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	drawers := make([]renderers.Renderer, 0, len(tris))
	for _, tri := range tris {
		drawers = append(drawers, tri)
	}

	if cfg.manifest != "" {
		m, err := manifest.Load(cfg.manifest)
		if err != nil {
			return err
		}
		handles, err := manifest.Apply(m, ctx.Pools(), ctx.Device(), ctx.Assets(), ctx.Format())
		if err != nil {
			return err
		}
		for _, p := range m.Pipelines {
			drawers = append(drawers, renderers.NewStatic(handles.Pipelines[p.Name], 3))
		}
	}

	pass := &countingPass{}
	for _, r := range drawers {
		if err := r.Draw(pass, ctx.Pools()); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "backend %s, format %v, %d renderers\n", opened.Name, ctx.Format(), len(drawers))
	fmt.Fprintf(out, "recorded %d pipeline binds, %d draws, %d vertices\n", pass.binds, pass.draws, pass.vertices)
	printStats(out, ctx.Pools().Stats())

	if cfg.watch && cfg.manifest != "" {
		return watchManifest(sigCtx, cfg.manifest, ctx, out)
	}
	return nil
}

// watchManifest re-applies the manifest on every change until sigCtx is
// done. Invalid manifests are reported and skipped.
func watchManifest(sigCtx context.Context, path string, ctx *playground.Context, out io.Writer) error {
	w, err := manifest.NewWatcher(path)
	if err != nil {
		return err
	}
	defer w.Close()

	logger := playground.Logger()
	logger.Info("watching manifest", "path", path)
	err = w.Run(sigCtx, func(m *manifest.Manifest, err error) {
		if err != nil {
			logger.Warn("manifest reload failed", "err", err)
			return
		}
		if _, err := manifest.Apply(m, ctx.Pools(), ctx.Device(), ctx.Assets(), ctx.Format()); err != nil {
			logger.Warn("manifest apply failed", "err", err)
			return
		}
		printStats(out, ctx.Pools().Stats())
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openBackend(name string) (*backend.Opened, error) {
	if name == "" {
		return backend.Default()
	}
	opened, err := backend.Open(name)
	if errors.Is(err, backend.ErrUnknownBackend) {
		return nil, fmt.Errorf("%w (available: %v)", err, backend.Available())
	}
	return opened, err
}

func printStats(out io.Writer, s resources.PoolStats) {
	rows := []struct {
		name  string
		stats cache.Stats
	}{
		{"shaders", s.Shaders},
		{"pipeline layouts", s.PipelineLayouts},
		{"render pipelines", s.RenderPipelines},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-17s entries=%d hits=%d misses=%d failures=%d\n",
			r.name, r.stats.Entries, r.stats.Hits, r.stats.Misses, r.stats.Failures)
	}
}

// countingPass counts recorded commands instead of submitting them.
type countingPass struct {
	binds, draws int
	vertices     uint32
}

func (p *countingPass) SetPipeline(hal.RenderPipeline) { p.binds++ }

func (p *countingPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.draws++
	p.vertices += vertexCount * instanceCount
}
