// Command compdemo composites a demo frame of render passes and writes
// the presented framebuffer to a PNG file.
package main

import (
	"context"
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/compositor"
	_ "github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/deferred"
	"github.com/gogpu/compositor/display"
	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/resource"
	"github.com/gogpu/compositor/surface"
)

func main() {
	var (
		width    = flag.Int("width", 640, "framebuffer width")
		height   = flag.Int("height", 480, "framebuffer height")
		output   = flag.String("output", "compdemo.png", "output file")
		backend  = flag.String("backend", "software", "graphics backend")
		settings = flag.String("settings", "", "renderer settings (TOML)")
		recorded = flag.Bool("deferred", false, "record the frame and play it back on the executor")
		overdraw = flag.Bool("overdraw", false, "tint the frame by overdraw")
		copyOut  = flag.String("copy", "", "also write the blurred pass to this file")
		verbose  = flag.Bool("v", false, "log per-frame diagnostics")
	)
	flag.Parse()

	if *verbose {
		compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	s := display.DefaultSettings()
	if *settings != "" {
		var err error
		if s, err = display.LoadSettings(*settings); err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
	}
	opts := []display.Option{display.WithSettings(s)}
	if *overdraw {
		opts = append(opts, display.WithOverdrawFeedback(true))
	}

	be, err := gfx.NewBackend(*backend)
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}
	out, err := surface.NewOutputByName("image", surface.DefaultOptions(*width, *height))
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	front, ok := out.(*surface.ImageOutput)
	if !ok {
		log.Fatalf("Output %T keeps no front buffer", out)
	}

	provider := resource.NewMemoryProvider()
	var (
		r   *display.Renderer
		rec *deferred.OutputSurface
	)
	if *recorded {
		rec = deferred.NewOutputSurface(be, out, provider)
		defer rec.Close()
		r = display.NewDeferredRenderer(rec, provider, opts...)
	} else {
		r = display.NewRenderer(out, be, provider, opts...)
	}
	defer r.Close()

	scene, err := buildScene(provider, image.Pt(*width, *height))
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}
	if *copyOut != "" {
		scene.blurred.CopyRequests = append(scene.blurred.CopyRequests,
			quad.NewCopyOutputRequest(quad.ResultRGBABitmap, nil))
	}

	start := time.Now()
	if !r.BeginFrame(&display.Frame{RenderPasses: scene.passes}) {
		log.Fatal("Frame rejected")
	}
	if !r.DrawFrame(scene.passes) {
		log.Print("Some render passes were skipped")
	}
	r.FinishFrame()
	if !r.SwapBuffers(image.Rectangle{}) {
		log.Fatal("Swap failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if rec != nil {
		if err := rec.LastError(ctx); err != nil {
			log.Printf("Playback error: %v", err)
		}
	}
	elapsed := time.Since(start)

	if err := writePNG(*output, front.Front()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d, %d passes, %v)", *output, *width, *height, len(scene.passes), elapsed)

	if *copyOut != "" {
		res, err := scene.blurred.CopyRequests[0].Wait(ctx)
		if err != nil || res.IsEmpty() {
			log.Fatalf("Copy request not served: %v", err)
		}
		if err := writePNG(*copyOut, res.Bitmap); err != nil {
			log.Fatalf("Failed to save copy: %v", err)
		}
		log.Printf("Blurred pass saved to %s", *copyOut)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
