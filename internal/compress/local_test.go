package compress

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"coolpress/internal/storage"
)

func newTestLocalEngine(t *testing.T) (*LocalEngine, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir, "/static")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewLocalEngine(store, zerolog.New(io.Discard)), dir
}

func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8((x + y) % 256), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func makeGIF(t *testing.T, frames, width, height int) []byte {
	t.Helper()
	anim := &gif.GIF{}
	pal := color.Palette{color.Black, color.White, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), pal)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				frame.SetColorIndex(x, y, uint8((x+i)%len(pal)))
			}
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func readOnlyOutput(t *testing.T, dir string) []byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir has %d files, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return data
}

func TestCompressWaterCoolingRound(t *testing.T) {
	engine, dir := newTestLocalEngine(t)
	input := makeJPEG(t, 2000, 2000)
	opts, _ := PresetOptions(PresetWaterCoolingRound)

	result := engine.CompressImage(context.Background(), Input{Data: input}, "wallpaper.jpg", opts)
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}
	if result.Format != FormatPNG {
		t.Fatalf("format = %q, want png", result.Format)
	}
	if result.Width != 640 || result.Height != 640 {
		t.Fatalf("dimensions = %dx%d, want 640x640", result.Width, result.Height)
	}
	if result.OriginalSize != int64(len(input)) {
		t.Fatalf("originalSize = %d, want %d", result.OriginalSize, len(input))
	}

	out, err := png.Decode(bytes.NewReader(readOnlyOutput(t, dir)))
	if err != nil {
		t.Fatalf("decode output png: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 640 || b.Dy() != 640 {
		t.Fatalf("output bounds = %v, want 640x640", b)
	}

	_, _, _, cornerAlpha := out.At(2, 2).RGBA()
	if cornerAlpha != 0 {
		t.Fatalf("corner alpha = %d, want fully transparent", cornerAlpha)
	}
	_, _, _, centerAlpha := out.At(320, 320).RGBA()
	if centerAlpha != 0xFFFF {
		t.Fatalf("center alpha = %d, want fully opaque", centerAlpha)
	}
}

func TestCompressStretchIgnoresAspect(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	f := false
	result := engine.CompressImage(context.Background(), Input{Data: makePNG(t, 800, 200)}, "wide.png", Options{
		Width:               300,
		Height:              300,
		Format:              FormatPNG,
		PreserveAspectRatio: &f,
	})
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}
	if result.Width != 300 || result.Height != 300 {
		t.Fatalf("dimensions = %dx%d, want exact 300x300 stretch", result.Width, result.Height)
	}
}

func TestCompressCoverCrop(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	result := engine.CompressImage(context.Background(), Input{Data: makePNG(t, 800, 200)}, "wide.png", Options{
		Width:  300,
		Height: 300,
		Format: FormatPNG,
	})
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}
	if result.Width != 300 || result.Height != 300 {
		t.Fatalf("cover crop = %dx%d, want 300x300", result.Width, result.Height)
	}
}

func TestCompressRejectsURLInput(t *testing.T) {
	engine, dir := newTestLocalEngine(t)
	result := engine.CompressImage(context.Background(), Input{URL: "https://example.com/a.png"}, "a.png", Options{})
	if result.Success {
		t.Fatalf("url input accepted by the local engine")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("failed compression left %d files behind", len(entries))
	}
}

func TestCompressRejectsUnknownBytes(t *testing.T) {
	engine, dir := newTestLocalEngine(t)
	result := engine.CompressImage(context.Background(), Input{Data: []byte("not an image at all")}, "junk.bin", Options{})
	if result.Success {
		t.Fatalf("garbage input accepted")
	}
	if result.Error != "unsupported format" {
		t.Fatalf("error = %q, want unsupported format", result.Error)
	}
	if result.ProcessingTime < 0 {
		t.Fatalf("processing time must be recorded on failure")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("failed compression left %d files behind", len(entries))
	}
}

func TestCompressRejectsBadOptions(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	result := engine.CompressImage(context.Background(), Input{Data: makePNG(t, 10, 10)}, "a.png", Options{Quality: 500})
	if result.Success {
		t.Fatalf("out-of-range quality accepted")
	}
}

func TestCompressBatchPreservesOrder(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	items := []BatchItem{
		{Input: Input{Data: makePNG(t, 20, 20)}, Filename: "first.png", Options: Options{Format: FormatPNG}},
		{Input: Input{Data: []byte("broken")}, Filename: "second.bin", Options: Options{}},
		{Input: Input{Data: makePNG(t, 20, 20)}, Filename: "third.png", Options: Options{Format: FormatPNG}},
	}

	results := engine.CompressBatch(context.Background(), items)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("valid items failed: %s / %s", results[0].Error, results[2].Error)
	}
	if results[1].Success {
		t.Fatalf("broken item succeeded")
	}
}

func TestCompressAnimatedGIFToWebP(t *testing.T) {
	engine, dir := newTestLocalEngine(t)
	input := makeGIF(t, 9, 64, 64)

	result := engine.CompressImage(context.Background(), Input{Data: input}, "anim.gif", Options{
		OptimizeAnimation: true,
		MaxFrames:         3,
	})
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}
	if result.Format != FormatWebP {
		t.Fatalf("format = %q, want webp for animated output", result.Format)
	}

	out := readOnlyOutput(t, dir)
	if !bytes.HasPrefix(out, []byte("RIFF")) || !bytes.Equal(out[8:12], []byte("WEBP")) {
		t.Fatalf("output is not a webp container")
	}
	if frames := bytes.Count(out, []byte("ANMF")); frames != 3 {
		t.Fatalf("output has %d animation frames, want the MaxFrames cap of 3", frames)
	}
}

func TestCompressAnimatedGIFStaysGIF(t *testing.T) {
	engine, dir := newTestLocalEngine(t)
	input := makeGIF(t, 4, 32, 32)

	result := engine.CompressImage(context.Background(), Input{Data: input}, "anim.gif", Options{
		OptimizeAnimation: true,
		Format:            FormatGIF,
		FrameRate:         10,
	})
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(readOnlyOutput(t, dir)))
	if err != nil {
		t.Fatalf("decode output gif: %v", err)
	}
	if len(decoded.Image) != 4 {
		t.Fatalf("output has %d frames, want 4", len(decoded.Image))
	}
	for i, delay := range decoded.Delay {
		if delay != 10 {
			t.Fatalf("frame %d delay = %d, want uniform 10cs for 10fps", i, delay)
		}
	}
}

func TestCompressGIFWithoutAnimationFlag(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	result := engine.CompressImage(context.Background(), Input{Data: makeGIF(t, 5, 32, 32)}, "anim.gif", Options{Format: FormatPNG})
	if !result.Success {
		t.Fatalf("compress failed: %s", result.Error)
	}
	// Static path: only the first frame survives.
	if result.Format != FormatPNG {
		t.Fatalf("format = %q, want png", result.Format)
	}
}

func TestLocalStatsAccumulateAndReset(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	data := makePNG(t, 50, 50)

	engine.CompressImage(context.Background(), Input{Data: data}, "a.png", Options{Format: FormatPNG})
	engine.CompressImage(context.Background(), Input{Data: data}, "b.png", Options{Format: FormatPNG})
	engine.CompressImage(context.Background(), Input{Data: []byte("junk")}, "c.bin", Options{})

	stats := engine.Stats()
	if stats.TotalFiles != 2 {
		t.Fatalf("totalFiles = %d, want 2 (failures excluded)", stats.TotalFiles)
	}
	if stats.TotalOriginalBytes != int64(2*len(data)) {
		t.Fatalf("totalOriginalBytes = %d, want %d", stats.TotalOriginalBytes, 2*len(data))
	}

	engine.ResetStats()
	if engine.Stats().TotalFiles != 0 {
		t.Fatalf("stats survived reset")
	}
}

func TestLocalRecommendedOptions(t *testing.T) {
	engine, _ := newTestLocalEngine(t)

	opts := engine.RecommendedOptions(FormatJPEG, 6<<20, 1920, 1080)
	if opts.Quality != 70 {
		t.Fatalf("quality = %d, want 70 for a >5MiB input", opts.Quality)
	}
	if opts.Width != 0 || opts.Height != 0 {
		t.Fatalf("1080p input must not be resized")
	}

	opts = engine.RecommendedOptions(FormatGIF, 1<<20, 500, 500)
	if !opts.OptimizeAnimation || opts.Format != FormatWebP {
		t.Fatalf("gif input must recommend animated webp, got %+v", opts)
	}
	if opts.MaxFrames != 50 || opts.FrameRate != 15 {
		t.Fatalf("gif frame budget = %d/%d, want 50/15", opts.MaxFrames, opts.FrameRate)
	}

	opts = engine.RecommendedOptions(FormatPNG, 1<<20, 7680, 4320)
	if opts.Width != 3840 || opts.Height != 2160 {
		t.Fatalf("8K input capped to %dx%d, want 3840x2160", opts.Width, opts.Height)
	}
}

func TestSupportsFormat(t *testing.T) {
	engine, _ := newTestLocalEngine(t)
	for _, f := range []Format{FormatPNG, FormatJPEG, FormatWebP, FormatAVIF, FormatGIF} {
		if !engine.SupportsFormat(f) {
			t.Fatalf("%q unsupported", f)
		}
	}
	if engine.SupportsFormat(Format("bmp")) {
		t.Fatalf("bmp reported as supported")
	}
}

func TestSanitizeBaseName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"wallpaper.jpg", "wallpaper"},
		{"../../etc/passwd", "passwd"},
		{"my cool pic!.png", "my_cool_pic_"},
		{"中文名.png", "___"},
		{".hidden", "_hidden"},
		{"", "image"},
	}
	for _, tc := range cases {
		if got := sanitizeBaseName(tc.in); got != tc.want {
			t.Fatalf("sanitizeBaseName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFitInside(t *testing.T) {
	w, h := fitInside(7680, 4320, 3840, 2160)
	if w != 3840 || h != 2160 {
		t.Fatalf("fitInside = %dx%d, want 3840x2160", w, h)
	}
	w, h = fitInside(1920, 1080, 3840, 2160)
	if w != 1920 || h != 1080 {
		t.Fatalf("fitInside must never grow, got %dx%d", w, h)
	}
}

func TestCompressionRatio(t *testing.T) {
	if got := CompressionRatio(1000, 250); got != 75 {
		t.Fatalf("ratio = %v, want 75", got)
	}
	if got := CompressionRatio(0, 100); got != 0 {
		t.Fatalf("zero original must yield 0, got %v", got)
	}
	if got := CompressionRatio(100, 150); got != -50 {
		t.Fatalf("growth must yield a negative ratio, got %v", got)
	}
}
