// Package filter implements the color channel filters. Work runs on a
// dedicated goroutine so the UI loop never blocks on pixel processing.
package filter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"sync"
)

// Color selects the channel a filter keeps
type Color string

const (
	Red   Color = "red"
	Green Color = "green"
)

// JPEGQuality matches the default quality browsers use for canvas exports
const JPEGQuality = 92

// ParseColor validates a color name
func ParseColor(s string) (Color, error) {
	switch c := Color(s); c {
	case Red, Green:
		return c, nil
	default:
		return "", fmt.Errorf("unknown filter color %q", s)
	}
}

func (c Color) coefficients() (red, green float64) {
	if c == Red {
		return 1, 0
	}
	return 0, 1
}

// Apply returns a grayscale blend of src that brings out one channel:
// every pixel becomes R*red + G*green + B in all three channels, clamped to
// 255. Alpha is kept.
func Apply(src image.Image, c Color) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	redCoef, greenCoef := c.coefficients()
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		blend := float64(pix[i])*redCoef + float64(pix[i+1])*greenCoef + float64(pix[i+2])
		if blend > 255 {
			blend = 255
		}
		v := uint8(blend)
		pix[i], pix[i+1], pix[i+2] = v, v, v
	}
	return dst
}

// Encode writes img as JPEG
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Request is one unit of work for the Worker
type Request struct {
	Image image.Image
	Color Color
}

// Result is the single response to a Request
type Result struct {
	Image *image.NRGBA
	JPEG  []byte
	Err   error
}

type job struct {
	req  Request
	done func(Result)
}

// Worker processes filter requests one at a time on its own goroutine.
// done is called on the worker goroutine.
type Worker struct {
	requests chan job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	encode   bool
}

// NewWorker starts a worker. With encode set every result also carries
// the JPEG bytes.
func NewWorker(queue int, encode bool) *Worker {
	if queue < 1 {
		queue = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		requests: make(chan job, queue),
		ctx:      ctx,
		cancel:   cancel,
		encode:   encode,
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// Submit queues req. It returns false without calling done if the worker
// is stopped or the queue is full.
func (w *Worker) Submit(req Request, done func(Result)) bool {
	if w.ctx.Err() != nil {
		return false
	}
	select {
	case w.requests <- job{req: req, done: done}:
		return true
	default:
		return false
	}
}

// Stop ends the worker goroutine; queued requests are dropped
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case j := <-w.requests:
			j.done(w.process(j.req))
		}
	}
}

func (w *Worker) process(req Request) Result {
	if req.Image == nil {
		return Result{Err: fmt.Errorf("filter %s: no image", req.Color)}
	}
	if _, err := ParseColor(string(req.Color)); err != nil {
		return Result{Err: err}
	}

	img := Apply(req.Image, req.Color)
	if !w.encode {
		return Result{Image: img}
	}
	data, err := Encode(img)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Image: img, JPEG: data}
}
