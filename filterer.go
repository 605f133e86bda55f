package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"lightbox/internal/filter"
	"lightbox/internal/lightbox"
)

var errNoPixels = errors.New("content has no pixel data")

// colorFilterer runs the channel filter on the filter worker and hands the
// result back to the UI loop as a picture owned by the loader
type colorFilterer struct {
	worker *filter.Worker
	loader *imageLoader
	post   func(func())
}

func newColorFilterer(loader *imageLoader, post func(func())) *colorFilterer {
	return &colorFilterer{
		worker: filter.NewWorker(4, false),
		loader: loader,
		post:   post,
	}
}

// Filter implements lightbox.Filterer
func (f *colorFilterer) Filter(src lightbox.Content, color lightbox.FilterColor, done func(lightbox.Content, error)) {
	p, ok := src.(*picture)
	if !ok || p.source == nil {
		done(nil, errNoPixels)
		return
	}
	c, err := filter.ParseColor(string(color))
	if err != nil {
		done(nil, err)
		return
	}

	accepted := f.worker.Submit(filter.Request{Image: p.source, Color: c}, func(res filter.Result) {
		if res.Err != nil {
			f.post(func() { done(nil, res.Err) })
			return
		}
		img := ebiten.NewImageFromImage(res.Image)
		f.post(func() {
			out := f.loader.wrap(img)
			out.source = res.Image
			out.src = p.src
			done(out, nil)
		})
	})
	if !accepted {
		done(nil, fmt.Errorf("filter %s: worker busy", color))
	}
}

// Stop stops the worker goroutine
func (f *colorFilterer) Stop() {
	f.worker.Stop()
}
