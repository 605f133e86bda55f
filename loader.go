package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"lightbox/internal/geometry"
	"lightbox/internal/lightbox"
	"lightbox/internal/media"
)

// picture is decoded image content handed to the lightbox. source keeps
// the CPU copy for the color filter.
type picture struct {
	img    *ebiten.Image
	source image.Image
	src    string
	cached bool // owned by the LRU cache
}

func (p *picture) Image() *ebiten.Image {
	return p.img
}

func (p *picture) Size() geometry.Size {
	b := p.img.Bounds()
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// decoder turns a source into an image, normally media.Fetcher.Load
type decoder func(ctx context.Context, src string) (image.Image, error)

type loadJob struct {
	src  string
	done func(*picture, error) // nil for warm-up jobs
}

// LoaderStats provides statistics about loading
type LoaderStats struct {
	Loaded int
	Failed int
	Warmed int
}

// imageLoader implements lightbox.Loader. Decoding runs on worker
// goroutines; completions are posted back to the UI loop. Decoded images
// are kept in an LRU cache and deallocated once evicted and no longer
// displayed.
type imageLoader struct {
	decode decoder
	post   func(func())
	cache  *lru.Cache[string, *picture]

	jobs   chan loadJob
	warm   chan loadJob
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	refs    map[*picture]int
	evicted map[*picture]bool
	stats   LoaderStats
}

// newImageLoader starts workers decoding goroutines. post must run its
// argument on the UI loop.
func newImageLoader(decode decoder, post func(func()), cacheSize, workers int) *imageLoader {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &imageLoader{
		decode:  decode,
		post:    post,
		jobs:    make(chan loadJob, 64),
		warm:    make(chan loadJob, 16),
		ctx:     ctx,
		cancel:  cancel,
		refs:    make(map[*picture]int),
		evicted: make(map[*picture]bool),
	}

	cache, err := lru.NewWithEvict[string, *picture](cacheSize, l.onEvict)
	if err != nil {
		log.Printf("Error: Failed to create LRU cache: %v", err)
		cache, _ = lru.NewWithEvict[string, *picture](16, l.onEvict)
	}
	l.cache = cache

	for i := 0; i < workers; i++ {
		go l.worker()
	}
	return l
}

func (l *imageLoader) onEvict(_ string, p *picture) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refs[p] > 0 {
		l.evicted[p] = true
		return
	}
	p.img.Deallocate()
}

// Load implements lightbox.Loader. Videos are shown through their poster
// image, or a placeholder card without one.
func (l *imageLoader) Load(req lightbox.LoadRequest, done func(lightbox.Content, error)) {
	src := req.Src
	if req.Kind == lightbox.KindVideo {
		if req.Poster == "" {
			done(l.wrap(CreateVideoPlaceholder(src)), nil)
			return
		}
		src = req.Poster
	}

	if p, ok := l.cache.Get(src); ok {
		debugLog("Cache HIT: %s (cache: %d items)", src, l.cache.Len())
		l.retain(p)
		done(p, nil)
		return
	}

	job := loadJob{src: src, done: func(p *picture, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		done(p, nil)
	}}
	if req.Warm {
		// warm loads never wait behind displayed ones
		select {
		case l.jobs <- job:
		default:
			done(nil, fmt.Errorf("loading %s: queue full", src))
		}
		return
	}
	select {
	case l.jobs <- job:
	case <-l.ctx.Done():
		done(nil, fmt.Errorf("loading %s: loader stopped", src))
	}
}

// Release implements lightbox.Loader
func (l *imageLoader) Release(c lightbox.Content) {
	p, ok := c.(*picture)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refs[p] > 1 {
		l.refs[p]--
		return
	}
	delete(l.refs, p)
	if !p.cached || l.evicted[p] {
		delete(l.evicted, p)
		p.img.Deallocate()
	}
}

// wrap adopts an image not backed by the cache, such as a filter result.
// It is deallocated on release.
func (l *imageLoader) wrap(img *ebiten.Image) *picture {
	p := &picture{img: img}
	l.retain(p)
	return p
}

func (l *imageLoader) retain(p *picture) {
	l.mu.Lock()
	l.refs[p]++
	l.mu.Unlock()
}

// Warm decodes srcs into the cache ahead of navigation. Pending warm-ups
// from an earlier call are dropped.
func (l *imageLoader) Warm(srcs []string) {
drain:
	for {
		select {
		case <-l.warm:
		default:
			break drain
		}
	}

	for _, src := range srcs {
		if l.cache.Contains(src) {
			continue
		}
		select {
		case l.warm <- loadJob{src: src}:
		default:
			debugLog("Warm-up queue full, skipping %s", src)
			return
		}
	}
}

// Stats returns the load counters
func (l *imageLoader) Stats() LoaderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Stop stops the workers. Pending jobs are dropped.
func (l *imageLoader) Stop() {
	l.cancel()
}

// Purge deallocates every cached image that is not displayed
func (l *imageLoader) Purge() {
	l.cache.Purge()
}

func (l *imageLoader) worker() {
	for {
		// explicit loads go before warm-ups
		select {
		case <-l.ctx.Done():
			return
		case job := <-l.jobs:
			l.process(job)
			continue
		default:
		}

		select {
		case <-l.ctx.Done():
			return
		case job := <-l.jobs:
			l.process(job)
		case job := <-l.warm:
			l.process(job)
		}
	}
}

func (l *imageLoader) process(job loadJob) {
	if job.done == nil && l.cache.Contains(job.src) {
		return
	}

	img, err := l.decode(l.ctx, job.src)
	if err != nil {
		l.mu.Lock()
		l.stats.Failed++
		l.mu.Unlock()
		debugLog("Load failed for %s: %v", job.src, err)
		if job.done != nil {
			l.post(func() { job.done(nil, err) })
		}
		return
	}

	p := &picture{img: ebiten.NewImageFromImage(img), source: img, src: job.src, cached: true}

	l.mu.Lock()
	if job.done == nil {
		l.stats.Warmed++
	} else {
		l.stats.Loaded++
	}
	l.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	debugLog("Decoded %s (cache: %d items, memory: %dMB)", job.src, l.cache.Len(), mem.Alloc/1024/1024)

	l.post(func() {
		// a concurrent load of the same source may have won
		if existing, ok := l.cache.Get(job.src); ok && existing != p {
			p.img.Deallocate()
			p = existing
		} else {
			l.cache.Add(job.src, p)
		}
		if job.done != nil {
			l.retain(p)
			job.done(p, nil)
		}
	})
}

// fetcherDecoder adapts a media.Fetcher
func fetcherDecoder(f *media.Fetcher) decoder {
	return f.Load
}
