package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultTTL     = 5 * time.Minute
	maxRemoteSize  = 64 << 20
)

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	Timeout time.Duration // per http request
	TTL     time.Duration // remote byte cache
	Client  *http.Client
	Objects ObjectStore
}

// Fetcher reads sources of every scheme. Remote bytes are kept in a TTL
// cache so revisiting a slide does not hit the network again. It is safe
// for concurrent use.
type Fetcher struct {
	client  *http.Client
	remote  *cache.Cache
	objects ObjectStore
}

// NewFetcher creates a Fetcher
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Objects == nil {
		opts.Objects = &GCS{}
	}
	return &Fetcher{
		client:  opts.Client,
		remote:  cache.New(opts.TTL, 2*opts.TTL),
		objects: opts.Objects,
	}
}

// Fetch returns the raw bytes of src
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	ref, err := ParseRef(src)
	if err != nil {
		return nil, err
	}

	switch ref.Scheme {
	case SchemeFile:
		return os.ReadFile(ref.Path)
	case SchemeArchive:
		return readEntry(ref.Archive, ref.Path)
	}

	if cached, ok := f.remote.Get(src); ok {
		return cached.([]byte), nil
	}

	var data []byte
	if ref.Scheme == SchemeHTTP {
		data, err = f.get(ctx, ref.Path)
	} else {
		data, err = f.objects.Read(ctx, ref.Bucket, ref.Path)
	}
	if err != nil {
		return nil, err
	}
	f.remote.Set(src, data, cache.DefaultExpiration)
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if len(data) > maxRemoteSize {
		return nil, fmt.Errorf("GET %s: body larger than %d bytes", url, maxRemoteSize)
	}
	return data, nil
}

// Load fetches and decodes an image source
func (f *Fetcher) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	ref, _ := ParseRef(src)
	img, _, err := Decode(data, ref.Name())
	return img, err
}

// ListObjects expands a "gs://bucket/prefix" source to the sources of the
// objects under it accepted by keep.
func (f *Fetcher) ListObjects(ctx context.Context, src string, keep func(name string) bool) ([]string, error) {
	rest, ok := strings.CutPrefix(src, "gs://")
	if !ok {
		return nil, fmt.Errorf("%s: %w", src, ErrUnsupportedSource)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("malformed bucket in %q: %w", src, ErrUnsupportedSource)
	}

	names, err := f.objects.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	var list []string
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		if keep == nil || keep(name) {
			list = append(list, "gs://"+bucket+"/"+name)
		}
	}
	return list, nil
}

// Forget drops src from the remote cache
func (f *Fetcher) Forget(src string) {
	f.remote.Delete(src)
}
