package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// ObjectStore reads and lists bucket objects
type ObjectStore interface {
	Read(ctx context.Context, bucket, object string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// GCS is an ObjectStore backed by Google Cloud Storage. The client is
// created on first use with application default credentials.
type GCS struct {
	mu     sync.Mutex
	client *storage.Client
}

func (g *GCS) bucket(ctx context.Context, name string) (*storage.BucketHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		g.client = client
	}
	return g.client.Bucket(name), nil
}

// Read downloads one object
func (g *GCS) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	b, err := g.bucket(ctx, bucket)
	if err != nil {
		return nil, err
	}
	reader, err := b.Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %w", object, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// List returns the names of the objects under prefix
func (g *GCS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	b, err := g.bucket(ctx, bucket)
	if err != nil {
		return nil, err
	}

	var names []string
	it := b.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", bucket, prefix, err)
		}
		names = append(names, attrs.Name)
	}
}

// Close releases the client
func (g *GCS) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
