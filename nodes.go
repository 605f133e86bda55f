package main

import (
	"context"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"lightbox/internal/geometry"
	"lightbox/internal/lightbox"
	"lightbox/internal/media"
	"lightbox/internal/richtext"
)

const (
	cardWidth     = 960
	nodeCacheSize = 32
	nodeTimeout   = 5 * time.Second
)

// textCard is a rendered text document shown as a node slide
type textCard struct {
	img      *ebiten.Image
	borrowed bool
}

func (c *textCard) Image() *ebiten.Image {
	return c.img
}

func (c *textCard) Size() geometry.Size {
	b := c.img.Bounds()
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Restore implements lightbox.Node
func (c *textCard) Restore() {
	c.borrowed = false
}

// nodeStore resolves text sources into rendered cards. Markdown files are
// formatted, anything else is shown as plain text.
type nodeStore struct {
	read  func(ctx context.Context, src string) ([]byte, error)
	cards *lru.Cache[string, *textCard]
}

func newNodeStore(fetcher *media.Fetcher) *nodeStore {
	cards, _ := lru.NewWithEvict[string, *textCard](nodeCacheSize, func(_ string, c *textCard) {
		if !c.borrowed {
			c.img.Deallocate()
		}
	})
	return &nodeStore{read: fetcher.Fetch, cards: cards}
}

// ResolveNode implements lightbox.NodeResolver
func (s *nodeStore) ResolveNode(ref string) (lightbox.Node, bool) {
	if card, ok := s.cards.Get(ref); ok {
		card.borrowed = true
		return card, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), nodeTimeout)
	defer cancel()
	data, err := s.read(ctx, ref)
	if err != nil {
		debugLog("Node %s not readable: %v", ref, err)
		return nil, false
	}

	card := &textCard{img: renderCard(parseText(ref, data), cardWidth), borrowed: true}
	s.cards.Add(ref, card)
	return card, true
}

func parseText(ref string, data []byte) []richtext.Block {
	name := strings.ToLower(ref)
	if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown") {
		return richtext.Parse(data)
	}
	return richtext.Plain(string(data))
}
