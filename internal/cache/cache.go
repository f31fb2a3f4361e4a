// Package cache memoizes parsed documents so unchanged messages are not
// parsed again on every re-render.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
)

const defaultSize = 256

// DocumentCache is an LRU cache of parsed documents keyed by dialect and
// content hash.
type DocumentCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	lru     *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key string
	doc doctree.Document
}

// New creates a cache holding at most maxSize documents.
func New(maxSize int) *DocumentCache {
	if maxSize <= 0 {
		maxSize = defaultSize
	}
	return &DocumentCache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Key derives the cache key for content parsed with dialect.
func Key(dialect, content string) string {
	h := sha256.Sum256([]byte(content))
	return dialect + ":" + hex.EncodeToString(h[:])
}

// Get returns a cached document and marks it most recently used.
func (c *DocumentCache) Get(key string) (doctree.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits.Add(1)
		return elem.Value.(*entry).doc, true
	}
	c.misses.Add(1)
	return doctree.Document{}, false
}

// Put stores a document, evicting the least recently used one when full.
func (c *DocumentCache) Put(key string, doc doctree.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*entry).doc = doc
		return
	}
	if c.lru.Len() >= c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*entry).key)
			c.lru.Remove(oldest)
		}
	}
	c.entries[key] = c.lru.PushFront(&entry{key: key, doc: doc})
}

// Len returns the number of cached documents.
func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Hit counters are kept.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Stats reports lookups since the cache was created.
type Stats struct {
	Size     int     `json:"size"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

func (c *DocumentCache) Stats() Stats {
	s := Stats{Size: c.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// Parser wraps a dialect parser with the cache. Parsing is deterministic,
// so a cached tree is identical to a fresh one.
type Parser struct {
	Dialect string
	Inner   parser.Parser
	Cache   *DocumentCache
}

func (p *Parser) Parse(content string) doctree.Document {
	if p.Cache == nil {
		return p.Inner.Parse(content)
	}
	key := Key(p.Dialect, content)
	if doc, ok := p.Cache.Get(key); ok {
		return doc
	}
	doc := p.Inner.Parse(content)
	p.Cache.Put(key, doc)
	return doc
}

// ForDialect returns a caching parser for the named dialect.
func (c *DocumentCache) ForDialect(name string) (*Parser, error) {
	inner, err := parser.ForDialect(name)
	if err != nil {
		return nil, err
	}
	name = parser.CanonicalDialect(name)
	if name == "" {
		name = parser.DialectChat
	}
	return &Parser{Dialect: name, Inner: inner, Cache: c}, nil
}
