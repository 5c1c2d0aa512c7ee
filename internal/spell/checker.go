package spell

import (
	"strings"
	"sync"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Cache defaults.
const (
	DefaultCacheExpiration = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCacheExpiration sets how long verdicts are cached.
func WithCacheExpiration(expiration, cleanup time.Duration) CheckerOption {
	return func(c *Checker) {
		c.expiration = expiration
		c.cleanup = cleanup
	}
}

// WithCheckerLogger sets the logger.
func WithCheckerLogger(l *zap.Logger) CheckerOption {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// Checker accepts a word found in any of its dictionaries. Words holding
// digits are always accepted.
type Checker struct {
	mu    sync.RWMutex
	dicts []*Dictionary

	cache      *gocache.Cache
	expiration time.Duration
	cleanup    time.Duration
	logger     *zap.Logger
}

// NewChecker creates a checker over dicts.
func NewChecker(dicts []*Dictionary, opts ...CheckerOption) *Checker {
	c := &Checker{
		dicts:      dicts,
		expiration: DefaultCacheExpiration,
		cleanup:    DefaultCleanupInterval,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = gocache.New(c.expiration, c.cleanup)
	return c
}

// Correct implements style.Checker.
func (c *Checker) Correct(word string) bool {
	if v, found := c.cache.Get(word); found {
		if ok, isBool := v.(bool); isBool {
			return ok
		}
		c.logger.Warn("unexpected spell cache entry", zap.String("word", word))
	}

	ok := c.lookup(word)
	c.cache.SetDefault(word, ok)
	return ok
}

func (c *Checker) lookup(word string) bool {
	if strings.IndexFunc(word, unicode.IsDigit) >= 0 {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.dicts {
		if d.Contains(word) {
			return true
		}
	}
	return false
}

// AddDictionary adds a dictionary and forgets cached verdicts.
func (c *Checker) AddDictionary(d *Dictionary) {
	c.mu.Lock()
	c.dicts = append(c.dicts, d)
	c.mu.Unlock()
	c.Purge()
}

// Purge forgets every cached verdict. Call it after changing a dictionary.
func (c *Checker) Purge() {
	c.cache.Flush()
}

// Cached returns the number of cached verdicts.
func (c *Checker) Cached() int {
	return c.cache.ItemCount()
}
