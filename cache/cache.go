package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

var RateLimiterCache = cache.New(10*time.Minute, 15*time.Minute)
var MarketBoardCache = cache.New(cache.NoExpiration, 0)
var RotatorCache = cache.New(cache.NoExpiration, 0)

const (
	MarketBoardKey = "market_board"
	RotatorKey     = "rotator_quotes"
)

// NewSessionCache holds dashboard sessions. Entries slide on every access
// (see SessionService.Get) and onEvicted runs when one expires or is deleted.
func NewSessionCache(ttl time.Duration, onEvicted func(string, interface{})) *cache.Cache {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(onEvicted)
	return c
}
