// Package cache provides a generic, thread-safe LRU cache.
//
// The compositor keeps built filter effects in one, keyed by the filter
// operations and the content size they were built for:
//
//	filters := cache.New[string, gfx.ImageFilter](64)
//	f := filters.GetOrCreate(key, build)
package cache
