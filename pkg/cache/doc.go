// Package cache provides an optional Redis-backed response cache for
// map-service requests.
//
// ArcGIS map services do not send cache-control headers the way typed
// APIs do, so entries are stored with a fixed, caller-chosen TTL instead
// of header-derived expiry. Keys are built from the request endpoint and
// its sorted query parameters, so the same page request (same layer,
// filter, offset, record count) always maps to the same key.
//
// The cache is a lookaside: the HTTP client checks it before a request
// and fills it after a successful one. Cache errors never fail a fetch;
// the client falls back to the network.
//
// Example usage:
//
//	manager := cache.NewManager(redisClient)
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// perform the request, then:
//		_ = manager.Set(ctx, key, body, resp.StatusCode, 5*time.Minute)
//	}
package cache
