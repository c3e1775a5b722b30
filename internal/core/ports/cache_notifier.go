package ports

// CacheNotifier signals the rendering layer that cached output for a logical
// path is stale. Delivery is fire-and-forget: no acknowledgement, no retry.
type CacheNotifier interface {
	Invalidate(path string)
}
