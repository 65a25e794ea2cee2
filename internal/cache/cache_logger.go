package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateDegreeCache invalidates all degree-related caches
func InvalidateDegreeCache(ctx context.Context, cm *CacheManager, name string) {
	SafeDelete(ctx, cm.Degree, fmt.Sprintf("name:%s", name))
	SafeInvalidatePattern(ctx, cm.Degree, "list:*")
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("degree:%s", name))
}

// InvalidateRoadmapCache invalidates all roadmap-related caches
func InvalidateRoadmapCache(ctx context.Context, cm *CacheManager, name string) {
	SafeDelete(ctx, cm.Roadmap, fmt.Sprintf("name:%s", name))
	SafeInvalidatePattern(ctx, cm.Roadmap, "list:*")
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("roadmap:%s", name))
}
