package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a cache pattern, logging instead
// of propagating failures. Cache invalidation must never fail a write.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of propagating failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAssessmentCache drops every cache entry derived from one
// assessment and its creator's listings.
func InvalidateAssessmentCache(ctx context.Context, cm *CacheManager, assessmentID uint, creatorID string) {
	SafeDelete(ctx, cm.Assessment,
		fmt.Sprintf("id:%d", assessmentID),
		fmt.Sprintf("details:%d", assessmentID))

	SafeInvalidatePattern(ctx, cm.Assessment, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.Assessment, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("assessment:%d:*", assessmentID))
}

// InvalidateQuestionCache drops the cached question set of an
// assessment plus the assessment views that embed it.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, assessmentID uint) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("assessment:%d", assessmentID))
	SafeDelete(ctx, cm.Assessment, fmt.Sprintf("details:%d", assessmentID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("assessment:%d:*", assessmentID))
}

// InvalidateOptionCache drops the cached options of a question. The
// question lists embed options, so those go too.
func InvalidateOptionCache(ctx context.Context, cm *CacheManager, questionID uint) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("options:%d", questionID))
	SafeInvalidatePattern(ctx, cm.Question, "assessment:*")
}
