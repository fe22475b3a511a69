package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/translation"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
)

// Job names as constants for consistency
const (
	JobRetryStuckTranslations  = "retry_stuck_translations"
	JobCleanupTranslationCache = "cleanup_translation_cache"
	JobCleanupJobExecutions    = "cleanup_job_executions"
)

// retryBatchSize caps how many stuck messages one run re-dispatches.
const retryBatchSize = 200

// RegisterAllJobs registers all background jobs with the registry
func RegisterAllJobs() {
	registry := GetRegistry()

	registry.Register(JobDefinition{
		Name:        JobRetryStuckTranslations,
		Description: "Re-dispatch messages whose translation fan-out never completed",
		Schedule:    "0 * * * * *", // every minute
		Timeout:     10 * time.Minute,
		Enabled:     true,
		Handler:     handleRetryStuckTranslations,
	})

	registry.Register(JobDefinition{
		Name:        JobCleanupTranslationCache,
		Description: "Evict expired entries from the in-memory translation cache",
		Schedule:    "0 */10 * * * *", // every 10 minutes
		Timeout:     time.Minute,
		Enabled:     true,
		Handler:     handleCleanupTranslationCache,
	})

	registry.Register(JobDefinition{
		Name:        JobCleanupJobExecutions,
		Description: "Clean up job execution history past the retention period",
		Schedule:    "0 0 3 * * *", // daily at 03:00
		Timeout:     5 * time.Minute,
		Enabled:     true,
		Handler:     handleCleanupJobExecutions,
	})

	log.Info("[jobs] Registered %d jobs", registry.Count())
}

// Job handlers

// RetryResult is the result of the stuck translation retry job
type RetryResult struct {
	Reset        int `json:"reset"`
	Redispatched int `json:"redispatched"`
	Failed       int `json:"failed"`
}

// handleRetryStuckTranslations picks up messages that stayed in "sent" or
// "translating" past the threshold (orchestrator unavailable at post time,
// or an instance died mid-run) and runs the pipeline for them again.
func handleRetryStuckTranslations(ctx context.Context) (interface{}, error) {
	result := RetryResult{}

	enabled, stuckAfterMinutes := GetRetrySettings()
	if !enabled {
		log.Debug("[%s] Retry is disabled, skipping", JobRetryStuckTranslations)
		return result, nil
	}

	orchestrator := translation.GetOrchestrator()
	if orchestrator == nil {
		log.Warning("[%s] Translation pipeline unavailable, skipping", JobRetryStuckTranslations)
		return result, nil
	}

	cutoff := time.Now().Add(-time.Duration(stuckAfterMinutes) * time.Minute)

	// A message stuck in "translating" belongs to a run that died before
	// reaching a terminal status. Move it back to "sent" so the pipeline's
	// conditional transition accepts it again.
	res := db.Model(&models.Message{}).
		Where("status = ? AND created_at < ?", models.MessageStatusTranslating, cutoff).
		Update("status", models.MessageStatusSent)
	if res.Error != nil {
		return result, res.Error
	}
	result.Reset = int(res.RowsAffected)

	var stuck []models.Message
	err := db.Where("status = ? AND created_at < ?", models.MessageStatusSent, cutoff).
		Order("id").
		Limit(retryBatchSize).
		Find(&stuck).Error
	if err != nil {
		return result, err
	}

	for i := range stuck {
		select {
		case <-ctx.Done():
			log.Warning("[%s] Job cancelled", JobRetryStuckTranslations)
			return result, ctx.Err()
		default:
		}

		msg := &stuck[i]
		var channel models.Channel
		if err := db.Where("id = ?", msg.ChannelID).First(&channel).Error; err != nil {
			log.Error("[%s] Failed to load channel %s: %v", JobRetryStuckTranslations, msg.ChannelID, err)
			result.Failed++
			continue
		}

		members, err := models.GetChannelMembers(&channel)
		if err != nil {
			log.Error("[%s] Failed to snapshot members of channel %s: %v", JobRetryStuckTranslations, channel.ID, err)
			result.Failed++
			continue
		}
		snapshot := make([]translation.MemberSnapshot, 0, len(members))
		for _, m := range members {
			snapshot = append(snapshot, translation.MemberSnapshot{
				UserID:          m.UserID.String(),
				PrimaryLanguage: m.PrimaryLanguage,
			})
		}
		targets := translation.ResolveTargets(snapshot, msg.SourceLanguage)

		messageID := strconv.FormatUint(uint64(msg.ID), 10)
		if _, err := orchestrator.TranslateMessage(ctx, messageID, targets); err != nil {
			log.Warning("[%s] Re-dispatch of message %s failed: %v", JobRetryStuckTranslations, messageID, err)
			result.Failed++
			continue
		}
		result.Redispatched++
	}

	if result.Reset > 0 || result.Redispatched > 0 || result.Failed > 0 {
		log.Info("[%s] Completed: %d reset, %d redispatched, %d failed",
			JobRetryStuckTranslations, result.Reset, result.Redispatched, result.Failed)
	}
	return result, nil
}

// CacheCleanupResult is the result of the translation cache cleanup job
type CacheCleanupResult struct {
	Removed int `json:"removed"`
	Entries int `json:"entries"`
}

func handleCleanupTranslationCache(ctx context.Context) (interface{}, error) {
	cache := translation.GetCache()
	if cache == nil {
		return CacheCleanupResult{}, nil
	}

	removed := cache.Cleanup()
	stats := cache.Stats()

	if removed > 0 {
		log.Info("[%s] Evicted %d expired entries, %d remain",
			JobCleanupTranslationCache, removed, stats.Entries)
	}
	return CacheCleanupResult{Removed: removed, Entries: stats.Entries}, nil
}

// ExecutionCleanupResult is the result of the execution history cleanup job
type ExecutionCleanupResult struct {
	Deleted int64 `json:"deleted"`
}

func handleCleanupJobExecutions(ctx context.Context) (interface{}, error) {
	deleted, err := CleanupOldExecutions(GetExecutionRetentionDays())
	if err != nil {
		return nil, err
	}

	if deleted > 0 {
		log.Info("[%s] Cleaned up %d old execution records", JobCleanupJobExecutions, deleted)
	}
	return ExecutionCleanupResult{Deleted: deleted}, nil
}
