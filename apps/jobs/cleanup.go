package jobs

import (
	"time"

	"github.com/getevo/evo/v2/lib/db"
)

// CleanupOldExecutions removes execution records older than the retention
// period in days
func CleanupOldExecutions(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("started_at < ?", cutoff).Delete(&JobExecution{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetExecutionHistory returns recent job executions, optionally filtered by
// job name
func GetExecutionHistory(jobName string, limit int) ([]JobExecution, error) {
	var executions []JobExecution

	query := db.Model(&JobExecution{}).Order("started_at DESC")
	if jobName != "" {
		query = query.Where("job_name = ?", jobName)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	if err := query.Limit(limit).Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

// GetLastExecution returns the most recent execution for a job
func GetLastExecution(jobName string) (*JobExecution, error) {
	var execution JobExecution

	err := db.Model(&JobExecution{}).
		Where("job_name = ?", jobName).
		Order("started_at DESC").
		First(&execution).Error
	if err != nil {
		return nil, err
	}
	return &execution, nil
}
