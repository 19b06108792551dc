package services

import (
	"fmt"

	"github.com/nutricart/nutricart-api/internal/config"
	"github.com/nutricart/nutricart-api/internal/logger"
	"github.com/nutricart/nutricart-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Compute      string            `json:"compute"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck verifies database and computation-service connectivity.
// A dead computation service degrades but does not fail the check: the
// nutrition log API stays usable without it.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		logger.Error("health check failed", zap.Error(err))
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			logger.Error("health check failed", zap.Error(err))
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	if err := utils.PingCompute(cfg.ComputeURL); err != nil {
		if result.Status == "healthy" {
			result.Status = "degraded"
		}
		result.Compute = "unreachable"
		result.Details["compute_error"] = err.Error()
		logger.Warn("computation service unreachable", zap.Error(err))
	} else {
		result.Compute = "ok"
		result.Details["compute_url"] = cfg.ComputeURL
	}

	return result
}
