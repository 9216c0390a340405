package config

import (
	"time"

	"estudio/internal/recategorization"
)

// Defaults for the period-table cache
const (
	DefaultPeriodCacheTTL = 6 * time.Hour
	DefaultCacheWarmCron  = "0 */30 * * * *"
)

// EngineConfig reads the recategorization policy constants from the
// environment, falling back to the engine defaults.
func EngineConfig() recategorization.Config {
	def := recategorization.DefaultConfig()

	return recategorization.Config{
		MunicipalSurcharge:    GetDecimalEnv("RECAT_MUNICIPAL_SURCHARGE", def.MunicipalSurcharge),
		PerDependentSurcharge: GetDecimalEnv("RECAT_PER_DEPENDENT_SURCHARGE", def.PerDependentSurcharge),
		DualLeasingFloor:      recategorization.Category(GetEnv("RECAT_DUAL_LEASING_FLOOR", string(def.DualLeasingFloor))),
		BatchWorkers:          GetIntEnv("RECAT_BATCH_WORKERS", def.BatchWorkers),
	}
}

// PeriodCacheTTL is how long a period's tables stay in Redis.
func PeriodCacheTTL() time.Duration {
	return GetDurationEnv("PERIOD_CACHE_TTL", DefaultPeriodCacheTTL)
}

// CacheWarmSchedule is the cron expression (with seconds) of the cache
// warm-up job. The value "off" disables the job.
func CacheWarmSchedule() string {
	return GetEnv("CACHE_WARM_CRON", DefaultCacheWarmCron)
}
