package api

import (
	"banking_system/internal/reports" // Report engine
	"banking_system/internal/utils"   // Utility functions
	"context"                         // Context for Redis operations
	"encoding/json"                   // Raw JSON bodies
	"net/http"                        // HTTP status codes
	"strconv"                         // String conversion
	"time"                            // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ReportCache keeps rendered report bodies in Redis. Keys carry a
// generation number that every write bumps, so a body computed before a
// write is never found after it. A nil cache or one without a client does
// nothing.
type ReportCache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Entry lifetime
}

const reportGenKey = "report:gen" // Bumped by every successful write

// NewReportCache returns a cache backed by rdb, nil rdb disables caching
func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (rc *ReportCache) enabled() bool {
	return rc != nil && rc.rdb != nil && rc.ttl > 0
}

func reportKey(gen int64, id int) string {
	return "report:problem:" + strconv.Itoa(id) + ":" + strconv.FormatInt(gen, 10)
}

// Generation returns the current cache generation. The flag is false when
// the cache is disabled or Redis cannot be read, and the caller must not cache.
func (rc *ReportCache) Generation(ctx context.Context) (int64, bool) {
	if !rc.enabled() {
		return 0, false
	}
	gen, err := utils.GetCounter(ctx, rc.rdb, reportGenKey)
	if err != nil {
		logrus.WithError(err).Warn("Report cache generation read failed")
		return 0, false
	}
	return gen, true
}

// Get returns the body of report id cached in generation gen
func (rc *ReportCache) Get(ctx context.Context, gen int64, id int) (json.RawMessage, bool) {
	if !rc.enabled() {
		return nil, false
	}
	var body json.RawMessage
	found, err := utils.GetCache(ctx, rc.rdb, reportKey(gen, id), &body)
	if err != nil {
		logrus.WithError(err).WithField("problem", id).Warn("Report cache read failed")
		return nil, false
	}
	return body, found
}

// Set stores the body of report id under generation gen
func (rc *ReportCache) Set(ctx context.Context, gen int64, id int, body json.RawMessage) {
	if !rc.enabled() {
		return
	}
	if err := utils.SetCache(ctx, rc.rdb, reportKey(gen, id), body, rc.ttl); err != nil {
		logrus.WithError(err).WithField("problem", id).Warn("Report cache write failed")
	}
}

// Invalidate starts a new generation and drops the previous one's bodies
func (rc *ReportCache) Invalidate(ctx context.Context) {
	if !rc.enabled() {
		return
	}
	gen, err := utils.BumpCounter(ctx, rc.rdb, reportGenKey)
	if err != nil {
		logrus.WithError(err).Error("Report cache invalidation failed")
		return
	}
	ids := reports.Problems()
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, reportKey(gen-1, id))
	}
	// Stale keys are unreachable already, deleting them only frees memory
	if err := utils.DeleteCache(ctx, rc.rdb, keys...); err != nil {
		logrus.WithError(err).Debug("Report cache cleanup failed")
	}
}

// ProblemHandler serves GET /problems/:id
func ProblemHandler(engine *reports.Engine, cache *ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse problem number
		if err != nil || !reports.Has(id) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		ctx := c.Request.Context()
		gen, cacheable := cache.Generation(ctx) // Read before the store is queried
		// If cached data found, return it
		if cacheable {
			if body, found := cache.Get(ctx, gen, id); found {
				c.Data(http.StatusOK, "application/json; charset=utf-8", body)
				return
			}
		}
		result, err := engine.Run(ctx, id) // Compute the report
		if err != nil {
			writeError(c, err, "report", logrus.Fields{"problem": id})
			return
		}
		body, err := json.Marshal(result) // Render once so cached and fresh bodies match
		if err != nil {
			writeError(c, err, "report", logrus.Fields{"problem": id})
			return
		}
		if cacheable {
			cache.Set(ctx, gen, id, body) // Cache the response for future requests
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
