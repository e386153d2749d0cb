// In file: internal/tools/metrics.go
package tools

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// MetricsRecorder tracks per-tool reliability and latency in Redis so that
// operators can see which tools the model leans on and which ones fail.
//
// Each tool gets a Redis hash ("toolmetrics:<name>") holding success/failure
// counters, an exponentially weighted average latency, and the most recent
// failure reason. Writes are fire-and-forget: a metrics hiccup must never
// fail a dispatch.
type MetricsRecorder struct {
	rdb *redis.Client
}

func NewMetricsRecorder(rdb *redis.Client) *MetricsRecorder {
	return &MetricsRecorder{rdb: rdb}
}

func metricsKey(toolName string) string {
	return fmt.Sprintf("toolmetrics:%s", toolName)
}

// RecordSuccess updates a tool's counters and smoothed latency after a
// successful dispatch.
func (m *MetricsRecorder) RecordSuccess(ctx context.Context, toolName string, latency time.Duration) {
	key := metricsKey(toolName)
	const alpha = 0.1

	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		currentStr, err := tx.HGet(ctx, key, "avg_latency_ms").Result()
		if err != nil && err != redis.Nil {
			return err
		}
		current, _ := strconv.ParseInt(currentStr, 10, 64)
		if current == 0 {
			current = latency.Milliseconds()
		}
		smoothed := int64((alpha * float64(latency.Milliseconds())) + ((1.0 - alpha) * float64(current)))

		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HIncrBy(ctx, key, "total_successes", 1)
			pipe.HSet(ctx, key, "avg_latency_ms", smoothed)
			pipe.HSet(ctx, key, "last_invoked", time.Now().Format(time.RFC3339Nano))
			return nil
		})
		return err
	}, key)
	if err != nil {
		log.Printf("WARNING: Failed to record success metrics for tool %s: %v", toolName, err)
	}
}

// RecordFailure bumps a tool's failure counter and remembers the reason.
func (m *MetricsRecorder) RecordFailure(ctx context.Context, toolName string, cause error) {
	key := metricsKey(toolName)
	pipe := m.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, "total_failures", 1)
	pipe.HSet(ctx, key, "last_error", cause.Error())
	pipe.HSet(ctx, key, "last_invoked", time.Now().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARNING: Failed to record failure metrics for tool %s: %v", toolName, err)
	}
}

// ToolMetrics is a read-side snapshot of a tool's recorded metrics.
type ToolMetrics struct {
	ToolName       string `json:"tool_name"`
	TotalSuccesses int64  `json:"total_successes"`
	TotalFailures  int64  `json:"total_failures"`
	AvgLatencyMS   int64  `json:"avg_latency_ms"`
	LastError      string `json:"last_error,omitempty"`
}

// Snapshot reads the current metrics for a tool. A tool that was never
// invoked yields a zero snapshot, not an error.
func (m *MetricsRecorder) Snapshot(ctx context.Context, toolName string) (*ToolMetrics, error) {
	data, err := m.rdb.HGetAll(ctx, metricsKey(toolName)).Result()
	if err != nil {
		return nil, err
	}

	metrics := &ToolMetrics{ToolName: toolName}
	metrics.TotalSuccesses, _ = strconv.ParseInt(data["total_successes"], 10, 64)
	metrics.TotalFailures, _ = strconv.ParseInt(data["total_failures"], 10, 64)
	metrics.AvgLatencyMS, _ = strconv.ParseInt(data["avg_latency_ms"], 10, 64)
	metrics.LastError = data["last_error"]
	return metrics, nil
}
