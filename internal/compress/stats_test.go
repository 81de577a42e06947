package compress

import (
	"testing"
	"time"
)

func TestStatsRecorderAggregates(t *testing.T) {
	var rec statsRecorder
	rec.record(Result{Success: true, OriginalSize: 1000, CompressedSize: 400, CompressionRatio: 60, ProcessingTime: 2 * time.Second})
	rec.record(Result{Success: true, OriginalSize: 2000, CompressedSize: 1600, CompressionRatio: 20, ProcessingTime: 4 * time.Second})

	stats := rec.snapshot()
	if stats.TotalFiles != 2 {
		t.Fatalf("totalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.TotalOriginalBytes != 3000 || stats.TotalCompressedBytes != 2000 {
		t.Fatalf("bytes = %d/%d, want 3000/2000", stats.TotalOriginalBytes, stats.TotalCompressedBytes)
	}
	if stats.AverageRatio != 40 {
		t.Fatalf("averageRatio = %v, want 40", stats.AverageRatio)
	}
	if stats.AverageTime != 3*time.Second {
		t.Fatalf("averageTime = %v, want 3s", stats.AverageTime)
	}
}

func TestStatsRecorderSkipsFailuresAndDegraded(t *testing.T) {
	var rec statsRecorder
	rec.record(Result{Success: false, OriginalSize: 1000})
	rec.record(Result{Success: true, Degraded: true, OriginalSize: 1000})

	if stats := rec.snapshot(); stats.TotalFiles != 0 {
		t.Fatalf("totalFiles = %d, want 0", stats.TotalFiles)
	}
}

func TestStatsRecorderReset(t *testing.T) {
	var rec statsRecorder
	rec.record(Result{Success: true, OriginalSize: 10, CompressedSize: 5, CompressionRatio: 50, ProcessingTime: time.Second})
	rec.reset()

	stats := rec.snapshot()
	if stats.TotalFiles != 0 || stats.AverageRatio != 0 || stats.AverageTime != 0 {
		t.Fatalf("reset left residue: %+v", stats)
	}
}

func TestStatsEmptySnapshot(t *testing.T) {
	var rec statsRecorder
	stats := rec.snapshot()
	if stats.AverageRatio != 0 || stats.AverageTime != 0 {
		t.Fatalf("empty snapshot must not divide by zero: %+v", stats)
	}
}
