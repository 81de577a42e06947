package compress

import (
	"sync"
	"time"
)

// statsRecorder accumulates per-engine aggregates for the lifetime of the
// engine singleton. The four aggregate fields are read-modify-written under
// one lock so concurrent calls never lose updates.
type statsRecorder struct {
	mu              sync.Mutex
	files           int64
	originalBytes   int64
	compressedBytes int64
	ratioSum        float64
	timeSum         time.Duration
}

// record folds a result into the aggregates. Failed and degraded results are
// skipped: degraded results carry zeroed sizes that would corrupt averages.
func (s *statsRecorder) record(r Result) {
	if !r.Success || r.Degraded {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files++
	s.originalBytes += r.OriginalSize
	s.compressedBytes += r.CompressedSize
	s.ratioSum += r.CompressionRatio
	s.timeSum += r.ProcessingTime
}

func (s *statsRecorder) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		TotalFiles:           s.files,
		TotalOriginalBytes:   s.originalBytes,
		TotalCompressedBytes: s.compressedBytes,
	}
	if s.files > 0 {
		stats.AverageRatio = s.ratioSum / float64(s.files)
		stats.AverageTime = s.timeSum / time.Duration(s.files)
	}
	return stats
}

func (s *statsRecorder) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = 0
	s.originalBytes = 0
	s.compressedBytes = 0
	s.ratioSum = 0
	s.timeSum = 0
}
