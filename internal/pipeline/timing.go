package pipeline

import "time"

// TimingRecord attributes elapsed wall-clock time to a named step. Purely
// observational; timings never affect control flow.
type TimingRecord struct {
	Step    string
	Elapsed time.Duration
}

// Timings accumulates the step timings of one file's processing.
type Timings struct {
	records []TimingRecord
}

// Record appends one step timing.
func (t *Timings) Record(step string, elapsed time.Duration) {
	t.records = append(t.records, TimingRecord{Step: step, Elapsed: elapsed})
}

// Records returns the recorded steps in order.
func (t *Timings) Records() []TimingRecord {
	return t.records
}

// Total returns the sum of all recorded steps.
func (t *Timings) Total() time.Duration {
	var total time.Duration
	for _, rec := range t.records {
		total += rec.Elapsed
	}
	return total
}
