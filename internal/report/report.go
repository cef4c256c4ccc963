// Package report implements the Metrics Aggregator: it combines per-worker
// latencies, service times, counts, and utilization bookkeeping into the
// report structure returned from a run. Field names match the contract in
// the design document and are stable across reimplementations.
package report

import (
	"brokle-loadtest/internal/histogram"
	"brokle-loadtest/internal/pool"
)

// Configuration echoes the driver settings the report was produced under.
type Configuration struct {
	TargetArrivalRate     float64 `json:"targetArrivalRate"`
	Concurrency           int     `json:"concurrency"`
	OverallDurationMillis float64 `json:"overallDurationMillis"`
	WarmupMillis          float64 `json:"warmupMillis"`
	RequestTimeoutMillis  float64 `json:"requestTimeoutMillis"`
}

// LatencyStatsMillis is the shape published for both request latency and
// service time distributions.
type LatencyStatsMillis struct {
	Avg   float64 `json:"avg"`
	P0    float64 `json:"p0"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	P99_9 float64 `json:"p99_9"`
	P100  float64 `json:"p100"`
}

func fromHistogramStats(s histogram.Stats) LatencyStatsMillis {
	return LatencyStatsMillis{
		Avg: s.Avg, P0: s.P0, P25: s.P25, P50: s.P50, P75: s.P75,
		P90: s.P90, P95: s.P95, P99: s.P99, P99_9: s.P99_9, P100: s.P100,
	}
}

// WorkerUtilization summarizes how workers spent their time.
type WorkerUtilization struct {
	RunTimeMillis            float64 `json:"runTimeMillis"`
	BackoffTimeMillis        float64 `json:"backoffTimeMillis"`
	BehindScheduleTimeMillis float64 `json:"behindScheduleTimeMillis"`
	Utilization              float64 `json:"utilization"`
}

// Report is the structured result of a run.
type Report struct {
	Configuration Configuration  `json:"configuration"`
	TestRunData   map[string]any `json:"testRunData"`

	CompletedIterations int64 `json:"completedIterations"`
	MissedIterations    int64 `json:"missedIterations"`
	ErrorIterations     int64 `json:"errorIterations"`

	FailedIterationsRatio float64 `json:"failedIterationsRatio"`
	WorkerCycleTimeMillis float64 `json:"workerCycleTimeMillis"`

	TotalRequestsCompleted       int64   `json:"totalRequestsCompleted"`
	ThroughputOverall            float64 `json:"throughputOverall"`
	IterationsPerSecondPerWorker float64 `json:"iterationsPerSecondPerWorker"`
	TargetArrivalRateRatio       float64 `json:"targetArrivalRateRatio"`

	RequestLatencyStatsMillis LatencyStatsMillis `json:"requestLatencyStatsMillis"`
	ServiceTimeStatsMillis    LatencyStatsMillis `json:"serviceTimeStatsMillis"`

	WorkerUtilization WorkerUtilization `json:"workerUtilization"`
}

// Input bundles everything the aggregator needs from a completed run.
type Input struct {
	Configuration Configuration
	TestRunData   map[string]any

	WorkerResults []pool.Result

	MissedIterations      int64
	MissedLatencyHistogram *histogram.Histogram

	WorkerCycleTimeMillis float64
	MeasurementSeconds    float64
}

// Aggregate combines per-worker results and the scheduler's missed-iteration
// bookkeeping into the final Report.
func Aggregate(in Input) Report {
	requestLatency := histogram.New()
	serviceTime := histogram.New()
	requestLatency.Merge(in.MissedLatencyHistogram)

	var completed, errors, totalItems int64
	var runTime, backoff, behindSchedule int64

	for _, r := range in.WorkerResults {
		requestLatency.Merge(r.RequestLatency)
		serviceTime.Merge(r.ServiceTime)
		completed += r.Completed
		errors += r.Errors
		totalItems += r.TotalItems
		runTime += r.RunTimeMicros
		backoff += r.BackoffMicros
		behindSchedule += r.BehindScheduleMicros
	}

	missed := in.MissedIterations
	totalCounted := completed + errors + missed

	var failedRatio float64
	if totalCounted > 0 {
		failedRatio = float64(errors+missed) / float64(totalCounted)
	}

	var targetRatio float64
	if in.Configuration.TargetArrivalRate > 0 && in.MeasurementSeconds > 0 {
		achieved := float64(totalItems) / in.MeasurementSeconds
		targetRatio = achieved / in.Configuration.TargetArrivalRate
	}

	var throughput, iterationsPerWorker float64
	if in.MeasurementSeconds > 0 {
		throughput = float64(totalItems) / in.MeasurementSeconds
		if in.Configuration.Concurrency > 0 {
			iterationsPerWorker = float64(completed) / in.MeasurementSeconds / float64(in.Configuration.Concurrency)
		}
	}

	var utilization float64
	if runTime+backoff > 0 {
		utilization = float64(runTime) / float64(runTime+backoff)
	}

	const usToMs = 1000.0

	return Report{
		Configuration:         in.Configuration,
		TestRunData:           in.TestRunData,
		CompletedIterations:   completed,
		MissedIterations:      missed,
		ErrorIterations:       errors,
		FailedIterationsRatio: failedRatio,
		WorkerCycleTimeMillis: in.WorkerCycleTimeMillis,

		TotalRequestsCompleted:       completed,
		ThroughputOverall:            throughput,
		IterationsPerSecondPerWorker: iterationsPerWorker,
		TargetArrivalRateRatio:       targetRatio,

		RequestLatencyStatsMillis: fromHistogramStats(requestLatency.StatsMillis()),
		ServiceTimeStatsMillis:    fromHistogramStats(serviceTime.StatsMillis()),

		WorkerUtilization: WorkerUtilization{
			RunTimeMillis:            float64(runTime) / usToMs,
			BackoffTimeMillis:        float64(backoff) / usToMs,
			BehindScheduleTimeMillis: float64(behindSchedule) / usToMs,
			Utilization:              utilization,
		},
	}
}
