package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Phase names used by the engine.
const (
	PhaseDeviceAcquisition = "device_acquisition"
	PhaseResourceSetup     = "resource_setup"
	PhaseDrawSubmission    = "draw_submission"
)

// Phase is one timed section of a run.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Profiler records how long each named phase of a run takes and reports the timings together
// with memory statistics through the logger.
type Profiler struct {
	logger *zap.Logger
	now    func() time.Time
	phases []Phase
}

// NewProfiler creates a Profiler reporting to logger. A nil logger disables the report.
//
// Parameters:
//   - logger: the destination of Report
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger: logger,
		now:    time.Now,
	}
}

// Track runs fn and records its duration under name, whether or not fn fails.
//
// Parameters:
//   - name: the phase name
//   - fn: the work to time
//
// Returns:
//   - error: the error returned by fn
func (p *Profiler) Track(name string, fn func() error) error {
	start := p.now()
	err := fn()
	p.phases = append(p.phases, Phase{Name: name, Duration: p.now().Sub(start)})
	if err != nil {
		p.logger.Debug("phase failed", zap.String("phase", name), zap.Error(err))
	}
	return err
}

// Phases returns the recorded phases in the order they ran.
func (p *Profiler) Phases() []Phase {
	out := make([]Phase, len(p.phases))
	copy(out, p.phases)
	return out
}

// Total returns the sum of all recorded phase durations.
func (p *Profiler) Total() time.Duration {
	var total time.Duration
	for _, ph := range p.phases {
		total += ph.Duration
	}
	return total
}

// Report logs one entry per phase, then the total and the current heap statistics.
func (p *Profiler) Report() {
	for _, ph := range p.phases {
		p.logger.Info("phase timing",
			zap.String("phase", ph.Name),
			zap.Duration("duration", ph.Duration),
		)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	p.logger.Info("run profile",
		zap.Duration("total", p.Total()),
		zap.Float64("heap_mb", float64(m.Alloc)/1024/1024),
		zap.Float64("sys_mb", float64(m.Sys)/1024/1024),
		zap.Uint32("gc_count", m.NumGC),
	)
}
