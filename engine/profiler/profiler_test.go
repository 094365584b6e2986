package profiler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// steppingClock advances by step every time it is read.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestTrackRecordsPhasesInOrder(t *testing.T) {
	p := NewProfiler(nil)
	p.now = steppingClock(10 * time.Millisecond)

	require.NoError(t, p.Track(PhaseDeviceAcquisition, func() error { return nil }))
	require.NoError(t, p.Track(PhaseResourceSetup, func() error { return nil }))

	phases := p.Phases()
	require.Len(t, phases, 2)
	assert.Equal(t, Phase{Name: PhaseDeviceAcquisition, Duration: 10 * time.Millisecond}, phases[0])
	assert.Equal(t, PhaseResourceSetup, phases[1].Name)
	assert.Equal(t, 20*time.Millisecond, p.Total())
}

func TestTrackReturnsAndRecordsFailures(t *testing.T) {
	p := NewProfiler(nil)
	boom := errors.New("boom")

	err := p.Track(PhaseDrawSubmission, func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.Len(t, p.Phases(), 1)
}

func TestReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(zap.New(core))
	p.now = steppingClock(time.Millisecond)

	require.NoError(t, p.Track(PhaseDeviceAcquisition, func() error { return nil }))
	require.NoError(t, p.Track(PhaseDrawSubmission, func() error { return nil }))
	p.Report()

	assert.Equal(t, 2, logs.FilterMessage("phase timing").Len())
	require.Equal(t, 1, logs.FilterMessage("run profile").Len())
	entry := logs.FilterMessage("run profile").All()[0]
	assert.Equal(t, 2*time.Millisecond, entry.ContextMap()["total"])
}
