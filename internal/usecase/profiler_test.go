package usecase

import (
	"testing"
	"time"
)

func TestProfiler_TracksNamedStages(t *testing.T) {
	p := NewProfiler()
	p.Track("stageA", func() { time.Sleep(time.Millisecond) })
	p.Track("stageB", func() {})

	fields := p.Fields()
	if _, ok := fields["stageA"]; !ok {
		t.Error("expected stageA to be recorded")
	}
	if _, ok := fields["stageB"]; !ok {
		t.Error("expected stageB to be recorded")
	}
	if _, ok := fields["total"]; !ok {
		t.Error("expected total to be recorded")
	}
}

func TestProfiler_AccumulatesRepeatedStage(t *testing.T) {
	p := NewProfiler()
	p.Track("stage", func() { time.Sleep(time.Millisecond) })
	p.Track("stage", func() { time.Sleep(time.Millisecond) })

	if p.Fields()["stage"] < 2*time.Millisecond {
		t.Errorf("expected accumulated duration across repeated Track calls, got %v", p.Fields()["stage"])
	}
}

func TestProfiler_TotalGrowsWithElapsedTime(t *testing.T) {
	p := NewProfiler()
	time.Sleep(time.Millisecond)
	if p.Total() < time.Millisecond {
		t.Errorf("expected total to reflect elapsed wall time, got %v", p.Total())
	}
}
