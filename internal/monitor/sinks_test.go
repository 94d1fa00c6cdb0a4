package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/influxdb"
)

type published struct {
	topic    string
	payload  any
	retained bool
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockPublisher) PublishJSON(topic string, v any, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{topic: topic, payload: v, retained: retained})
	return m.err
}

type mockStatsWriter struct {
	batches []influxdb.BatchStats
	tables  []influxdb.TableStats
	power   []influxdb.PowerSample
}

func (m *mockStatsWriter) WriteBatchStats(s influxdb.BatchStats)   { m.batches = append(m.batches, s) }
func (m *mockStatsWriter) WriteTableStats(s influxdb.TableStats)   { m.tables = append(m.tables, s) }
func (m *mockStatsWriter) WritePowerSample(s influxdb.PowerSample) { m.power = append(m.power, s) }

type mockGauges struct {
	power      map[string]float64
	violations map[string]int
}

func (m *mockGauges) SetActivePower(table string, v float64) { m.power[table] = v }
func (m *mockGauges) SetViolations(table string, n int)      { m.violations[table] = n }

func testReport() Report {
	return BuildReport(successfulBatch(), testFacilities())
}

func TestSummarise(t *testing.T) {
	sums := Summarise(testReport(), testFacilities())

	if len(sums) != 3 {
		t.Fatalf("Summarise() = %d summaries, want 3", len(sums))
	}
	fer := sums[0]
	if fer.Table != "Fer1" || fer.Region != "Konya - Kulu" || fer.Limit != 960 || fer.Violations != 1 {
		t.Errorf("Fer1 summary = %+v", fer)
	}
	if fer.Latest == nil || fer.Latest.Value != 975 || fer.BatchID != "batch-1" {
		t.Errorf("Fer1 latest = %+v", fer.Latest)
	}
	if failed := sums[2]; failed.Table != "Ferges2" || failed.Success || failed.Error == "" || failed.Latest != nil {
		t.Errorf("Ferges2 summary = %+v", failed)
	}
}

func TestNewBatchEvent(t *testing.T) {
	ev := NewBatchEvent(testReport())

	want := BatchEvent{
		ID:         "batch-1",
		Tables:     3,
		Succeeded:  2,
		Failed:     1,
		Violations: 1,
		StartedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		DurationMS: 1500,
	}
	if ev != want {
		t.Errorf("NewBatchEvent() = %+v, want %+v", ev, want)
	}
}

func TestMQTTSink_HandleReport(t *testing.T) {
	pub := &mockPublisher{}
	sink := NewMQTTSink(pub, testFacilities(), nil)

	sink.HandleReport(context.Background(), testReport())

	want := []struct {
		topic    string
		retained bool
	}{
		{"hkenergy/state/Fer1", true},
		{"hkenergy/state/Efor1", true},
		{"hkenergy/state/Ferges2", true},
		{"hkenergy/alert/Fer1", false},
		{"hkenergy/event/batch_completed", false},
	}
	if len(pub.msgs) != len(want) {
		t.Fatalf("published %d messages, want %d: %+v", len(pub.msgs), len(want), pub.msgs)
	}
	for i, w := range want {
		if pub.msgs[i].topic != w.topic || pub.msgs[i].retained != w.retained {
			t.Errorf("msg[%d] = %s retained=%v, want %s retained=%v",
				i, pub.msgs[i].topic, pub.msgs[i].retained, w.topic, w.retained)
		}
	}
	alerts, ok := pub.msgs[3].payload.([]Violation)
	if !ok || len(alerts) != 1 || alerts[0].DeviceID != "7" {
		t.Errorf("alert payload = %#v", pub.msgs[3].payload)
	}
}

func TestMQTTSink_PublishErrorsLogged(t *testing.T) {
	pub := &mockPublisher{err: errors.New("not connected")}
	logger := &mockLogger{}
	sink := NewMQTTSink(pub, testFacilities(), logger)

	sink.HandleReport(context.Background(), testReport())

	if len(pub.msgs) != 5 {
		t.Errorf("publish attempts = %d, want 5", len(pub.msgs))
	}
	if logger.warns.Load() != 5 {
		t.Errorf("warnings = %d, want 5", logger.warns.Load())
	}
}

func TestInfluxSink_HandleReport(t *testing.T) {
	w := &mockStatsWriter{}
	NewInfluxSink(w, testFacilities()).HandleReport(context.Background(), testReport())

	if len(w.batches) != 1 {
		t.Fatalf("batch points = %d, want 1", len(w.batches))
	}
	b := w.batches[0]
	wantAt := time.Date(2024, 5, 1, 10, 0, 1, 500_000_000, time.UTC)
	if b.BatchID != "batch-1" || b.Succeeded != 2 || b.Failed != 1 || !b.At.Equal(wantAt) {
		t.Errorf("batch stats = %+v", b)
	}
	if b.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", b.Duration)
	}
	if len(w.tables) != 3 {
		t.Errorf("table points = %d, want 3", len(w.tables))
	}
	if len(w.power) != 2 || w.power[0].Table != "Fer1" || w.power[0].Limit != 960 {
		t.Errorf("power samples = %+v", w.power)
	}
}

func TestMetricsSink_HandleReport(t *testing.T) {
	g := &mockGauges{power: map[string]float64{}, violations: map[string]int{}}
	NewMetricsSink(g).HandleReport(context.Background(), testReport())

	if g.power["Fer1"] != 975 || g.power["Efor1"] != 500 {
		t.Errorf("power gauges = %v", g.power)
	}
	if g.violations["Fer1"] != 1 || g.violations["Efor1"] != 0 {
		t.Errorf("violation gauges = %v", g.violations)
	}
	if _, ok := g.power["Ferges2"]; ok {
		t.Error("failed tables must not set gauges")
	}
}
