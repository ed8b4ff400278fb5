package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hh_test_runs_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	original := Gatherer
	Gatherer = reg
	t.Cleanup(func() { Gatherer = original })

	path := filepath.Join(t.TempDir(), "textfile", "market_radar.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "hh_test_runs_total 3") {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteTextfile(filepath.Join(blocker, "out.prom")); err == nil {
		t.Error("WriteTextfile() into a file path should fail")
	}
}
