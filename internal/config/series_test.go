package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeriesDocumentParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.yaml")
	const doc = `basketball:
  series_prefix: NBATOT
  line_spacing: 5
soccer:
  series_prefix: SOCTOT
  line_spacing: 1
  score_provider_competition_id: "1204"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write series yaml: %v", err)
	}

	sd, err := LoadSeriesDocument(path)
	if err != nil {
		t.Fatalf("LoadSeriesDocument: %v", err)
	}

	bball, ok := sd.ForSport("basketball")
	if !ok {
		t.Fatal("expected basketball entry")
	}
	if bball.SeriesPrefix != "NBATOT" || bball.LineSpacing != 5 {
		t.Fatalf("unexpected basketball config: %+v", bball)
	}

	soccer, ok := sd.ForSport("soccer")
	if !ok || soccer.ScoreProviderCompetitionID != "1204" {
		t.Fatalf("unexpected soccer config: %+v", soccer)
	}
}

func TestLoadSeriesDocumentMissingFile(t *testing.T) {
	_, err := LoadSeriesDocument("/nonexistent/series.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing series config file")
	}
}

func TestForSportUnknownSport(t *testing.T) {
	sd := SeriesDocument{}
	_, ok := sd.ForSport("curling")
	if ok {
		t.Fatal("expected unknown sport to report not-ok")
	}
}
