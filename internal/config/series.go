package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeriesConfig describes one sport's alt-total market series on the
// exchange: the ticker series prefix Brain filters markets by, the
// line spacing between adjacent alt-total contracts, and (optionally) the
// score provider's competition id for that sport, when the provider keys
// games by a numeric competition rather than a sport tag alone.
type SeriesConfig struct {
	SeriesPrefix             string `yaml:"series_prefix"`
	LineSpacing              int    `yaml:"line_spacing"`
	ScoreProviderCompetitionID string `yaml:"score_provider_competition_id,omitempty"`
}

// SeriesDocument maps a sport tag to its SeriesConfig.
type SeriesDocument map[string]SeriesConfig

// LoadSeriesDocument reads the market series document from path.
func LoadSeriesDocument(path string) (SeriesDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series config: %w", err)
	}

	var doc SeriesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse series config: %w", err)
	}

	return doc, nil
}

func (d SeriesDocument) ForSport(sport string) (SeriesConfig, bool) {
	sc, ok := d[sport]
	return sc, ok
}
