package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairlens/fairlens/internal/domain"
)

func TestAggregateBaseline_EmptySelection(t *testing.T) {
	assert.Equal(t, 0.0, AggregateBaseline(nil, map[string]float64{"BGD": 80}, nil))
	assert.Equal(t, 0.0, AggregateBaseline([]string{}, nil, nil))
}

func TestAggregateBaseline_SingleCountryIdentity(t *testing.T) {
	risks := map[string]float64{"BGD": 73.4}

	// Volume-weighting is a no-op for n=1, regardless of the volume.
	for _, vol := range []float64{0, 1, 10, 500} {
		got := AggregateBaseline([]string{"BGD"}, risks, map[string]float64{"BGD": vol})
		assert.Equal(t, 73.4, got, "volume %v", vol)
	}
}

func TestAggregateBaseline_VolumeWeighted(t *testing.T) {
	selected := []string{"BGD", "DEU"}
	risks := map[string]float64{"BGD": 80, "DEU": 20}
	volumes := map[string]float64{"BGD": 30, "DEU": 10}

	// (80*30 + 20*10) / 40 = 65
	assert.InDelta(t, 65.0, AggregateBaseline(selected, risks, volumes), 1e-9)
}

func TestAggregateBaseline_ZeroVolumesFallBackToMean(t *testing.T) {
	selected := []string{"BGD", "DEU"}
	risks := map[string]float64{"BGD": 80, "DEU": 20}
	volumes := map[string]float64{"BGD": 0, "DEU": 0}

	assert.InDelta(t, 50.0, AggregateBaseline(selected, risks, volumes), 1e-9)
}

func TestAggregateBaseline_IgnoresUnselectedRisks(t *testing.T) {
	selected := []string{"DEU"}
	risks := map[string]float64{"BGD": 80, "DEU": 20}
	volumes := map[string]float64{"BGD": 100, "DEU": 10}

	assert.Equal(t, 20.0, AggregateBaseline(selected, risks, volumes))
}

func TestSelection_PurgeInvariant(t *testing.T) {
	s := NewSelection()
	s.Select("BGD")
	s.Select("DEU")
	s.SetVolume("BGD", 40)

	assert.Equal(t, []string{"BGD", "DEU"}, s.Selected())
	assert.Equal(t, 40.0, s.Volumes()["BGD"])
	assert.Equal(t, domain.DefaultVolume, s.Volumes()["DEU"])

	s.Deselect("BGD")
	assert.False(t, s.Contains("BGD"))
	_, hasOrphan := s.Volumes()["BGD"]
	assert.False(t, hasOrphan, "deselected country must leave no volume entry")
}

func TestSelection_SetVolumeSelectsAndClamps(t *testing.T) {
	s := NewSelection()
	s.SetVolume("VNM", -5)

	assert.True(t, s.Contains("VNM"))
	assert.Equal(t, 0.0, s.Volumes()["VNM"])
}

func TestConcentrationFactor_EvenPortfolio(t *testing.T) {
	selected := []string{"A", "B", "C"}
	risks := map[string]float64{"A": 50, "B": 50, "C": 50}

	assert.Equal(t, 1.0, ConcentrationFactor(selected, risks, nil))
}

func TestConcentrationFactor_SingleCountry(t *testing.T) {
	assert.Equal(t, 1.0, ConcentrationFactor([]string{"A"}, map[string]float64{"A": 90}, nil))
}

func TestConcentrationFactor_UnevenPortfolioAboveOne(t *testing.T) {
	selected := []string{"A", "B", "C"}
	risks := map[string]float64{"A": 90, "B": 10, "C": 10}

	factor := ConcentrationFactor(selected, risks, nil)
	assert.Greater(t, factor, 1.0)
	assert.LessOrEqual(t, factor, ConcentrationFactorMax)
}

func TestConcentrationFactor_Capped(t *testing.T) {
	selected := []string{"A", "B"}
	risks := map[string]float64{"A": 100, "B": 0.0001}

	assert.LessOrEqual(t, ConcentrationFactor(selected, risks, nil), ConcentrationFactorMax)
}
