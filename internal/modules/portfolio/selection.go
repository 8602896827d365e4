package portfolio

import (
	"math"
	"sort"

	"github.com/fairlens/fairlens/internal/domain"
)

// Selection is the set of selected ISO codes plus a volume per code.
// The volume map never holds an entry for a deselected country: every
// mutation maintains that invariant.
type Selection struct {
	volumes map[string]float64
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{volumes: make(map[string]float64)}
}

// NewSelectionFromVolumes restores a selection from a persisted volume
// map. A nil map yields an empty selection.
func NewSelectionFromVolumes(volumes map[string]float64) *Selection {
	s := NewSelection()
	for iso, vol := range volumes {
		s.volumes[iso] = clampVolume(vol)
	}
	return s
}

// Select adds a country with the default volume. Selecting an already
// selected country keeps its current volume.
func (s *Selection) Select(iso string) {
	if _, ok := s.volumes[iso]; !ok {
		s.volumes[iso] = domain.DefaultVolume
	}
}

// Deselect removes a country and purges its volume entry.
func (s *Selection) Deselect(iso string) {
	delete(s.volumes, iso)
}

// SetVolume sets a selected country's volume. Setting a volume for an
// unselected country selects it.
func (s *Selection) SetVolume(iso string, volume float64) {
	s.volumes[iso] = clampVolume(volume)
}

// Contains reports whether the country is selected.
func (s *Selection) Contains(iso string) bool {
	_, ok := s.volumes[iso]
	return ok
}

// Selected returns the selected ISO codes, sorted for deterministic
// iteration.
func (s *Selection) Selected() []string {
	isos := make([]string, 0, len(s.volumes))
	for iso := range s.volumes {
		isos = append(isos, iso)
	}
	sort.Strings(isos)
	return isos
}

// Volumes returns a copy of the volume map.
func (s *Selection) Volumes() map[string]float64 {
	out := make(map[string]float64, len(s.volumes))
	for iso, vol := range s.volumes {
		out[iso] = vol
	}
	return out
}

// Len returns the number of selected countries.
func (s *Selection) Len() int {
	return len(s.volumes)
}

// Replace swaps the whole selection for the given volume map, clamping
// volumes and dropping nothing else: the new map is the new selection.
func (s *Selection) Replace(volumes map[string]float64) {
	s.volumes = make(map[string]float64, len(volumes))
	for iso, vol := range volumes {
		s.volumes[iso] = clampVolume(vol)
	}
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
