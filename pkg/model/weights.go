package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// Weights scales every objective term. The zero value disables all terms; start
// from DefaultWeights.
type Weights struct {
	CorridorArea         int64 `mapstructure:"W_CORRIDOR_AREA" json:"W_CORRIDOR_AREA"`
	EntranceLength       int64 `mapstructure:"W_ENTRANCE_LEN" json:"W_ENTRANCE_LEN"`
	Border               int64 `mapstructure:"W_BORDER" json:"W_BORDER"`
	BandCount            int64 `mapstructure:"W_BAND_COUNT" json:"W_BAND_COUNT"`
	DoorAdjacency        int64 `mapstructure:"W_DOOR_ADJ" json:"W_DOOR_ADJ"`
	CenterAdjacency      int64 `mapstructure:"W_CENTER_ADJ" json:"W_CENTER_ADJ"`
	HorizontalPreference int64 `mapstructure:"W_HORIZ_PREF" json:"W_HORIZ_PREF"`
	CriticalPair         int64 `mapstructure:"W_PROD_STORE_BON" json:"W_PROD_STORE_BON"`
	RoomEfficiency       int64 `mapstructure:"W_ROOM_EFFICIENCY" json:"W_ROOM_EFFICIENCY"`
	Priority             int64 `mapstructure:"W_PRIORITY_BONUS" json:"W_PRIORITY_BONUS"`
	Symmetry             int64 `mapstructure:"W_SYMMETRY_BONUS" json:"W_SYMMETRY_BONUS"`
	Compactness          int64 `mapstructure:"W_COMPACT_BONUS" json:"W_COMPACT_BONUS"`
}

func DefaultWeights() Weights {
	return Weights{
		CorridorArea:         500,
		EntranceLength:       300,
		Border:               200,
		BandCount:            300,
		DoorAdjacency:        12000,
		CenterAdjacency:      2400,
		HorizontalPreference: 5000,
		CriticalPair:         16000,
		RoomEfficiency:       8000,
		Priority:             4000,
		Symmetry:             1500,
		Compactness:          3500,
	}
}

// With returns a copy of w with the named weights replaced.
func (w Weights) With(overrides map[string]int64) (Weights, error) {
	raw := make(map[string]any, len(overrides))
	for key, value := range overrides {
		raw[key] = value
	}
	return w.decode(raw)
}

// AsMap keys every weight by its W_ name.
func (w Weights) AsMap() map[string]int64 {
	out := make(map[string]int64)
	// Encoding into a map cannot fail for a flat struct of integers.
	_ = mapstructure.Decode(w, &out)
	return out
}

// LoadWeights reads overrides from a .json or .toml file and applies them over
// DefaultWeights.
func LoadWeights(path string) (Weights, error) {
	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		bytes, err := os.ReadFile(path)
		if err != nil {
			return Weights{}, err
		}
		if err := json.Unmarshal(bytes, &raw); err != nil {
			return Weights{}, fmt.Errorf("cannot parse weights file %q: %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return Weights{}, fmt.Errorf("cannot parse weights file %q: %w", path, err)
		}
	default:
		return Weights{}, fmt.Errorf("unsupported weights file %q: expected .json or .toml", path)
	}

	weights, err := DefaultWeights().decode(raw)
	if err != nil {
		return Weights{}, fmt.Errorf("weights file %q: %w", path, err)
	}
	return weights, nil
}

func (w Weights) decode(raw map[string]any) (Weights, error) {
	for key := range raw {
		if !strings.HasPrefix(key, "W_") {
			return Weights{}, fmt.Errorf("%w: %q is not a weight", ErrModelConstruction, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &w,
	})
	if err != nil {
		return Weights{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Weights{}, fmt.Errorf("%w: %w", ErrModelConstruction, err)
	}
	return w, nil
}
