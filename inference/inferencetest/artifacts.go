// Package inferencetest writes small, hand-checkable model artifacts for tests.
package inferencetest

import (
	"encoding/json"
	"os"
	"path/filepath"
)

var (
	Carriers = []string{"AA", "DL", "UA"}
	Airports = []string{"ATL", "JFK", "LAX", "ORD"}
)

// IdentityScaler leaves the features unchanged.
func IdentityScaler() map[string][]float64 {
	mean := make([]float64, 13)
	scale := make([]float64, 13)
	for i := range scale {
		scale[i] = 1
	}
	return map[string][]float64{"mean": mean, "scale": scale}
}

// Forest is a two-tree forest. The first tree splits on arr_flights (column 2)
// at 50, the second on the airport code (column 12) at 1.5. Leaves hold fixed
// values so predictions can be computed by hand:
//
//	arr_flights <= 50, airport in {ATL, JFK}: 150, 30, 15, 45, 0, 60
//	arr_flights >  50, airport in {ATL, JFK}: 600, 120, 60, 180, 0, 240
//	arr_flights <= 50, airport in {LAX, ORD}: 450, 90, 45, 135, 0, 180
//	arr_flights >  50, airport in {LAX, ORD}: 900, 180, 90, 270, 0, 360
func Forest() map[string]any {
	return map[string]any{
		"type":       "random_forest",
		"n_features": 13,
		"n_outputs":  6,
		"trees": []map[string]any{
			{
				"children_left":  []int{1, -1, -1},
				"children_right": []int{2, -1, -1},
				"feature":        []int{2, -2, -2},
				"threshold":      []float64{50, -2, -2},
				"value": [][]float64{
					{0, 0, 0, 0, 0, 0},
					{100, 20, 10, 30, 0, 40},
					{1000, 200, 100, 300, 0, 400},
				},
			},
			{
				"children_left":  []int{1, -1, -1},
				"children_right": []int{2, -1, -1},
				"feature":        []int{12, -2, -2},
				"threshold":      []float64{1.5, -2, -2},
				"value": [][]float64{
					{0, 0, 0, 0, 0, 0},
					{200, 40, 20, 60, 0, 80},
					{800, 160, 80, 240, 0, 320},
				},
			},
		},
	}
}

// WriteArtifacts writes both encoders, an identity scaler and Forest to dir.
func WriteArtifacts(dir string) error {
	return WriteArtifactsWithModel(dir, Forest())
}

func WriteArtifactsWithModel(dir string, model any) error {
	files := map[string]any{
		"carrier_encoder.json":     map[string]any{"classes": Carriers},
		"airport_encoder.json":     map[string]any{"classes": Airports},
		"scaler.json":              IdentityScaler(),
		"random_forest_model.json": model,
	}
	for name, v := range files {
		if err := WriteJSON(dir, name, v); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(dir, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
