package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Artifact filenames inside the model directory.
const (
	CarrierEncoderFile = "carrier_encoder.json"
	AirportEncoderFile = "airport_encoder.json"
	ScalerFile         = "scaler.json"
	ModelFile          = "random_forest_model.json"
)

const (
	ModelTypeForest = "random_forest"
	ModelTypeLinear = "linear"
)

// LabelEncoder maps a category to the index of its class.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

func (e *LabelEncoder) build() error {
	if len(e.Classes) == 0 {
		return fmt.Errorf("encoder has no classes")
	}
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		if _, dup := e.index[c]; dup {
			return fmt.Errorf("duplicate class %q", c)
		}
		e.index[c] = i
	}
	return nil
}

func (e *LabelEncoder) Encode(value string) (float64, error) {
	code, ok := e.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	return float64(code), nil
}

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("%w: scaler has %d means and %d scales, want %d",
			ErrShapeMismatch, len(s.Mean), len(s.Scale), NumFeatures)
	}
	for i, v := range s.Scale {
		// sklearn replaces zero variance with 1
		if v == 0 {
			s.Scale[i] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: got %d features, scaler expects %d", ErrShapeMismatch, len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	floats.SubTo(out, x, s.Mean)
	floats.Div(out, s.Scale)
	return out, nil
}

type regressor interface {
	Predict(x []float64) ([]float64, error)
}

type modelHeader struct {
	Type string `json:"type"`
}

// Tree is one fitted decision tree in per-node array form. A child index of -1
// marks a leaf.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(nFeatures, nOutputs int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("%w: node arrays differ in length", ErrShapeMismatch)
	}
	for node := 0; node < n; node++ {
		if len(t.Value[node]) != nOutputs {
			return fmt.Errorf("%w: node %d has %d outputs, want %d", ErrShapeMismatch, node, len(t.Value[node]), nOutputs)
		}
		left, right := t.ChildrenLeft[node], t.ChildrenRight[node]
		if left == -1 {
			continue
		}
		if left <= node || left >= n || right <= node || right >= n {
			return fmt.Errorf("node %d has invalid children (%d, %d)", node, left, right)
		}
		if f := t.Feature[node]; f < 0 || f >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrShapeMismatch, node, f)
		}
	}
	return nil
}

func (t *Tree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Forest averages the leaf values of its trees.
type Forest struct {
	NFeatures int    `json:"n_features"`
	NOutputs  int    `json:"n_outputs"`
	Trees     []Tree `json:"trees"`
}

func (f *Forest) validate() error {
	if f.NFeatures == 0 {
		f.NFeatures = NumFeatures
	}
	if f.NOutputs == 0 {
		f.NOutputs = NumOutputs
	}
	if f.NFeatures != NumFeatures || f.NOutputs != NumOutputs {
		return fmt.Errorf("%w: forest is %dx%d, want %dx%d",
			ErrShapeMismatch, f.NFeatures, f.NOutputs, NumFeatures, NumOutputs)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, f.NOutputs); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (f *Forest) Predict(x []float64) ([]float64, error) {
	if len(x) != f.NFeatures {
		return nil, fmt.Errorf("%w: got %d features, forest expects %d", ErrShapeMismatch, len(x), f.NFeatures)
	}
	sum := make([]float64, f.NOutputs)
	for i := range f.Trees {
		floats.Add(sum, f.Trees[i].leaf(x))
	}
	floats.Scale(1/float64(len(f.Trees)), sum)
	return sum, nil
}

// Linear is a multi-output linear model: y = coef·x + intercept.
type Linear struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`

	weights *mat.Dense
}

func (l *Linear) validate() error {
	if len(l.Coef) != NumOutputs || len(l.Intercept) != NumOutputs {
		return fmt.Errorf("%w: linear model has %d coefficient rows and %d intercepts, want %d",
			ErrShapeMismatch, len(l.Coef), len(l.Intercept), NumOutputs)
	}
	data := make([]float64, 0, NumOutputs*NumFeatures)
	for i, row := range l.Coef {
		if len(row) != NumFeatures {
			return fmt.Errorf("%w: coefficient row %d has %d values, want %d", ErrShapeMismatch, i, len(row), NumFeatures)
		}
		data = append(data, row...)
	}
	l.weights = mat.NewDense(NumOutputs, NumFeatures, data)
	return nil
}

func (l *Linear) Predict(x []float64) ([]float64, error) {
	if len(x) != NumFeatures {
		return nil, fmt.Errorf("%w: got %d features, linear model expects %d", ErrShapeMismatch, len(x), NumFeatures)
	}
	var y mat.VecDense
	y.MulVec(l.weights, mat.NewVecDense(len(x), x))
	out := make([]float64, NumOutputs)
	floats.AddTo(out, y.RawVector().Data, l.Intercept)
	return out, nil
}

func readJSON(dir, name string, dest any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func loadEncoder(dir, name string) (*LabelEncoder, error) {
	var enc LabelEncoder
	if err := readJSON(dir, name, &enc); err != nil {
		return nil, err
	}
	if err := enc.build(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &enc, nil
}

func loadScaler(dir string) (*StandardScaler, error) {
	var s StandardScaler
	if err := readJSON(dir, ScalerFile, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ScalerFile, err)
	}
	return &s, nil
}

func loadModel(dir string) (regressor, error) {
	data, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}
	var header modelHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ModelFile, err)
	}

	switch header.Type {
	case ModelTypeForest, "":
		var f Forest
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ModelFile, err)
		}
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", ModelFile, err)
		}
		return &f, nil
	case ModelTypeLinear:
		var l Linear
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ModelFile, err)
		}
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", ModelFile, err)
		}
		return &l, nil
	default:
		return nil, fmt.Errorf("%s: unsupported model type %q", ModelFile, header.Type)
	}
}
