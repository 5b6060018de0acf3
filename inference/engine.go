// Package inference turns a raw flight feature set into delay predictions
// using pre-fitted encoders, a standard scaler and a multi-output regressor.
package inference

import (
	"errors"
	"fmt"

	"github.com/vishalmadargaon/Flight-delay-predictor/models"
)

const (
	NumFeatures = 13
	NumOutputs  = 6
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrArtifactLoad    = errors.New("model artifacts not loaded")
)

// Engine is immutable after Load and safe for concurrent use.
type Engine struct {
	carrier *LabelEncoder
	airport *LabelEncoder
	scaler  *StandardScaler
	model   regressor

	loadErr error
}

// Load reads every artifact from dir. Errors wrap ErrArtifactLoad.
func Load(dir string) (*Engine, error) {
	carrier, err := loadEncoder(dir, CarrierEncoderFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	airport, err := loadEncoder(dir, AirportEncoderFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	scaler, err := loadScaler(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	model, err := loadModel(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	return &Engine{carrier: carrier, airport: airport, scaler: scaler, model: model}, nil
}

// Unavailable returns an engine whose every Predict call fails with err.
func Unavailable(err error) *Engine {
	if err == nil {
		err = ErrArtifactLoad
	}
	return &Engine{loadErr: err}
}

func (e *Engine) Ready() bool {
	return e.loadErr == nil
}

// Predict returns the six delay targets in seconds.
func (e *Engine) Predict(input models.FlightInput) (models.DelayResults, error) {
	if e.loadErr != nil {
		return models.DelayResults{}, e.loadErr
	}

	x, err := e.Features(input)
	if err != nil {
		return models.DelayResults{}, err
	}
	scaled, err := e.scaler.Transform(x)
	if err != nil {
		return models.DelayResults{}, err
	}
	y, err := e.model.Predict(scaled)
	if err != nil {
		return models.DelayResults{}, err
	}
	if len(y) != NumOutputs {
		return models.DelayResults{}, fmt.Errorf("%w: model returned %d outputs, want %d", ErrShapeMismatch, len(y), NumOutputs)
	}
	return models.DelayResultsFromSlice(y), nil
}

// Features builds the unscaled feature vector in training column order.
func (e *Engine) Features(input models.FlightInput) ([]float64, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	carrier, err := e.carrier.Encode(input.Carrier)
	if err != nil {
		return nil, fmt.Errorf("carrier: %w", err)
	}
	airport, err := e.airport.Encode(input.Airport)
	if err != nil {
		return nil, fmt.Errorf("airport: %w", err)
	}
	return []float64{
		float64(input.Year),
		float64(input.Month),
		float64(input.ArrFlights),
		float64(input.ArrDel15),
		input.CarrierCt,
		input.WeatherCt,
		input.NASCt,
		input.SecurityCt,
		input.LateAircraftCt,
		float64(input.ArrCancelled),
		float64(input.ArrDiverted),
		carrier,
		airport,
	}, nil
}
