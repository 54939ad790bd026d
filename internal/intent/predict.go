package intent

import (
	"fmt"
	"strconv"

	"gundash/domain/artifact"
	"gundash/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// PredictRequest describes one victim. Age, Sex and Race are required;
// omitted fields are filled with the training mode.
type PredictRequest struct {
	Age       *float64 `json:"age"`
	Sex       string   `json:"sex"`
	Race      string   `json:"race"`
	Education string   `json:"education,omitempty"`
	Time      string   `json:"time,omitempty"`
	Place     string   `json:"place,omitempty"`
	Police    string   `json:"police,omitempty"`
}

// Prediction is the scored request
type Prediction struct {
	Intent        string             `json:"intent"`
	Probabilities map[string]float64 `json:"probabilities"`
	Filled        []string           `json:"filled,omitempty"`
}

func (r PredictRequest) validate() error {
	if r.Age == nil {
		return errors.InvalidInput("age is required")
	}
	if *r.Age < 0 || *r.Age > 120 {
		return errors.ValidationError(fmt.Sprintf("age %v out of range", *r.Age))
	}
	if r.Sex == "" || r.Race == "" {
		return errors.InvalidInput("sex and race are required")
	}
	return nil
}

// Predict scores a single request row against a fitted model
func Predict(m *artifact.Model, req PredictRequest) (*Prediction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "model artifact is inconsistent")
	}

	given := map[string]string{
		"Age":             strconv.FormatFloat(*req.Age, 'f', -1, 64),
		"Sex":             req.Sex,
		"Race":            req.Race,
		"Education":       req.Education,
		"Time":            req.Time,
		"Place of Death":  req.Place,
		"Police Presence": req.Police,
		InputAge:          formatInt(m.Inputs.Age),
		InputSex:          m.Inputs.Sex,
		InputRace:         m.Inputs.Race,
	}

	pred := &Prediction{Probabilities: make(map[string]float64, len(m.Classes))}
	raw := make([]string, len(m.Columns))
	for j, c := range m.Columns {
		v := given[c.Name]
		if v == "" {
			v = m.Modes[c.Name]
			pred.Filled = append(pred.Filled, c.Name)
		}
		raw[j] = v
	}

	x := make([]float64, len(m.Features))
	if err := encodeRow(m.Columns, raw, x); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	scaleRow(m.Scaler, x)

	scores := make([]float64, len(m.Classes))
	for k := range m.Classes {
		scores[k] = floats.Dot(m.Coef[k], x)
	}
	softmaxInPlace(scores, m.Intercept)
	for k, c := range m.Classes {
		pred.Probabilities[c] = scores[k]
	}
	pred.Intent = m.Classes[floats.MaxIdx(scores)]
	return pred, nil
}
