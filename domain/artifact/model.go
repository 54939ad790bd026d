// Package artifact holds the persisted form of a fitted intent model.
package artifact

import (
	"fmt"
	"time"

	"gundash/domain/core"
)

// Inputs are the three scalar values chosen in the trainer sidebar
type Inputs struct {
	Age  int    `json:"age"`
	Sex  string `json:"sex"`
	Race string `json:"race"`
}

// Key is a stable string form used for artifact lookup
func (in Inputs) Key() string {
	return fmt.Sprintf("%d|%s|%s", in.Age, in.Sex, in.Race)
}

// ColumnKind says how a raw column is encoded into features
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindBoolean     ColumnKind = "boolean"
	KindCategorical ColumnKind = "categorical"
)

// Column describes one raw input column of the feature matrix
type Column struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Levels []string   `json:"levels,omitempty"`
}

// Scaler is a fitted standard scaler
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Model is a fitted, self-contained intent classifier
type Model struct {
	ID                 core.ModelID `json:"id"`
	CreatedAt          time.Time    `json:"created_at"`
	DatasetFingerprint core.Hash    `json:"dataset_fingerprint"`
	Inputs             Inputs       `json:"inputs"`
	BroadcastInputs    bool         `json:"broadcast_inputs"`

	Columns  []Column `json:"columns"`
	Features []string `json:"features"`
	Scaler   Scaler   `json:"scaler"`

	// Classes are sorted; Coef[k] and Intercept[k] belong to Classes[k]
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`

	// Modes holds the most frequent value of each raw column, used to fill
	// fields a prediction request leaves out
	Modes map[string]string `json:"modes"`

	Accuracy  float64 `json:"accuracy"`
	Report    string  `json:"report"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	MaxIter   int     `json:"max_iter"`
	Seed      int64   `json:"seed"`
}

// Summary is the listing view of a Model
type Summary struct {
	ID                 core.ModelID `json:"id"`
	CreatedAt          time.Time    `json:"created_at"`
	DatasetFingerprint core.Hash    `json:"dataset_fingerprint"`
	Inputs             Inputs       `json:"inputs"`
	Accuracy           float64      `json:"accuracy"`
	TrainRows          int          `json:"train_rows"`
	TestRows           int          `json:"test_rows"`
	Classes            []string     `json:"classes"`
}

// Summary returns the listing view
func (m *Model) Summary() Summary {
	return Summary{
		ID:                 m.ID,
		CreatedAt:          m.CreatedAt,
		DatasetFingerprint: m.DatasetFingerprint,
		Inputs:             m.Inputs,
		Accuracy:           m.Accuracy,
		TrainRows:          m.TrainRows,
		TestRows:           m.TestRows,
		Classes:            m.Classes,
	}
}

// Validate checks the shapes agree
func (m *Model) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("model id is empty")
	}
	if len(m.Classes) < 2 {
		return core.ErrSingleClass
	}
	if len(m.Coef) != len(m.Classes) || len(m.Intercept) != len(m.Classes) {
		return fmt.Errorf("model %s: %d classes but %d coefficient rows and %d intercepts",
			m.ID, len(m.Classes), len(m.Coef), len(m.Intercept))
	}
	for k, row := range m.Coef {
		if len(row) != len(m.Features) {
			return fmt.Errorf("model %s: class %s has %d coefficients, want %d", m.ID, m.Classes[k], len(row), len(m.Features))
		}
	}
	if len(m.Scaler.Mean) != len(m.Features) || len(m.Scaler.Scale) != len(m.Features) {
		return fmt.Errorf("model %s: scaler width does not match %d features", m.ID, len(m.Features))
	}
	return nil
}
