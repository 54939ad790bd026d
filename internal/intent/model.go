// Package intent trains and serves the intent-prediction classifier: a
// standardised, one-hot encoded multinomial logistic regression over the
// victim attributes of the incident dataset.
package intent

import (
	"context"
	"slices"
	"time"

	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/domain/incident"
	"gundash/internal"
	"gundash/internal/config"
	"gundash/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// inverse regularisation strength
const regularisationC = 1.0

// TableLoader returns the incident table to train on
type TableLoader func(ctx context.Context) (*incident.Table, error)

// prepared is the output of PreprocessData
type prepared struct {
	frame    *Frame
	columns  []artifact.Column
	features []string
	scaler   artifact.Scaler
	modes    map[string]string

	xTrain, xTest *mat.Dense
	yTrain, yTest []string
	dropped       int
}

// Model walks through load, preprocess, train and evaluate. Each step
// requires the previous one.
type Model struct {
	load TableLoader
	cfg  config.ModelConfig
	log  *internal.Logger

	table  *incident.Table
	inputs artifact.Inputs
	data   *prepared
	clf    *classifier
	fit    fitResult
	eval   *Evaluation
}

// NewModel creates a trainer reading its data through load
func NewModel(load TableLoader, cfg config.ModelConfig) *Model {
	return &Model{
		load: load,
		cfg:  cfg,
		log:  internal.NewDefaultLogger().With("IntentModel"),
	}
}

// LoadData reads the dataset into memory
func (m *Model) LoadData(ctx context.Context) error {
	t, err := m.load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load training data")
	}
	if t.Len() == 0 {
		return errors.DataError("training data is empty", core.ErrEmptyDataset)
	}
	m.table = t
	m.data, m.clf, m.eval = nil, nil, nil
	return nil
}

// PreprocessData drops incomplete rows, builds the feature frame, appends
// the three inputs as constant columns, one-hot encodes, splits and scales
func (m *Model) PreprocessData(input1 int, input2, input3 string) error {
	if m.table == nil {
		return core.ErrDataNotReady
	}
	fr, dropped, err := buildFrame(m.table)
	if err != nil {
		return err
	}
	m.inputs = artifact.Inputs{Age: input1, Sex: input2, Race: input3}
	if m.cfg.BroadcastInputs {
		m.log.Warn("broadcasting inputs (%d, %s, %s) as constant feature columns on all %d rows",
			input1, input2, input3, fr.Len())
		fr.appendConstant(InputAge, formatInt(input1))
		fr.appendConstant(InputSex, input2)
		fr.appendConstant(InputRace, input3)
	}

	cols := fitColumns(fr)
	features := featureNames(cols)

	train, test, err := trainTestSplit(fr.Len(), m.cfg.TestSize, m.cfg.Seed)
	if err != nil {
		return errors.DataError("cannot split training data", err)
	}
	xTrain, err := encodeFrame(cols, len(features), fr, train)
	if err != nil {
		return errors.DataError("cannot encode training rows", err)
	}
	xTest, err := encodeFrame(cols, len(features), fr, test)
	if err != nil {
		return errors.DataError("cannot encode test rows", err)
	}

	scaler, err := fitScaler(xTrain)
	if err != nil {
		return errors.DataError("cannot fit scaler", err)
	}
	scaleInPlace(scaler, xTrain)
	scaleInPlace(scaler, xTest)

	m.data = &prepared{
		frame:    fr,
		columns:  cols,
		features: features,
		scaler:   scaler,
		modes:    fr.modes(),
		xTrain:   xTrain,
		xTest:    xTest,
		yTrain:   pick(fr.Target, train),
		yTest:    pick(fr.Target, test),
		dropped:  dropped,
	}
	m.clf, m.eval = nil, nil

	m.log.Info("preprocessed %d rows (%d dropped): %d features, %d train / %d test",
		fr.Len(), dropped, len(features), len(train), len(test))
	return nil
}

// TrainModel fits the logistic regression on the training split
func (m *Model) TrainModel(ctx context.Context) error {
	if m.data == nil {
		return core.ErrNotPrepared
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	classes := slices.Clone(m.data.yTrain)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	if len(classes) < 2 {
		return errors.DataError("cannot train intent model", core.ErrSingleClass)
	}
	y := make([]int, len(m.data.yTrain))
	for i, label := range m.data.yTrain {
		y[i], _ = slices.BinarySearch(classes, label)
	}

	start := time.Now()
	clf, fr, err := fitSoftmax(m.data.xTrain, y, classes, regularisationC, m.cfg.MaxIter)
	if err != nil {
		return errors.Wrap(err, "logistic regression fit failed")
	}
	m.clf, m.fit, m.eval = clf, fr, nil
	m.log.Info("fitted %d classes in %d iterations (%s, loss %.4f) in %v",
		len(classes), fr.Iterations, fr.Status, fr.Loss, time.Since(start).Round(time.Millisecond))
	return nil
}

// EvaluateModel scores the held-out split and returns accuracy and the
// classification report
func (m *Model) EvaluateModel() (float64, string, error) {
	ev, err := m.Evaluate()
	if err != nil {
		return 0, "", err
	}
	return ev.Accuracy, ev.Report, nil
}

// Evaluate returns the full evaluation
func (m *Model) Evaluate() (*Evaluation, error) {
	if m.clf == nil {
		return nil, core.ErrNotTrained
	}
	if m.eval == nil {
		ev := evaluate(m.data.yTest, m.clf.predict(m.data.xTest))
		m.eval = &ev
	}
	return m.eval, nil
}

// Frame returns the raw feature frame built by PreprocessData
func (m *Model) Frame() *Frame {
	if m.data == nil {
		return nil
	}
	return m.data.frame
}

// Features returns the encoded feature names in matrix column order
func (m *Model) Features() []string {
	if m.data == nil {
		return nil
	}
	return slices.Clone(m.data.features)
}

// SplitSizes returns the train and test row counts of the last preprocess
func (m *Model) SplitSizes() (train, test int) {
	if m.data == nil {
		return 0, 0
	}
	train, _ = m.data.xTrain.Dims()
	test, _ = m.data.xTest.Dims()
	return train, test
}

// Artifact packages the fitted model for persistence and inference
func (m *Model) Artifact() (*artifact.Model, error) {
	ev, err := m.Evaluate()
	if err != nil {
		return nil, err
	}
	k, _ := m.clf.coef.Dims()
	coef := make([][]float64, k)
	for i := range coef {
		coef[i] = slices.Clone(m.clf.coef.RawRowView(i))
	}
	train, test := m.SplitSizes()
	return &artifact.Model{
		ID:                 core.NewModelID(),
		CreatedAt:          time.Now().UTC(),
		DatasetFingerprint: m.table.Fingerprint(),
		Inputs:             m.inputs,
		BroadcastInputs:    m.cfg.BroadcastInputs,
		Columns:            m.data.columns,
		Features:           slices.Clone(m.data.features),
		Scaler:             m.data.scaler,
		Classes:            slices.Clone(m.clf.classes),
		Coef:               coef,
		Intercept:          slices.Clone(m.clf.intercept),
		Modes:              m.data.modes,
		Accuracy:           ev.Accuracy,
		Report:             ev.Report,
		TrainRows:          train,
		TestRows:           test,
		MaxIter:            m.cfg.MaxIter,
		Seed:               m.cfg.Seed,
	}, nil
}

func pick(src []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}
