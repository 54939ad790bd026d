package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationReportLayout(t *testing.T) {
	ev := evaluate([]string{"a", "a", "b", "b", "b"}, []string{"a", "b", "b", "b", "a"})

	want := "              precision    recall  f1-score   support\n" +
		"\n" +
		"           a       0.50      0.50      0.50         2\n" +
		"           b       0.67      0.67      0.67         3\n" +
		"\n" +
		"    accuracy                           0.60         5\n" +
		"   macro avg       0.58      0.58      0.58         5\n" +
		"weighted avg       0.60      0.60      0.60         5\n"
	assert.Equal(t, want, ev.Report)
	assert.InDelta(t, 0.6, ev.Accuracy, 1e-12)
}

func TestNeverPredictedClassScoresZero(t *testing.T) {
	ev := evaluate([]string{"x", "y", "y"}, []string{"y", "y", "y"})
	require.Len(t, ev.Classes, 2)
	assert.Equal(t, "x", ev.Classes[0].Label)
	assert.Zero(t, ev.Classes[0].Precision)
	assert.Zero(t, ev.Classes[0].F1)
	assert.Equal(t, 1, ev.Classes[0].Support)
}

func TestPredictedOnlyLabelAppearsWithZeroSupport(t *testing.T) {
	ev := evaluate([]string{"x", "x"}, []string{"x", "z"})
	require.Len(t, ev.Classes, 2)
	assert.Equal(t, "z", ev.Classes[1].Label)
	assert.Zero(t, ev.Classes[1].Support)
}
