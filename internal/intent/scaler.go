package intent

import (
	"math"

	"gundash/domain/artifact"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// fitScaler computes per-column mean and population standard deviation.
// Constant columns get scale 1 so they center to zero.
func fitScaler(x *mat.Dense) (artifact.Scaler, error) {
	_, c := x.Dims()
	sc := artifact.Scaler{Mean: make([]float64, c), Scale: make([]float64, c)}
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		mean, err := stats.Mean(col)
		if err != nil {
			return artifact.Scaler{}, err
		}
		sd, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return artifact.Scaler{}, err
		}
		sc.Mean[j] = mean
		sc.Scale[j] = sd
		if sd <= 1e-12*math.Max(1, math.Abs(mean)) {
			sc.Scale[j] = 1
		}
	}
	return sc, nil
}

// scaleInPlace standardises every row of x
func scaleInPlace(sc artifact.Scaler, x *mat.Dense) {
	r, _ := x.Dims()
	for i := 0; i < r; i++ {
		scaleRow(sc, x.RawRowView(i))
	}
}

func scaleRow(sc artifact.Scaler, row []float64) {
	for j := range row {
		row[j] = (row[j] - sc.Mean[j]) / sc.Scale[j]
	}
}
