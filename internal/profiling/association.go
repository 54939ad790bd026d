package profiling

import (
	"fmt"
	"math"

	"gundash/domain/incident"

	"gonum.org/v1/gonum/stat/distuv"
)

// Association is a chi-square test of independence between two categorical columns
type Association struct {
	X         incident.Field `json:"x"`
	Y         incident.Field `json:"y"`
	N         int            `json:"n"`
	ChiSquare float64        `json:"chi_square"`
	DoF       int            `json:"dof"`
	PValue    float64        `json:"p_value"`
	CramersV  float64        `json:"cramers_v"`
	Strength  string         `json:"strength"`
}

// String renders the test the way the dataset info page shows it
func (a Association) String() string {
	return fmt.Sprintf("%s association between %s and %s (χ²=%.3f, p=%.3g, V=%.3f)",
		a.Strength, a.X, a.Y, a.ChiSquare, a.PValue, a.CramersV)
}

// ChiSquare tests x against y over rows where both are present. Fewer than
// two levels on either side yields a zero statistic with p=1.
func ChiSquare(t *incident.Table, x, y incident.Field) Association {
	a := Association{X: x, Y: y, PValue: 1, Strength: "none"}
	if !t.Has(x) || !t.Has(y) || x.IsNumeric() || y.IsNumeric() {
		return a
	}

	xs, ys := map[string]int{}, map[string]int{}
	var cells [][2]int
	for r := 0; r < t.Len(); r++ {
		if t.IsNull(x, r) || t.IsNull(y, r) {
			continue
		}
		cells = append(cells, [2]int{level(xs, t.Text(x, r)), level(ys, t.Text(y, r))})
	}
	a.N = len(cells)
	if len(xs) < 2 || len(ys) < 2 {
		return a
	}

	table := make([][]int, len(xs))
	for i := range table {
		table[i] = make([]int, len(ys))
	}
	rowTotals := make([]int, len(xs))
	colTotals := make([]int, len(ys))
	for _, c := range cells {
		table[c[0]][c[1]]++
		rowTotals[c[0]]++
		colTotals[c[1]]++
	}

	n := float64(a.N)
	for i := range table {
		for j := range table[i] {
			expected := float64(rowTotals[i]) * float64(colTotals[j]) / n
			if expected > 0 {
				d := float64(table[i][j]) - expected
				a.ChiSquare += d * d / expected
			}
		}
	}
	a.DoF = (len(xs) - 1) * (len(ys) - 1)
	a.PValue = distuv.ChiSquared{K: float64(a.DoF)}.Survival(a.ChiSquare)
	minDim := math.Min(float64(len(xs)-1), float64(len(ys)-1))
	a.CramersV = math.Sqrt(a.ChiSquare / (n * minDim))
	a.Strength = strength(a.CramersV)
	return a
}

func level(index map[string]int, v string) int {
	i, ok := index[v]
	if !ok {
		i = len(index)
		index[v] = i
	}
	return i
}

// strength buckets Cramér's V
func strength(v float64) string {
	switch {
	case v < 0.1:
		return "weak"
	case v < 0.3:
		return "moderate"
	case v < 0.5:
		return "strong"
	default:
		return "very strong"
	}
}
