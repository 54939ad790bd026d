package intent

import (
	"fmt"
	"slices"
	"strings"
)

// ClassMetrics holds per-class precision, recall, F1 and support
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the held-out test result
type Evaluation struct {
	Accuracy    float64        `json:"accuracy"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Support     int            `json:"support"`
	Report      string         `json:"report"`
}

// evaluate scores predictions against truth. Labels are the sorted union of
// both sides; a class never predicted has precision 0.
func evaluate(truth, pred []string) Evaluation {
	labels := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range [][]string{truth, pred} {
		for _, l := range s {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	slices.Sort(labels)

	tp := make(map[string]int)
	predicted := make(map[string]int)
	actual := make(map[string]int)
	correct := 0
	for i := range truth {
		actual[truth[i]]++
		predicted[pred[i]]++
		if truth[i] == pred[i] {
			tp[truth[i]]++
			correct++
		}
	}

	ev := Evaluation{Support: len(truth)}
	if len(truth) > 0 {
		ev.Accuracy = float64(correct) / float64(len(truth))
	}
	for _, l := range labels {
		m := ClassMetrics{Label: l, Support: actual[l]}
		if predicted[l] > 0 {
			m.Precision = float64(tp[l]) / float64(predicted[l])
		}
		if actual[l] > 0 {
			m.Recall = float64(tp[l]) / float64(actual[l])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.Classes = append(ev.Classes, m)
	}

	ev.MacroAvg = ClassMetrics{Label: "macro avg", Support: ev.Support}
	ev.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: ev.Support}
	if k := float64(len(ev.Classes)); k > 0 {
		for _, m := range ev.Classes {
			ev.MacroAvg.Precision += m.Precision / k
			ev.MacroAvg.Recall += m.Recall / k
			ev.MacroAvg.F1 += m.F1 / k
			if ev.Support > 0 {
				w := float64(m.Support) / float64(ev.Support)
				ev.WeightedAvg.Precision += m.Precision * w
				ev.WeightedAvg.Recall += m.Recall * w
				ev.WeightedAvg.F1 += m.F1 * w
			}
		}
	}
	ev.Report = formatReport(ev, 2)
	return ev
}

// formatReport renders the familiar fixed-width classification report
func formatReport(ev Evaluation, digits int) string {
	const lastHeading = "weighted avg"
	width := len(lastHeading)
	for _, m := range ev.Classes {
		width = max(width, len(m.Label))
	}
	width = max(width, digits)

	var b strings.Builder
	fmt.Fprintf(&b, "%*s ", width, "")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	row := func(m ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n",
			width, m.Label, digits, m.Precision, digits, m.Recall, digits, m.F1, m.Support)
	}
	for _, m := range ev.Classes {
		row(m)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", digits, ev.Accuracy, ev.Support)
	row(ev.MacroAvg)
	row(ev.WeightedAvg)
	return b.String()
}
