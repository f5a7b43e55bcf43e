package batch

import (
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a processed batch.
type Summary struct {
	Total       int            `json:"total"`
	Done        int            `json:"done"`
	Failed      int            `json:"failed"`
	Pending     int            `json:"pending"`
	ByDiagnosis map[string]int `json:"by_diagnosis"`
	ByKind      map[string]int `json:"by_error_kind,omitempty"`
	MeanAngle   float64        `json:"mean_angle"`
	StdDevAngle float64        `json:"stddev_angle"`
	MinAngle    float64        `json:"min_angle"`
	MaxAngle    float64        `json:"max_angle"`
}

// Summarize counts statuses and diagnoses and computes angle statistics
// over completed items. Statistics are zero when nothing completed; the
// standard deviation needs at least two angles.
func Summarize(items []Item) Summary {
	s := Summary{
		Total:       len(items),
		ByDiagnosis: map[string]int{},
	}

	var angles []float64
	for _, it := range items {
		switch it.Status {
		case Done:
			s.Done++
			if it.Result != nil {
				s.ByDiagnosis[string(it.Result.Diagnosis)]++
				angles = append(angles, it.Result.Angle)
			}
		case Failed:
			s.Failed++
			if it.Kind != "" {
				if s.ByKind == nil {
					s.ByKind = map[string]int{}
				}
				s.ByKind[string(it.Kind)]++
			}
		default:
			s.Pending++
		}
	}

	if len(angles) == 0 {
		return s
	}
	s.MinAngle, s.MaxAngle = angles[0], angles[0]
	for _, a := range angles[1:] {
		s.MinAngle = min(s.MinAngle, a)
		s.MaxAngle = max(s.MaxAngle, a)
	}
	if len(angles) == 1 {
		s.MeanAngle = angles[0]
		return s
	}
	s.MeanAngle, s.StdDevAngle = stat.MeanStdDev(angles, nil)
	return s
}
