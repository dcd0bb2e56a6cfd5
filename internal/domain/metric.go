package domain

import "encoding/json"

// Metric is a performance statistic that may be not computable: an
// annualized Sharpe over a zero-variance return series, a CAGR over a
// single-point curve, or a win rate with no completed trades. Callers must
// check Valid instead of receiving a silent NaN; a not-computable Metric
// marshals to JSON null.
type Metric struct {
	Value float64
	Valid bool
}

// MetricOf returns a computable Metric holding v.
func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// NotComputable is the sentinel for metrics that cannot be derived from the
// input, as distinct from a metric whose value happens to be zero.
var NotComputable = Metric{}

// Sub returns m - o, or NotComputable if either side is not computable.
func (m Metric) Sub(o Metric) Metric {
	if !m.Valid || !o.Valid {
		return NotComputable
	}
	return MetricOf(m.Value - o.Value)
}

// MarshalJSON encodes a computable Metric as its number and a
// not-computable one as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as NotComputable and a number as a value.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NotComputable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricOf(v)
	return nil
}
