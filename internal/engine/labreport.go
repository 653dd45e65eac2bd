package engine

import (
	"math"
	"time"
)

// EssentialMinerals are expected at >= MinMineralPPM each
var EssentialMinerals = []string{"calcium", "magnesium", "potassium"}

const (
	MaxQualityScore = 10.0
	MinMineralPPM   = 10.0

	phLow, phHigh, phIdeal    = 6.5, 8.5, 7.5
	tdsLow, tdsHigh, tdsIdeal = 150.0, 300.0, 225.0
	chlorineLimit             = 0.5
	chlorineTasteLimit        = 0.2
	mineralPenalty            = 0.5
)

// LabParameters are the measured physicochemical values of a report.
// Pointers distinguish a missing measurement from a zero reading.
type LabParameters struct {
	PH       *float64           `json:"ph"`
	TDS      *float64           `json:"tds"`
	Chlorine *float64           `json:"chlorine"`
	Bacteria *float64           `json:"bacteria"`
	Minerals map[string]float64 `json:"minerals"`
}

// LabReport is a single water-quality lab report
type LabReport struct {
	ID            string        `json:"id"`
	SupplierID    string        `json:"supplierId,omitempty"`
	Date          time.Time     `json:"date"`
	Certification string        `json:"certification"`
	Parameters    LabParameters `json:"parameters"`
}

// InsightLevel classifies an insight line
type InsightLevel string

const (
	InsightPositive InsightLevel = "positive"
	InsightWarning  InsightLevel = "warning"
	InsightNegative InsightLevel = "negative"
)

// Insight is one human-readable line about a report
type Insight struct {
	Level InsightLevel `json:"level"`
	Text  string       `json:"text"`
}

func (i Insight) String() string {
	switch i.Level {
	case InsightPositive:
		return "✅ " + i.Text
	case InsightNegative:
		return "❌ " + i.Text
	default:
		return "⚠️ " + i.Text
	}
}

// Analysis is the derived view of a report. It is never stored.
type Analysis struct {
	Score    float64  `json:"score"`
	Grade    string   `json:"grade"`
	Insights []string `json:"insights"`
}

type measured struct {
	ph, tds, chlorine, bacteria float64
	minerals                    map[string]float64
}

// Validate checks that every scored parameter is present and usable
func (p LabParameters) Validate() error {
	_, err := p.measured()
	return err
}

func (p LabParameters) measured() (measured, error) {
	fields := []struct {
		name        string
		value       *float64
		nonNegative bool
	}{
		{"parameters.ph", p.PH, false},
		{"parameters.tds", p.TDS, true},
		{"parameters.chlorine", p.Chlorine, true},
		{"parameters.bacteria", p.Bacteria, true},
	}
	for _, f := range fields {
		if f.value == nil {
			return measured{}, missingField(f.name)
		}
		if err := checkValue(f.name, *f.value, f.nonNegative); err != nil {
			return measured{}, err
		}
	}
	for name, v := range p.Minerals {
		if err := checkValue("parameters.minerals."+name, v, true); err != nil {
			return measured{}, err
		}
	}
	return measured{
		ph:       *p.PH,
		tds:      *p.TDS,
		chlorine: *p.Chlorine,
		bacteria: *p.Bacteria,
		minerals: p.Minerals,
	}, nil
}

func checkValue(field string, v float64, nonNegative bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Message: "must be a finite number"}
	}
	if nonNegative && v < 0 {
		return &ValidationError{Field: field, Message: "must not be negative"}
	}
	return nil
}

// Score rates a report from 0 to 10 by applying independent deductions to 10
func Score(report LabReport) (float64, error) {
	m, err := report.Parameters.measured()
	if err != nil {
		return 0, err
	}

	score := MaxQualityScore
	if m.ph < phLow || m.ph > phHigh {
		score -= 0.5 * math.Abs(m.ph-phIdeal)
	}
	if m.tds < tdsLow || m.tds > tdsHigh {
		score -= math.Abs(m.tds-tdsIdeal) / 100
	}
	if m.chlorine > chlorineLimit {
		score -= m.chlorine * 2
	}
	if m.bacteria > 0 {
		score -= m.bacteria * 5
	}
	for _, mineral := range EssentialMinerals {
		if v, ok := m.minerals[mineral]; !ok || v < MinMineralPPM {
			score -= mineralPenalty
		}
	}

	return clamp(score, 0, MaxQualityScore), nil
}

// Insights returns one line per check in a fixed order: pH, TDS, bacteria, chlorine
func Insights(report LabReport) ([]Insight, error) {
	m, err := report.Parameters.measured()
	if err != nil {
		return nil, err
	}

	out := make([]Insight, 0, 4)

	if m.ph >= phLow && m.ph <= phHigh {
		out = append(out, Insight{InsightPositive, "Optimal pH balance for health"})
	} else {
		out = append(out, Insight{InsightWarning, "pH levels outside recommended range"})
	}

	switch {
	case m.tds < tdsLow:
		out = append(out, Insight{InsightWarning, "Low mineral content - may lack essential minerals"})
	case m.tds > tdsHigh:
		out = append(out, Insight{InsightWarning, "High TDS - may taste salty"})
	default:
		out = append(out, Insight{InsightPositive, "Perfect mineral content"})
	}

	if m.bacteria == 0 {
		out = append(out, Insight{InsightPositive, "Bacteria-free and safe"})
	} else {
		out = append(out, Insight{InsightNegative, "Contains harmful bacteria"})
	}

	if m.chlorine <= chlorineTasteLimit {
		out = append(out, Insight{InsightPositive, "Low chlorine - natural taste"})
	} else {
		out = append(out, Insight{InsightWarning, "High chlorine - may affect taste"})
	}

	return out, nil
}

// Analyze scores a report and renders its insights and grade
func Analyze(report LabReport) (Analysis, error) {
	score, err := Score(report)
	if err != nil {
		return Analysis{}, err
	}
	insights, err := Insights(report)
	if err != nil {
		return Analysis{}, err
	}

	lines := make([]string, len(insights))
	for i, in := range insights {
		lines[i] = in.String()
	}
	return Analysis{Score: score, Grade: Grade(score), Insights: lines}, nil
}

// Grade maps a 0-10 score to a display label
func Grade(score float64) string {
	switch {
	case score >= 9:
		return "Excellent"
	case score >= 8:
		return "Very Good"
	case score >= 7:
		return "Good"
	case score >= 6:
		return "Fair"
	default:
		return "Poor"
	}
}
