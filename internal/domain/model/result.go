package model

// Breakdown exposes the individual factors behind a match score.
type Breakdown struct {
	Category   float64 `json:"category"`
	Experience float64 `json:"experience"`
	Text       float64 `json:"text"`
	Rating     float64 `json:"rating"`
	Bonus      float64 `json:"bonus,omitempty"`
}

// MatchResult is a scored pairing between a learner and a coach or course.
type MatchResult struct {
	SubjectID        string         `json:"subject_id"`
	SubjectName      string         `json:"subject_name,omitempty"`
	Score            int            `json:"score"`
	Breakdown        Breakdown      `json:"breakdown"`
	SupportingFields map[string]any `json:"supporting_fields,omitempty"`
}

// TrendDirection classifies a fitted slope.
type TrendDirection string

// Trend directions.
const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendResult summarizes the direction of a series.
type TrendResult struct {
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"`
	Confidence float64        `json:"confidence"`
}

// StableTrend is the neutral result for series that carry no signal.
func StableTrend() TrendResult {
	return TrendResult{Direction: TrendStable}
}

// AnomalyRecord is a single metric reading flagged as an outlier.
type AnomalyRecord struct {
	MetricName string  `json:"metric_name"`
	Value      float64 `json:"value"`
	Date       Date    `json:"date"`
	RecordID   string  `json:"record_id"`
	ZScore     float64 `json:"z_score"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
}

// Achievement is a milestone recorded on a session.
type Achievement struct {
	Date        Date   `json:"date"`
	Description string `json:"description"`
	CourseID    string `json:"course_id,omitempty"`
	CoachID     string `json:"coach_id,omitempty"`
}
