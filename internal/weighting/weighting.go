// Package weighting evaluates how much each job requirement should count:
// how critical it is to the role, and how long a gap in it would take to
// close. Both evaluators delegate judgment to the pluggable ai.Judge and
// degrade to documented defaults when it is unavailable; a missing weight
// must never abort a matching run.
package weighting

// Classification is the 3-level criticality label derived from the score.
type Classification string

const (
	Critical   Classification = "CRITICAL"
	Important  Classification = "IMPORTANT"
	NiceToHave Classification = "NICE_TO_HAVE"
)

// Classification thresholds over the criticality score.
const (
	criticalThreshold  = 0.7
	importantThreshold = 0.4
)

// Criticality is the weight of a single requirement.
type Criticality struct {
	Score          float64        `json:"criticality_score"`
	Classification Classification `json:"classification"`
	Reason         string         `json:"reason,omitempty"`
	Degraded       bool           `json:"degraded,omitempty"`
}

// Classify maps a clamped score to its label.
func Classify(score float64) Classification {
	switch {
	case score >= criticalThreshold:
		return Critical
	case score >= importantThreshold:
		return Important
	default:
		return NiceToHave
	}
}

// Bucket is the acquisition-time estimate granularity.
type Bucket string

const (
	Short  Bucket = "SHORT"
	Medium Bucket = "MEDIUM"
	Long   Bucket = "LONG"
)

// Acquisition estimates how long closing a gap in the requirement takes and
// the minimum match strength below which the gap is not realistically
// closable in time for the role. A longer acquisition time demands a
// stronger match, which penalizes papering over a deep specialization gap
// with a generic skill.
type Acquisition struct {
	Bucket         Bucket  `json:"acquisition_time"`
	MonthsEstimate int     `json:"months_estimate"`
	MatchThreshold float64 `json:"match_threshold"`
	Reason         string  `json:"reason,omitempty"`
	Degraded       bool    `json:"degraded,omitempty"`
}

// bucketDefaults carries the per-bucket months estimate and match gate.
var bucketDefaults = map[Bucket]Acquisition{
	Short:  {Bucket: Short, MonthsEstimate: 3, MatchThreshold: 0.3},
	Medium: {Bucket: Medium, MonthsEstimate: 9, MatchThreshold: 0.5},
	Long:   {Bucket: Long, MonthsEstimate: 18, MatchThreshold: 0.7},
}

// AcquisitionFor returns the canonical estimate for a bucket, defaulting to
// MEDIUM for unknown labels.
func AcquisitionFor(bucket Bucket) Acquisition {
	if a, ok := bucketDefaults[bucket]; ok {
		return a
	}
	return bucketDefaults[Medium]
}
