package ai

import "context"

// CriticalityVerdict is the judge's answer to "how indispensable is this
// requirement to the role".
type CriticalityVerdict struct {
	Score  float64
	Reason string
	Raw    string
}

// AcquisitionVerdict is the judge's estimate of how long an otherwise
// qualified candidate would need to close a gap in the requirement.
type AcquisitionVerdict struct {
	Bucket string // "SHORT", "MEDIUM" or "LONG"
	Months int
	Reason string
	Raw    string
}

// Judge is the pluggable text-to-judgment capability. The engine consumes
// it but never implements the understanding itself; callers wrap every call
// in a timeout and fall back to documented defaults when it fails.
type Judge interface {
	JudgeCriticality(ctx context.Context, jobTitle, jobDescription, requirement string) (*CriticalityVerdict, error)
	JudgeAcquisitionTime(ctx context.Context, jobTitle, requirement string) (*AcquisitionVerdict, error)
	JudgeSimilarity(ctx context.Context, phraseA, phraseB string) (float64, error)
}
