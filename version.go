package cqm

// Version is the engine version.
const Version = "0.1.0"

// VocabularyYear identifies the annual publication of the clinical value
// sets a measure binds against.
type VocabularyYear string

// Supported vocabulary publication years.
const (
	// Y2022 is the 2022 eCQM value-set publication.
	Y2022 VocabularyYear = "2022"
	// Y2026 is the 2026 eCQM value-set publication.
	Y2026 VocabularyYear = "2026"
)

// String returns the year string.
func (y VocabularyYear) String() string {
	return string(y)
}

// IsValid returns true if this is a supported vocabulary year.
func (y VocabularyYear) IsValid() bool {
	switch y {
	case Y2022, Y2026:
		return true
	default:
		return false
	}
}
