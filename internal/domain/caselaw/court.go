package caselaw

// CourtType classifies the originating court of a decision into a tier.
// It is always derived from the raw court string and never stored.
type CourtType string

const (
	// CourtHR covers the highest national and European bodies (Hoge Raad, Raad van State, ...).
	CourtHR CourtType = "HR"
	// CourtHof covers the appellate courts (gerechtshoven).
	CourtHof CourtType = "Hof"
	// CourtRechtbank covers the district courts, including the kantonrechter.
	CourtRechtbank CourtType = "Rechtbank"
	// CourtUnknown is used when the source cannot be classified.
	CourtUnknown CourtType = "Unknown"
)

// IsValid reports whether t is one of the known tiers.
func (t CourtType) IsValid() bool {
	switch t {
	case CourtHR, CourtHof, CourtRechtbank, CourtUnknown:
		return true
	}
	return false
}
