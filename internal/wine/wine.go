// Package wine defines the core data types flowing through the vinoScans pipeline.
package wine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dryness is the ordinal sweetness classification of a wine.
// The four known levels are ordered: Dry < SemiDry < SemiSweet < Sweet.
type Dryness string

const (
	Dry       Dryness = "Dry"
	SemiDry   Dryness = "SemiDry"
	SemiSweet Dryness = "SemiSweet"
	Sweet     Dryness = "Sweet"
	Unknown   Dryness = "Unknown"
)

// DefaultServingTemp is used when the identification service omits a
// serving temperature.
const DefaultServingTemp = "16–18°C"

// ParseDryness validates a service-returned dryness literal. Anything
// outside the five enumerated values is a contract violation, never
// silently coerced.
func ParseDryness(s string) (Dryness, error) {
	switch Dryness(s) {
	case Dry, SemiDry, SemiSweet, Sweet, Unknown:
		return Dryness(s), nil
	}
	return Unknown, fmt.Errorf("invalid dryness %q", s)
}

// Level returns the sweetness rank: 1 (Dry) through 4 (Sweet), 0 for Unknown.
// Used for ranking and sugar-level iconography.
func (d Dryness) Level() int {
	switch d {
	case Dry:
		return 1
	case SemiDry:
		return 2
	case SemiSweet:
		return 3
	case Sweet:
		return 4
	}
	return 0
}

// WireLiterals are the dryness values the service is allowed to return.
// The schema constrains output to the four known levels; Unknown exists
// only as a local fallback and is never requested from the service.
func WireLiterals() []string {
	return []string{string(Dry), string(SemiDry), string(SemiSweet), string(Sweet)}
}

// Record is a single identified wine. Immutable once constructed.
type Record struct {
	// ID is a short opaque identifier assigned locally at identification
	// time. Earlier payload revisions lack it; it is synthesized on parse.
	ID string `json:"id"`

	// Name is the full display name from the label.
	Name string `json:"name"`

	// Region is the Italian region of origin.
	Region string `json:"region"`

	// Dryness is the sweetness classification.
	Dryness Dryness `json:"dryness"`

	// Description is the free-text tasting note.
	Description string `json:"description"`

	// Pairings lists food pairing suggestions, in service order.
	Pairings []string `json:"pairings"`

	// GrapeType is the grape variety.
	GrapeType string `json:"grapeType"`

	// AlcoholContent is a display string, possibly an estimate. Never a
	// parsed number.
	AlcoholContent string `json:"alcoholContent"`

	// ServingTemp is the suggested serving temperature. Defaults to
	// DefaultServingTemp when the service omits it.
	ServingTemp string `json:"servingTemp,omitempty"`

	// Classification is the wine-law tier (DOCG, DOC, IGT). Empty means
	// unclassified.
	Classification string `json:"classification,omitempty"`

	// CreatedAt is when the identification happened. History bookkeeping
	// only, not required for display.
	CreatedAt time.Time `json:"createdAt"`
}

// NewID returns a short random identifier for a freshly identified wine.
func NewID() string {
	return uuid.NewString()[:8]
}

// Validate checks the invariants a Record must satisfy before it enters
// the pipeline.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record has empty name")
	}
	if strings.TrimSpace(r.Region) == "" {
		return fmt.Errorf("record has empty region")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("record has empty description")
	}
	if strings.TrimSpace(r.GrapeType) == "" {
		return fmt.Errorf("record has empty grape type")
	}
	if _, err := ParseDryness(string(r.Dryness)); err != nil {
		return err
	}
	return nil
}

// SameWine reports whether two records refer to the same wine for history
// deduplication. Identity is the name, not the ID — two scans of the same
// bottle must collapse to one entry.
func (r *Record) SameWine(other *Record) bool {
	return strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(other.Name))
}

// ScanResult is the envelope returned to clients for a scan request.
type ScanResult struct {
	// Wine is the identified record. Nil when identification failed.
	Wine *Record `json:"wine"`

	// Error is a user-presentable failure message.
	Error string `json:"error,omitempty"`
}
