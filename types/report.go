package types

import "time"

type Category string

const (
	Infrastructure Category = "INFRASTRUCTURE"
	Environment    Category = "ENVIRONMENT"
	Safety         Category = "SAFETY"
	Health         Category = "HEALTH"
	Education      Category = "EDUCATION"
	Governance     Category = "GOVERNANCE"
	Social         Category = "SOCIAL"
	Other          Category = "OTHER"
)

// Categories lists every category in declaration order. The order is used to
// break ties when picking a dominant category.
var Categories = []Category{
	Infrastructure,
	Environment,
	Safety,
	Health,
	Education,
	Governance,
	Social,
	Other,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Severity string

const (
	Low      Severity = "LOW"
	Medium   Severity = "MEDIUM"
	High     Severity = "HIGH"
	Critical Severity = "CRITICAL"
)

var severityScale = []Severity{Low, Medium, High, Critical}

// Rank returns the position of s on the 4-level ordinal scale, or -1 when the
// severity is missing or unknown.
func (s Severity) Rank() int {
	for i, known := range severityScale {
		if s == known {
			return i
		}
	}
	return -1
}

type Coordinates struct {
	Lat float64 `firestore:"lat" json:"lat" yaml:"lat"`
	Lng float64 `firestore:"lng" json:"lng" yaml:"lng"`
}

// Valid reports whether the coordinates lie in the legal latitude/longitude range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

type Location struct {
	Coordinates    *Coordinates `firestore:"coordinates,omitempty" json:"coordinates,omitempty"`
	AccuracyMeters float64      `firestore:"accuracyMeters" json:"accuracyMeters"`
	Village        string       `firestore:"village,omitempty" json:"village,omitempty"`
	SubDistrict    string       `firestore:"subDistrict,omitempty" json:"subDistrict,omitempty"`
	District       string       `firestore:"district,omitempty" json:"district,omitempty"`
	Province       string       `firestore:"province,omitempty" json:"province,omitempty"`
}

// HasCoordinates is false for missing or out-of-range coordinates.
func (l Location) HasCoordinates() bool {
	return l.Coordinates != nil && l.Coordinates.Valid()
}

// AreaName returns the most specific administrative name available.
func (l Location) AreaName() string {
	for _, name := range []string{l.Village, l.SubDistrict, l.District, l.Province} {
		if name != "" {
			return name
		}
	}
	return ""
}

// Report is a single citizen submission. It is read-only while a clustering
// run is in progress.
type Report struct {
	ID           string    `firestore:"-" json:"id"`
	Description  string    `firestore:"description" json:"description"`
	Location     Location  `firestore:"location" json:"location"`
	Category     Category  `firestore:"category,omitempty" json:"category,omitempty"`
	Severity     Severity  `firestore:"severity,omitempty" json:"severity,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	QualityScore *float64  `firestore:"qualityScore,omitempty" json:"qualityScore,omitempty"` // 0-100
	Urgency      *float64  `firestore:"urgency,omitempty" json:"urgency,omitempty"`           // 0-1, upstream signal
	Source       string    `firestore:"source,omitempty" json:"source,omitempty"`
	ClusterID    string    `firestore:"clusterId" json:"clusterId,omitempty"` // empty for orphans
}
