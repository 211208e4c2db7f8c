package domain

import "strings"

// DefaultOutputStyle is sent to the optimizer when the form leaves the style unset.
const DefaultOutputStyle = "Executive summary (C-suite / family office)"

// TripRequest is the editable trip form.
type TripRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DatesWindow string `json:"datesWindow"`
	Travellers  string `json:"travellers"`
	Preferences string `json:"preferences"`
	OutputStyle string `json:"outputStyle"`
	Notes       string `json:"notes"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r TripRequest) Trimmed() TripRequest {
	return TripRequest{
		Origin:      strings.TrimSpace(r.Origin),
		Destination: strings.TrimSpace(r.Destination),
		DatesWindow: strings.TrimSpace(r.DatesWindow),
		Travellers:  strings.TrimSpace(r.Travellers),
		Preferences: strings.TrimSpace(r.Preferences),
		OutputStyle: strings.TrimSpace(r.OutputStyle),
		Notes:       strings.TrimSpace(r.Notes),
	}
}

// HasEndpoints reports whether both origin and destination are filled in.
func (r TripRequest) HasEndpoints() bool {
	return strings.TrimSpace(r.Origin) != "" && strings.TrimSpace(r.Destination) != ""
}

// SampleTrip is the canned family trip offered by the "load sample" action.
func SampleTrip() TripRequest {
	return TripRequest{
		Origin:      "Calgary (YYC)",
		Destination: "London (LHR)",
		DatesWindow: "Mid-July, flexible ±2 days",
		Travellers:  "2 adults, 2 kids",
		Preferences: "1 stop, layover under 4 hours, daytime flights",
		OutputStyle: DefaultOutputStyle,
		Notes:       "Kids are 8 and 10; prefer calm connections.",
	}
}

// InterpretResult is the structured trip returned for free text.
type InterpretResult struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DatesWindow string `json:"datesWindow"`
	Travellers  string `json:"travellers"`
	Preferences string `json:"preferences"`
	Notes       string `json:"notes"`
}

// ApplyTo overwrites every interpreted field of req. Output style is not
// interpreted and is left as the user chose it.
func (r InterpretResult) ApplyTo(req TripRequest) TripRequest {
	req.Origin = r.Origin
	req.Destination = r.Destination
	req.DatesWindow = r.DatesWindow
	req.Travellers = r.Travellers
	req.Preferences = r.Preferences
	req.Notes = r.Notes
	return req
}

// RiskLevel is the coarse severity attached to a routing result.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// NormalizeRiskLevel maps any input onto one of the three levels; unknown values are Medium.
func NormalizeRiskLevel(raw string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return RiskLow
	case "high":
		return RiskHigh
	default:
		return RiskMedium
	}
}

// RoutingOption is one titled routing alternative.
type RoutingOption struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// OptimizeResult is the optimizer response. It is re-posted verbatim for recap audio.
type OptimizeResult struct {
	ExecRecapBullets []string        `json:"execRecapBullets"`
	RoutingOptions   []RoutingOption `json:"routingOptions"`
	RiskRadarBullets []string        `json:"riskRadarBullets"`
	RiskLevel        string          `json:"riskLevel"`
}

// Airport is one entry of the autocomplete list.
type Airport struct {
	City string `json:"city"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Suggestion is an autocomplete option derived from an Airport.
type Suggestion struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AudioClip is synthesized recap audio.
type AudioClip struct {
	Data        []byte
	ContentType string
}

// TranscriptKind identifies whether a stream event is interim or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental recognition output from a provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}
