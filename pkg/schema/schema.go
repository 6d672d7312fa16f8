// Package schema defines the lead record contract shared by the prediction
// service and the client adapter. Raw input arrives as untyped JSON maps;
// a single validation-and-coercion pass produces a typed LeadRecord or an
// aggregated error naming every failing field.
package schema

import (
	"encoding/json"
	"math"
)

// LeadRecord is one lead's feature vector. The categorical dimensions
// (occupation, profile completion, last activity, acquisition channel) are
// pre-encoded by the caller as one-hot boolean flags; the implicit category
// is all related flags false. Combinations are not cross-checked here.
type LeadRecord struct {
	Age                         int     `json:"age"`
	WebsiteVisits               int     `json:"website_visits"`
	TimeSpentOnWebsite          float64 `json:"time_spent_on_website"`
	PageViewsPerVisit           float64 `json:"page_views_per_visit"`
	CurrentOccupationStudent    bool    `json:"current_occupation_student"`
	CurrentOccupationUnemployed bool    `json:"current_occupation_unemployed"`
	FirstInteractionWebsite     bool    `json:"first_interaction_website"`
	ProfileCompletedLow         bool    `json:"profile_completed_low"`
	ProfileCompletedMedium      bool    `json:"profile_completed_medium"`
	LastActivityPhone           bool    `json:"last_activity_phone"`
	LastActivityWebsite         bool    `json:"last_activity_website"`
	PrintMediaType1Yes          bool    `json:"print_media_type1_yes"`
	PrintMediaType2Yes          bool    `json:"print_media_type2_yes"`
	DigitalMediaYes             bool    `json:"digital_media_yes"`
	EducationalChannelsYes      bool    `json:"educational_channels_yes"`
	ReferralYes                 bool    `json:"referral_yes"`
}

type fieldKind int

const (
	kindInt fieldKind = iota
	kindFloat
	kindBool
)

type fieldSpec struct {
	name string
	kind fieldKind
	min  *float64
	max  *float64
	set  func(r *LeadRecord, v float64, b bool)
}

func bound(v float64) *float64 { return &v }

// fieldSpecs is the single source of truth for field names, types, and
// constraints. Order here fixes the feature vector order consumed by the
// model, so it must match the column order the model was trained on.
var fieldSpecs = []fieldSpec{
	{name: "age", kind: kindInt, min: bound(0), max: bound(100),
		set: func(r *LeadRecord, v float64, _ bool) { r.Age = int(v) }},
	{name: "website_visits", kind: kindInt, min: bound(0),
		set: func(r *LeadRecord, v float64, _ bool) { r.WebsiteVisits = int(v) }},
	{name: "time_spent_on_website", kind: kindFloat, min: bound(0),
		set: func(r *LeadRecord, v float64, _ bool) { r.TimeSpentOnWebsite = v }},
	{name: "page_views_per_visit", kind: kindFloat, min: bound(0),
		set: func(r *LeadRecord, v float64, _ bool) { r.PageViewsPerVisit = v }},
	{name: "current_occupation_student", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.CurrentOccupationStudent = b }},
	{name: "current_occupation_unemployed", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.CurrentOccupationUnemployed = b }},
	{name: "first_interaction_website", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.FirstInteractionWebsite = b }},
	{name: "profile_completed_low", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.ProfileCompletedLow = b }},
	{name: "profile_completed_medium", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.ProfileCompletedMedium = b }},
	{name: "last_activity_phone", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.LastActivityPhone = b }},
	{name: "last_activity_website", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.LastActivityWebsite = b }},
	{name: "print_media_type1_yes", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.PrintMediaType1Yes = b }},
	{name: "print_media_type2_yes", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.PrintMediaType2Yes = b }},
	{name: "digital_media_yes", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.DigitalMediaYes = b }},
	{name: "educational_channels_yes", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.EducationalChannelsYes = b }},
	{name: "referral_yes", kind: kindBool,
		set: func(r *LeadRecord, _ float64, b bool) { r.ReferralYes = b }},
}

// FeatureNames returns the field names in feature vector order.
func FeatureNames() []string {
	names := make([]string, len(fieldSpecs))
	for i, fs := range fieldSpecs {
		names[i] = fs.name
	}
	return names
}

// Features flattens the record into the numeric vector the model consumes,
// booleans encoded as 0/1, in FeatureNames order.
func (r LeadRecord) Features() []float64 {
	return []float64{
		float64(r.Age),
		float64(r.WebsiteVisits),
		r.TimeSpentOnWebsite,
		r.PageViewsPerVisit,
		boolToFloat(r.CurrentOccupationStudent),
		boolToFloat(r.CurrentOccupationUnemployed),
		boolToFloat(r.FirstInteractionWebsite),
		boolToFloat(r.ProfileCompletedLow),
		boolToFloat(r.ProfileCompletedMedium),
		boolToFloat(r.LastActivityPhone),
		boolToFloat(r.LastActivityWebsite),
		boolToFloat(r.PrintMediaType1Yes),
		boolToFloat(r.PrintMediaType2Yes),
		boolToFloat(r.DigitalMediaYes),
		boolToFloat(r.EducationalChannelsYes),
		boolToFloat(r.ReferralYes),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// numericValue extracts a float from the shapes json decoding can produce.
// Decoders configured with UseNumber yield json.Number; plain decoding
// yields float64. Typed ints show up when records are built in-process.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ValidateRecord coerces one raw record into a typed LeadRecord. All failing
// fields are collected into a single RecordError; unknown keys are ignored
// so callers can carry extra metadata without breaking the contract.
func ValidateRecord(raw map[string]interface{}) (LeadRecord, error) {
	var rec LeadRecord
	var errs RecordError

	for _, fs := range fieldSpecs {
		v, present := raw[fs.name]
		if !present {
			errs.add(fs.name, "required field missing")
			continue
		}

		switch fs.kind {
		case kindBool:
			b, ok := v.(bool)
			if !ok {
				errs.add(fs.name, "must be a boolean")
				continue
			}
			fs.set(&rec, 0, b)

		case kindInt:
			f, ok := numericValue(v)
			if !ok {
				errs.add(fs.name, "must be an integer")
				continue
			}
			if f != math.Trunc(f) {
				errs.add(fs.name, "must be an integer")
				continue
			}
			if msg := checkBounds(f, fs); msg != "" {
				errs.add(fs.name, msg)
				continue
			}
			fs.set(&rec, f, false)

		case kindFloat:
			f, ok := numericValue(v)
			if !ok {
				errs.add(fs.name, "must be a number")
				continue
			}
			if msg := checkBounds(f, fs); msg != "" {
				errs.add(fs.name, msg)
				continue
			}
			fs.set(&rec, f, false)
		}
	}

	if len(errs.Fields) > 0 {
		return LeadRecord{}, &errs
	}
	return rec, nil
}

func checkBounds(f float64, fs fieldSpec) string {
	if fs.min != nil && f < *fs.min {
		return "must be >= " + formatBound(*fs.min)
	}
	if fs.max != nil && f > *fs.max {
		return "must be <= " + formatBound(*fs.max)
	}
	return ""
}

// Validate re-checks the constraints on a typed record. Records produced by
// ValidateRecord always pass, so validation is idempotent.
func (r LeadRecord) Validate() error {
	var errs RecordError
	if r.Age < 0 || r.Age > 100 {
		errs.add("age", boundMessage(float64(r.Age), 0, 100))
	}
	if r.WebsiteVisits < 0 {
		errs.add("website_visits", "must be >= 0")
	}
	if r.TimeSpentOnWebsite < 0 {
		errs.add("time_spent_on_website", "must be >= 0")
	}
	if r.PageViewsPerVisit < 0 {
		errs.add("page_views_per_visit", "must be >= 0")
	}
	if len(errs.Fields) > 0 {
		return &errs
	}
	return nil
}

func boundMessage(v, min, max float64) string {
	if v < min {
		return "must be >= " + formatBound(min)
	}
	return "must be <= " + formatBound(max)
}

// ValidateBatch validates every raw record independently. Any failure fails
// the batch as a whole; the returned BatchError names each failing record by
// its index so callers can fix input without guesswork.
func ValidateBatch(raws []map[string]interface{}) ([]LeadRecord, error) {
	records := make([]LeadRecord, 0, len(raws))
	var batchErr BatchError

	for i, raw := range raws {
		rec, err := ValidateRecord(raw)
		if err != nil {
			batchErr.Records = append(batchErr.Records, IndexedRecordError{Index: i, Err: err.(*RecordError)})
			continue
		}
		records = append(records, rec)
	}

	if len(batchErr.Records) > 0 {
		return nil, &batchErr
	}
	return records, nil
}
