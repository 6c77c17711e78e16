package store

import (
	"maps"
	"regexp"
	"strconv"
)

// Well-known field keys of the flat record shape. Records are maps
// rather than structs so partial upserts can merge arbitrary field
// sets while preserving keys they do not mention.
const (
	FieldEmail         = "email"
	FieldFileHash      = "file_hash"
	FieldFilename      = "filename"
	FieldProjectNumber = "project_number"

	FieldDuration     = "duration"
	FieldLoudness     = "lufs"
	FieldPeak         = "peak"
	FieldCrestFactor  = "crest_factor"
	FieldCentroid     = "centroid"
	FieldDominantFreq = "dominant_freq"
	FieldMainTip      = "main_tip"
	FieldTips         = "tips"

	FieldGenre        = "genre"
	FieldProjectStage = "project_stage"

	FieldPurpose        = "feedback_purpose"
	FieldPurposeFree    = "feedback_purpose_free"
	FieldSelfRating     = "self_rating"
	FieldPainPoints     = "feedback_hardest"
	FieldPainPointsFree = "feedback_hardest_free"
	FieldReference      = "reference"
	FieldRelevant       = "q1"
	FieldImprove        = "q2"
	FieldComments       = "q3"

	FieldCreatedAt     = "created_at"
	FieldUpdatedAt     = "updated_at"
	FieldRecordID      = "record_id"
	FieldSchemaVersion = "schema_version"
)

// SchemaVersion is stamped on every write. Records without the field
// (the legacy flat shape) are accepted as version 1.
const SchemaVersion = 1

// Record is one flat persisted entry of the collection.
type Record map[string]any

// StringField returns the named field as a string, or "" when absent
// or of another type.
func (r Record) StringField(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Record) Email() string    { return r.StringField(FieldEmail) }
func (r Record) FileHash() string { return r.StringField(FieldFileHash) }
func (r Record) Filename() string { return r.StringField(FieldFilename) }

// ProjectNumber returns the record's project number. Legacy records
// carry the number only in the stored filename, so the filename
// pattern is the fallback.
func (r Record) ProjectNumber() int {
	switch v := r[FieldProjectNumber].(type) {
	case int:
		return v
	case float64: // JSON round-trip
		return int(v)
	}
	return projectNumberFromFilename(r.Filename())
}

var projectPattern = regexp.MustCompile(`__project_(\d+)\.`)

func projectNumberFromFilename(name string) int {
	m := projectPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	return maps.Clone(r)
}
