package core

import "time"

// PREMIS vocabulary shared by the loader and the mappers.
const (
	PremisNamespace = "http://www.loc.gov/premis/v3"
	XlinkNamespace  = "http://www.w3.org/1999/xlink"
	XSINamespace    = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation  = "http://www.loc.gov/premis/v3 https://www.loc.gov/standards/premis/premis.xsd"
	PremisVersion   = "3.0"

	PremisPrefix = "premis"

	// CategoryFile is the only objectCategory that carries characteristics and storage.
	CategoryFile = "file"

	// LinkingEventIdentifierType is written for every linked event.
	LinkingEventIdentifierType = "UUID"
)

// FieldSpec defines a single CSV column expected by a table.
type FieldSpec struct {
	Name     string // Column header name, matched case-insensitively after trimming spaces
	Required bool   // Column must exist in the header
	FileOnly bool   // Only required when objectCategory is "file"
}

// ObjectFieldSpecs lists the columns of the objects table.
var ObjectFieldSpecs = []FieldSpec{
	{Name: "objectIdentifier", Required: true},
	{Name: "objectCategory", Required: true},
	{Name: "linkingEventIdentifierValue", Required: true},
	{Name: "size", FileOnly: true},
	{Name: "messageDigestAlgorithm", FileOnly: true},
	{Name: "messageDigest", FileOnly: true},
	{Name: "messageDigestOriginator", FileOnly: true},
	{Name: "formatRegistryName", FileOnly: true},
	{Name: "formatRegistryKey", FileOnly: true},
	{Name: "formatRegistryRole", FileOnly: true},
	{Name: "contentLocationType", FileOnly: true},
	{Name: "contentLocationValue", FileOnly: true},
}

// EventFieldSpecs lists the columns of the events table.
var EventFieldSpecs = []FieldSpec{
	{Name: "eventIdentifierType", Required: true},
	{Name: "eventIdentifierValue", Required: true},
	{Name: "eventType", Required: true},
	{Name: "eventDateTime", Required: true},
	{Name: "eventDetail", Required: true},
	{Name: "eventOutcome", Required: true},
	{Name: "eventOutcomeDetailNote", Required: true},
}

// ObjectRow is one record of the objects table.
// File-only fields are empty for other categories.
type ObjectRow struct {
	Line int // 1-based data row number

	ObjectIdentifier            string // "[type, value]"
	ObjectCategory              string
	LinkingEventIdentifierValue string // pipe-delimited event ids

	Size                    string
	MessageDigestAlgorithm  string
	MessageDigest           string
	MessageDigestOriginator string
	FormatRegistryName      string
	FormatRegistryKey       string
	FormatRegistryRole      string
	ContentLocationType     string
	ContentLocationValue    string
}

// IsFile reports whether the row describes a file-category object.
func (r ObjectRow) IsFile() bool {
	return r.ObjectCategory == CategoryFile
}

// EventRow is one record of the events table.
type EventRow struct {
	Line int

	EventIdentifierType    string
	EventIdentifierValue   string
	EventType              string
	EventDateTime          string
	EventDetail            string
	EventOutcome           string
	EventOutcomeDetailNote string
}

// Options controls how rows are mapped and the document is written.
type Options struct {
	// PreserveObjectOrder writes objects in input order. When false, each
	// object is prepended to the root, so objects appear in reverse order.
	PreserveObjectOrder bool

	// Indent is the number of spaces per level when writing. Zero writes
	// the tree without indentation.
	Indent int
}

// DefaultOptions returns the options that reproduce the reference output.
func DefaultOptions() Options {
	return Options{Indent: 2}
}

// Source identifies the surface that started a conversion.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceHTTP Source = "http"
)

// RunRecord describes one completed conversion for the run ledger.
type RunRecord struct {
	RunID      string
	Operator   string
	Source     Source
	Objects    string // objects table path or upload name
	Events     string
	OutputPath string // empty for HTTP responses
	ObjectRows int
	EventRows  int
	StartedAt  time.Time
	Duration   time.Duration
}
