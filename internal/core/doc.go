// Package core converts tabular preservation metadata into a PREMIS v3 document.
//
// This package contains all domain logic independent of the CLI or HTTP
// surface. It can be used by either, or by tests, without modification.
//
// # Pipeline
//
// A conversion is a single synchronous pass:
//
//  1. [LoadObjectRows] and [LoadEventRows] decode the two CSV tables into
//     [ObjectRow] and [EventRow] values, failing on absent columns
//  2. [NewDocument] creates the premis:premis root with its namespaces
//  3. [DescribeObjects] inserts one premis:object per row
//  4. [DescribeEvents] appends one premis:event per row
//  5. [Document.WriteFile] writes the indented XML
//
// [Converter] runs the whole pipeline and records each run through an
// optional [RunRecorder].
//
// # Object Order
//
// Objects are inserted at index 0 of the root, so the document lists them in
// reverse input order. Downstream consumers compare against that output, so it
// is the default. Set [Options].PreserveObjectOrder to keep input order.
// Events are always appended in input order, after the objects.
//
// # Object Structure
//
// Every object carries objectIdentifier. Objects whose objectCategory is
// "file" also carry objectCharacteristics (fixity, size, format) and storage
// (contentLocation). Other categories get no characteristics or storage.
// linkingEventIdentifier elements follow, one per non-empty id in the
// pipe-delimited linkingEventIdentifierValue cell.
//
// # Errors
//
// Malformed identifiers, missing fields and I/O failures are typed errors
// ([ErrMalformedIdentifier], [ErrMissingField], [IOError]). [MapError] turns
// them into coded messages for the user.
package core
