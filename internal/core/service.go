package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/premiscsv2xml/internal/logging"
)

// ContextCheckInterval is how often (in rows) the mappers check for cancellation.
var ContextCheckInterval = 100

// RunRecorder stores a record of each completed conversion.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// Converter runs the CSV to PREMIS pipeline: load, map objects, map events, write.
type Converter struct {
	opts     Options
	recorder RunRecorder // nil disables the run ledger

	// Dump receives the indented document after events are mapped. Optional.
	Dump io.Writer

	now func() time.Time
}

// NewConverter creates a converter. recorder may be nil.
func NewConverter(opts Options, recorder RunRecorder) *Converter {
	return &Converter{
		opts:     opts,
		recorder: recorder,
		now:      time.Now,
	}
}

// Job describes a file-to-file conversion.
type Job struct {
	ObjectsPath string
	EventsPath  string
	OutputPath  string
	Operator    string
}

// Result summarises a finished conversion.
type Result struct {
	RunID      string
	OutputPath string
	Objects    int
	Events     int
	Duration   time.Duration
	Document   *Document
}

// ConvertFiles reads both tables from disk, builds the document and writes it
// to job.OutputPath. Nothing is written if any row fails to map or the run
// cannot be recorded.
func (c *Converter) ConvertFiles(ctx context.Context, job Job) (*Result, error) {
	start := c.now()
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "operator", job.Operator, "source", SourceCLI)

	logger.Info("conversion started",
		"objects", job.ObjectsPath,
		"events", job.EventsPath,
		"output", job.OutputPath,
	)

	objects, err := LoadObjectsFile(job.ObjectsPath)
	if err != nil {
		return nil, err
	}
	events, err := LoadEventsFile(job.EventsPath)
	if err != nil {
		return nil, err
	}

	doc, err := c.build(ctx, objects, events)
	if err != nil {
		return nil, err
	}

	// Stage the output so a ledger failure leaves no unrecorded file behind.
	staged, err := doc.StageFile(job.OutputPath, c.opts.Indent)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      runID,
		OutputPath: job.OutputPath,
		Objects:    len(objects),
		Events:     len(events),
		Duration:   c.now().Sub(start),
		Document:   doc,
	}

	if err := c.record(ctx, RunRecord{
		RunID:      runID,
		Operator:   job.Operator,
		Source:     SourceCLI,
		Objects:    job.ObjectsPath,
		Events:     job.EventsPath,
		OutputPath: job.OutputPath,
		ObjectRows: res.Objects,
		EventRows:  res.Events,
		StartedAt:  start,
		Duration:   res.Duration,
	}); err != nil {
		if derr := staged.Discard(); derr != nil {
			logger.Warn("failed to remove staged output", "error", derr)
		}
		return nil, err
	}

	if err := staged.Commit(); err != nil {
		return nil, err
	}

	logger.Info("conversion completed",
		"objects", res.Objects,
		"events", res.Events,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ReaderInput names the tables of an in-memory conversion.
type ReaderInput struct {
	Objects     io.Reader
	ObjectsName string
	Events      io.Reader
	EventsName  string
	Operator    string
	Source      Source
}

// ConvertReaders builds a document from two already-open tables.
// The caller serializes Result.Document.
func (c *Converter) ConvertReaders(ctx context.Context, in ReaderInput) (*Result, error) {
	start := c.now()
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	logger := logging.WithFields(ctx, "operator", in.Operator, "source", in.Source)

	objects, err := LoadObjectRows(in.Objects, in.ObjectsName)
	if err != nil {
		return nil, err
	}
	events, err := LoadEventRows(in.Events, in.EventsName)
	if err != nil {
		return nil, err
	}

	doc, err := c.build(ctx, objects, events)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    runID,
		Objects:  len(objects),
		Events:   len(events),
		Duration: c.now().Sub(start),
		Document: doc,
	}

	if err := c.record(ctx, RunRecord{
		RunID:      runID,
		Operator:   in.Operator,
		Source:     in.Source,
		Objects:    in.ObjectsName,
		Events:     in.EventsName,
		ObjectRows: res.Objects,
		EventRows:  res.Events,
		StartedAt:  start,
		Duration:   res.Duration,
	}); err != nil {
		return nil, err
	}

	logger.Info("conversion completed", "objects", res.Objects, "events", res.Events)
	return res, nil
}

// build maps the rows into a fresh document.
func (c *Converter) build(ctx context.Context, objects []ObjectRow, events []EventRow) (*Document, error) {
	doc := NewDocument()

	if err := DescribeObjects(ctx, doc, objects, c.opts); err != nil {
		return nil, err
	}
	if err := DescribeEvents(ctx, doc, events); err != nil {
		return nil, err
	}

	if err := Dump(ctx, doc, c.Dump); err != nil {
		return nil, fmt.Errorf("dump document: %w", err)
	}
	return doc, nil
}

func (c *Converter) record(ctx context.Context, rec RunRecord) error {
	if c.recorder == nil {
		return nil
	}
	if err := c.recorder.RecordRun(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to record run", "error", err)
		return fmt.Errorf("record run %s: %w", rec.RunID, err)
	}
	return nil
}
