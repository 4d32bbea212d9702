package core

import (
	"context"
	"io"
	"log/slog"
)

// DescribeEvents appends one premis:event per row to the root, in input order.
func DescribeEvents(ctx context.Context, d *Document, rows []EventRow) error {
	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		d.describeEvent(row)
	}
	return nil
}

func (d *Document) describeEvent(row EventRow) {
	event := AddUnit(AppendIndex, d.root, "event")

	identifier := AddUnit(1, event, "eventIdentifier")
	addText(1, identifier, "eventIdentifierType", row.EventIdentifierType)
	addText(2, identifier, "eventIdentifierValue", row.EventIdentifierValue)

	addText(1, event, "eventType", row.EventType)
	addText(2, event, "eventDateTime", row.EventDateTime)

	detail := AddUnit(3, event, "eventDetailInformation")
	addText(1, detail, "eventDetail", row.EventDetail)

	outcome := AddUnit(4, event, "eventOutcomeInformation")
	addText(1, outcome, "eventOutcome", row.EventOutcome)
	outcomeDetail := AddUnit(2, outcome, "eventOutcomeDetail")
	addText(1, outcomeDetail, "eventOutcomeDetailNote", row.EventOutcomeDetailNote)
}

// Dump writes the indented document to w and logs it at debug level.
// A nil w only logs.
func Dump(ctx context.Context, d *Document, w io.Writer) error {
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.DebugContext(ctx, "premis document", "xml", d.String())
	}
	if w == nil {
		return nil
	}
	_, err := d.WriteTo(w, 2)
	return err
}
