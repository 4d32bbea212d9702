package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
)

type convertFlags struct {
	objects       string
	events        string
	user          string
	output        string
	preserveOrder bool
	dump          bool
}

func newConvertCmd(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an objects table and an events table into premis.xml",
		Example: `  premiscsv2xml convert -i objects.csv -e events.csv -u "Jane Archivist"
  premiscsv2xml convert -i ~/batch/objects.csv -e ~/batch/events.csv -o out.xml --preserve-order`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.objects, "objects", "i", "", "objects CSV table (required)")
	cmd.Flags().StringVarP(&f.events, "events", "e", "", "events CSV table (required)")
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "name of the person performing the conversion")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output XML path (default: <objects dir>/premis.xml)")
	cmd.Flags().BoolVar(&f.preserveOrder, "preserve-order", false, "write objects in input order instead of reversed")
	cmd.Flags().BoolVar(&f.dump, "dump", false, "print the document to stderr before writing")
	cmd.MarkFlagRequired("objects")
	cmd.MarkFlagRequired("events")

	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, f *convertFlags) error {
	objects, err := expandPath(f.objects)
	if err != nil {
		return err
	}
	events, err := expandPath(f.events)
	if err != nil {
		return err
	}
	output, err := expandPath(f.output)
	if err != nil {
		return err
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(objects), a.cfg.Convert.OutputName)
	}

	operator := f.user
	if operator == "" {
		if !isTerminal(os.Stdin) {
			return errors.New("no operator: pass --user when stdin is not a terminal")
		}
		operator, err = promptOperator(os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	opts := core.Options{
		PreserveObjectOrder: a.cfg.Convert.PreserveObjectOrder,
		Indent:              a.cfg.Convert.Indent,
	}
	if cmd.Flags().Changed("preserve-order") {
		opts.PreserveObjectOrder = f.preserveOrder
	}

	ctx := cmd.Context()
	recorder, closeLedger, err := openLedger(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	defer closeLedger()

	converter := core.NewConverter(opts, recorder)
	if f.dump {
		converter.Dump = cmd.ErrOrStderr()
	}

	res, err := converter.ConvertFiles(ctx, core.Job{
		ObjectsPath: objects,
		EventsPath:  events,
		OutputPath:  output,
		Operator:    operator,
	})
	if err != nil {
		return err
	}

	slog.Info("wrote premis document", "path", res.OutputPath, "run_id", res.RunID)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d objects, %d events)\n", res.OutputPath, res.Objects, res.Events)
	return nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand path %s: %w", path, err)
	}
	return expanded, nil
}
