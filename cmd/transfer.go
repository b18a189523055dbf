package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

var (
	exportPath   string
	exportFormat string
	importPath   string
	importFormat string
)

func checkFormat(format string) error {
	if format != formatJSON && format != formatCSV {
		return fmt.Errorf("unknown format %q: use json or csv", format)
	}
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored collection to one JSON or CSV document",
	Long: `Writes every stored collection. The json format is one object keyed by
collection name. The csv format has one KEY,<json> record per collection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(exportFormat); err != nil {
			return err
		}

		ctx := context.Background()
		syncer, closeStore, err := openSyncer(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeStore()

		doc, err := syncer.Export(ctx)
		if err != nil {
			return err
		}

		var data []byte
		if exportFormat == formatCSV {
			var buf bytes.Buffer
			if err := store.WriteCSV(&buf, doc); err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			data = buf.Bytes()
		} else {
			data, err = json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			data = append(data, '\n')
		}

		if exportPath == "" || exportPath == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		log.Info().Str("path", exportPath).Str("format", exportFormat).Msg("export written")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace stored collections from an export document",
	Long: `Reads a document written by export and replaces every collection it
contains. Collections missing from the document are left as they are.
Unknown keys and values of the wrong shape are rejected before anything
is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(importFormat); err != nil {
			return err
		}

		data, err := os.ReadFile(importPath)
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}
		var doc store.Document
		if importFormat == formatCSV {
			doc, err = store.ReadCSV(bytes.NewReader(data))
		} else {
			err = json.Unmarshal(data, &doc)
		}
		if err != nil {
			return fmt.Errorf("failed to decode import: %w", err)
		}

		ctx := context.Background()
		syncer, closeStore, err := openSyncer(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := syncer.Import(ctx, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Complete: %d keys imported\n", len(doc))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", formatJSON, "Export format: json or csv")
	importCmd.Flags().StringVarP(&importPath, "file", "f", "", "Export document to import (required)")
	importCmd.Flags().StringVar(&importFormat, "format", formatJSON, "Import format: json or csv")
	importCmd.MarkFlagRequired("file")
}
