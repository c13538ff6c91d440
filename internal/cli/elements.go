package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patino82/construction-app/internal/elements"
	"github.com/patino82/construction-app/internal/models"
)

var elementsCmd = &cobra.Command{
	Use:   "elements",
	Short: "Search and ingest elements extracted from plan sets",
}

var elementsSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search extracted elements",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runElementsSearch,
}

var elementsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store elements extracted from a document",
	Args:  cobra.NoArgs,
	RunE:  runElementsIngest,
}

var (
	elementsType     string
	elementsSite     string
	elementsSheet    string
	elementsFile     string
	elementsJSONPath string
	elementsDocHash  string
)

func init() {
	elementsSearchCmd.Flags().StringVar(&elementsType, "type", "", "Element type (door, window, fixture, ...)")
	elementsSearchCmd.Flags().StringVar(&elementsSite, "site", "", "Project page id")
	elementsSearchCmd.Flags().StringVar(&elementsSheet, "sheet", "", "Sheet reference")

	elementsIngestCmd.Flags().StringVar(&elementsSite, "site", "", "Project page id")
	elementsIngestCmd.Flags().StringVar(&elementsFile, "file", "", "Source document; its hash keys the elements")
	elementsIngestCmd.Flags().StringVar(&elementsJSONPath, "elements", "", "JSON array of extracted elements")
	elementsIngestCmd.Flags().StringVar(&elementsDocHash, "doc-hash", "", "Document hash when --file is not given")
	elementsIngestCmd.MarkFlagRequired("elements")

	elementsCmd.AddCommand(elementsSearchCmd)
	elementsCmd.AddCommand(elementsIngestCmd)
}

func runElementsSearch(cmd *cobra.Command, args []string) error {
	q := elements.Query{SiteID: elementsSite, SheetRef: elementsSheet}
	if elementsType != "" {
		q.Type = models.ParseElementType(elementsType)
	}
	if len(args) == 1 {
		q.Q = args[0]
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		found, err := a.elements.Search(ctx, q)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "count": len(found), "elements": found})
		}
		printHeader(out, "🔎 Elements")
		for _, el := range found {
			fmt.Fprintf(out, "%-10s %-16s %-8s %.2f %s\n", el.Type, el.Identifier, orDash(el.SheetRef), el.Confidence, mark(el.Verified))
		}
		fmt.Fprintf(out, "%d elements\n", len(found))
		return nil
	})
}

func runElementsIngest(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(elementsJSONPath)
	if err != nil {
		return fmt.Errorf("read elements: %w", err)
	}
	var els []models.ExtractedElement
	if err := json.Unmarshal(raw, &els); err != nil {
		return fmt.Errorf("decode elements: %w", err)
	}
	req := elements.IngestRequest{SiteID: elementsSite, DocHash: elementsDocHash, Elements: els}
	if elementsFile != "" {
		req.Data, err = os.ReadFile(elementsFile)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		req.Filename = filepath.Base(elementsFile)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.elements.Ingest(ctx, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{"ok": true, "result": res})
		}
		printHeader(out, "📐 Elements ingested")
		fmt.Fprintf(out, "Document: %s\n", res.DocHash)
		fmt.Fprintf(out, "Elements: %d\n", len(res.PageIDs))
		return nil
	})
}
