package writer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mshaim001-hue/ikap2/internal/models"
)

// TableWriter prints a document as aligned plain text for the terminal.
type TableWriter struct{}

// Write prints the document's metadata followed by its rows.
func (w *TableWriter) Write(out io.Writer, doc models.DocumentResult) error {
	fmt.Fprintf(out, "== %s ==\n", doc.SourceFile)
	if doc.Error != "" {
		_, err := fmt.Fprintf(out, "Error: %s\n\n", doc.Error)
		return err
	}
	for _, key := range MetadataKeys(doc.Metadata) {
		fmt.Fprintf(out, "%s: %s\n", key, doc.Metadata[key])
	}

	if len(doc.Transactions) == 0 {
		_, err := fmt.Fprintln(out, "No credit rows found.")
		return err
	}

	single := []models.DocumentResult{{Transactions: doc.Transactions}}
	columns := Columns(single)[1:]

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range doc.Transactions {
		fmt.Fprintln(tw, strings.Join(Cells(columns, doc.SourceFile, row), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	_, err := fmt.Fprintln(out)
	return err
}
