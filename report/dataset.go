package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/dataexpect/dataset"
)

// WriteDataset renders the column names and types of ds followed by at most
// head rows. A negative head renders every row.
func WriteDataset(w io.Writer, ds *dataset.Dataset, head int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, ds.NumColumns())
	for i := range headers {
		col := ds.ColumnAt(i)
		headers[i] = fmt.Sprintf("%s (%s)", col.Name(), col.Type())
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	n := ds.NumRows()
	if head >= 0 && head < n {
		n = head
	}
	vals := make([]string, ds.NumColumns())
	for i := 0; i < n; i++ {
		for j, v := range ds.Row(i) {
			vals[j] = dataset.Format(v)
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows, %d columns)\n", ds.NumRows(), ds.NumColumns())
	return err
}
