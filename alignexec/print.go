package alignexec

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

// Print writes the snapshot's per-port alignment table, one element per
// line: the input alignments, a dash, then the output alignments. Element
// names are padded into a column for readability.
func (ra *RouterAlign) Print(w io.Writer) error {
	nameWidth := 0
	for _, e := range ra.router.Elements() {
		if n := runewidth.StringWidth(e.Name); n > nameWidth {
			nameWidth = n
		}
	}
	for _, e := range ra.router.Elements() {
		i := e.Index()
		if _, err := fmt.Fprintf(w, "%s :", runewidth.FillRight(e.Name, nameWidth)); err != nil {
			return err
		}
		for j := 0; j < ra.icount[i]; j++ {
			if _, err := fmt.Fprintf(w, " %s", ra.InputAlignment(i, j)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, " -"); err != nil {
			return err
		}
		for j := 0; j < ra.ocount[i]; j++ {
			if _, err := fmt.Fprintf(w, " %s", ra.OutputAlignment(i, j)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
