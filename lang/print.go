package lang

import (
	"fmt"
	"io"

	"github.com/jackzhao-mj/click/graph"
)

// Print writes the graph back out as a textual description: declarations in
// element order, then one statement per live connection. Port numbers are
// omitted when zero, matching the most common hand-written form.
func Print(w io.Writer, r *graph.Router) error {
	for _, e := range r.Elements() {
		if e.Dead() {
			continue
		}
		if e.Config != "" {
			if _, err := fmt.Fprintf(w, "%s :: %s(%s);\n", e.Name, e.Type, e.Config); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "%s :: %s;\n", e.Name, e.Type); err != nil {
				return err
			}
		}
	}
	if len(r.Connections()) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for _, c := range r.Connections() {
		if !c.Live() {
			continue
		}
		from, to := c.From.Elem.Name, c.To.Elem.Name
		switch {
		case c.From.Port == 0 && c.To.Port == 0:
			if _, err := fmt.Fprintf(w, "%s -> %s;\n", from, to); err != nil {
				return err
			}
		case c.To.Port == 0:
			if _, err := fmt.Fprintf(w, "%s [%d] -> %s;\n", from, c.From.Port, to); err != nil {
				return err
			}
		case c.From.Port == 0:
			if _, err := fmt.Fprintf(w, "%s -> [%d] %s;\n", from, c.To.Port, to); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "%s [%d] -> [%d] %s;\n", from, c.From.Port, c.To.Port, to); err != nil {
				return err
			}
		}
	}
	return nil
}
