// Command click-align rewrites a router graph so every element receives
// data at the alignment it requires, inserting Align adjuster elements
// where the guarantees fall short and annotating alignment-dependent
// elements with an AlignmentInfo summary.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/jackzhao-mj/click/alignexec"
	"github.com/jackzhao-mj/click/elementmap"
	"github.com/jackzhao-mj/click/graph"
	"github.com/jackzhao-mj/click/internal/aligncli"
	"github.com/jackzhao-mj/click/lang"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "click-align:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := aligncli.Parse()
	if err != nil {
		return err
	}
	logger := newLogger(opts.LogLevel)

	src, err := opts.Input()
	if err != nil {
		return err
	}
	r, err := lang.Parse(src)
	if err != nil {
		return err
	}

	em, err := loadElementMap(opts, logger)
	if err != nil {
		return err
	}
	warnDriverMismatch(r, em, opts, logger)

	if opts.PrintTable {
		// The table shows guarantees, so solve have on a fresh snapshot.
		// Requirements need their own snapshot; solving want on this one
		// would seed the iteration with converged have values.
		ra := alignexec.NewRouterAlign(r, em)
		ra.SolveHave()
		return ra.Print(os.Stdout)
	}

	added := alignexec.Rewrite(r, em, alignexec.Options{Logger: logger})
	if added > 0 {
		logger.Warn().Int("count", added).Msgf("added %d Align element(s)", added)
	}

	return writeOutput(opts, r)
}

// newLogger builds a console logger on stderr, colored only when stderr is
// a terminal.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
		TimeFormat: "15:04:05",
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// loadElementMap reads the metadata table. Without one, or with one that
// knows nothing about alignment, the tool muddles along on the built-in
// alignment flags.
func loadElementMap(opts aligncli.Options, logger zerolog.Logger) (*elementmap.ElementMap, error) {
	var em *elementmap.ElementMap
	if opts.ElementMap != "" {
		var err error
		em, err = elementmap.Load(opts.ElementMap)
		if err != nil {
			return nil, err
		}
	} else {
		em = elementmap.New()
	}
	if !em.HasTraits("Classifier") {
		logger.Warn().Msg("elementmap has no alignment information, muddling along with built-in defaults")
		em.AddDefaultAlignmentFlags()
	}
	return em, nil
}

// warnDriverMismatch reports element types that will not run under the
// target driver. With no driver chosen, it checks whether any single
// driver can host the whole graph.
func warnDriverMismatch(r *graph.Router, em *elementmap.ElementMap, opts aligncli.Options, logger zerolog.Logger) {
	if opts.Driver != "" {
		d, ok := elementmap.ParseDriver(opts.Driver)
		if !ok {
			logger.Warn().Str("driver", opts.Driver).Msg("unknown driver")
			return
		}
		for _, e := range r.Elements() {
			if e.Dead() || !em.HasTraits(e.Type) {
				continue
			}
			if !em.Traits(e.Type).DriverCompatible(d) {
				logger.Warn().
					Str("element", e.Name).
					Str("type", e.Type).
					Str("driver", opts.Driver).
					Msg("element type not available for driver")
			}
		}
		return
	}
	for d := 0; d < elementmap.NDrivers; d++ {
		if em.DriverCompatible(r, d) {
			return
		}
	}
	logger.Warn().Msg("no single driver supports every element type in this graph")
}

func writeOutput(opts aligncli.Options, r *graph.Router) error {
	var w io.Writer = os.Stdout
	if opts.Output != "" && opts.Output != "-" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	stamp := timefmt.Format(time.Now(), "%Y-%m-%d %H:%M:%S")
	if _, err := fmt.Fprintf(w, "// click-align %s\n", stamp); err != nil {
		return err
	}
	return lang.Print(w, r)
}
