// Package aligncli parses the click-align command line and its optional
// TOML configuration file. Flags win over the file, which wins over
// defaults.
package aligncli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Options is the fully resolved tool configuration.
type Options struct {
	File       string // graph description file ("-" or empty means stdin)
	Expr       string // inline graph description; mutually exclusive with File
	Output     string // output file (empty means stdout)
	ElementMap string // path to the element metadata table
	Driver     string // target driver name, empty for "any"
	PrintTable bool   // print the per-port alignment table and exit
	LogLevel   string // zerolog level name
}

// FileConfig is the subset of options settable from the TOML config file.
type FileConfig struct {
	ElementMap string `toml:"elementmap"`
	Driver     string `toml:"driver"`
	LogLevel   string `toml:"log_level"`
}

// NewFlagSet builds the tool's flag set with usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options] [GRAPHFILE]\n\n", name)
		fmt.Fprintln(out, "Inserts the adjuster elements a graph needs so that every element")
		fmt.Fprintln(out, "receives data at the alignment it requires.")
		fmt.Fprintln(out, "\nOptions:")
		fmt.Fprintln(out, "  -f, --file FILE          Read the graph description from FILE")
		fmt.Fprintln(out, "  -e, --expression EXPR    Use EXPR as the graph description")
		fmt.Fprintln(out, "  -o, --output FILE        Write the result to FILE")
		fmt.Fprintln(out, "      --elementmap FILE    Load element metadata from FILE")
		fmt.Fprintln(out, "  -u, --userlevel          Target the userlevel driver")
		fmt.Fprintln(out, "  -l, --linuxmodule        Target the linuxmodule driver")
		fmt.Fprintln(out, "  -b, --bsdmodule          Target the bsdmodule driver")
		fmt.Fprintln(out, "      --print              Print the alignment table instead of rewriting")
		fmt.Fprintln(out, "      --log-level LEVEL    Log verbosity (error, warn, info, debug)")
		fmt.Fprintln(out, "      --config FILE        Read defaults from a TOML config file")
	}
	return fs
}

// ParseArgs resolves options from argv and, when given, the TOML config
// file.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	var configFile string
	var userlevel, linuxmodule, bsdmodule bool

	fs.StringVar(&o.File, "file", "", "graph description file")
	fs.StringVar(&o.File, "f", "", "alias of --file")
	fs.StringVar(&o.Expr, "expression", "", "inline graph description")
	fs.StringVar(&o.Expr, "e", "", "alias of --expression")
	fs.StringVar(&o.Output, "output", "", "output file")
	fs.StringVar(&o.Output, "o", "", "alias of --output")
	fs.StringVar(&o.ElementMap, "elementmap", "", "element metadata table")
	fs.BoolVar(&userlevel, "userlevel", false, "target the userlevel driver")
	fs.BoolVar(&userlevel, "u", false, "alias of --userlevel")
	fs.BoolVar(&linuxmodule, "linuxmodule", false, "target the linuxmodule driver")
	fs.BoolVar(&linuxmodule, "l", false, "alias of --linuxmodule")
	fs.BoolVar(&bsdmodule, "bsdmodule", false, "target the bsdmodule driver")
	fs.BoolVar(&bsdmodule, "b", false, "alias of --bsdmodule")
	fs.BoolVar(&o.PrintTable, "print", false, "print the alignment table instead of rewriting")
	fs.StringVar(&o.LogLevel, "log-level", "", "log verbosity")
	fs.StringVar(&configFile, "config", "", "TOML config file")

	if err := fs.Parse(argv); err != nil {
		return Options{}, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		if o.File != "" || o.Expr != "" {
			return Options{}, fmt.Errorf("graph description specified twice")
		}
		o.File = fs.Arg(0)
	default:
		return Options{}, fmt.Errorf("too many arguments")
	}
	if o.File != "" && o.Expr != "" {
		return Options{}, fmt.Errorf("--file and --expression are mutually exclusive")
	}

	ndrivers := 0
	for _, d := range []struct {
		set  bool
		name string
	}{
		{userlevel, "userlevel"},
		{linuxmodule, "linuxmodule"},
		{bsdmodule, "bsdmodule"},
	} {
		if d.set {
			o.Driver = d.name
			ndrivers++
		}
	}
	if ndrivers > 1 {
		return Options{}, fmt.Errorf("driver specified twice")
	}

	if configFile != "" {
		fc, err := loadFileConfig(configFile)
		if err != nil {
			return Options{}, err
		}
		o.applyFileConfig(fc)
	}
	if o.LogLevel == "" {
		o.LogLevel = "warn"
	}
	return o, nil
}

// Parse resolves options from os.Args.
func Parse() (Options, error) {
	return ParseArgs(NewFlagSet("click-align"), os.Args[1:])
}

func loadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

// applyFileConfig fills options the command line left unset.
func (o *Options) applyFileConfig(fc FileConfig) {
	if o.ElementMap == "" {
		o.ElementMap = fc.ElementMap
	}
	if o.Driver == "" {
		o.Driver = fc.Driver
	}
	if o.LogLevel == "" {
		o.LogLevel = fc.LogLevel
	}
}

// Input reads the graph description selected by the options.
func (o Options) Input() ([]byte, error) {
	if o.Expr != "" {
		return []byte(o.Expr), nil
	}
	if o.File == "" || o.File == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(o.File)
}
