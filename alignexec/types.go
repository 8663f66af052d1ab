package alignexec

import "github.com/rs/zerolog"

// Options configures a rewrite run.
type Options struct {
	// Logger receives per-phase debug tracing. Defaults to a no-op logger.
	Logger zerolog.Logger

	// AlignType is the element type used for inserted adjusters.
	AlignType string

	// InfoType is the element type of the emitted annotation element.
	InfoType string
}

// DefaultOptions returns the default rewrite configuration.
func DefaultOptions() Options {
	return Options{
		Logger:    zerolog.Nop(),
		AlignType: "Align",
		InfoType:  "AlignmentInfo",
	}
}

func (o *Options) setDefaults() {
	if o.AlignType == "" {
		o.AlignType = "Align"
	}
	if o.InfoType == "" {
		o.InfoType = "AlignmentInfo"
	}
}
