package alignexec

import (
	"strconv"
	"strings"

	"github.com/jackzhao-mj/click/alignment"
)

// AlignerFor selects the behavior rule for an element type, parameterized by
// the element's configuration text where the type calls for it. Unknown
// types, and known types with malformed configuration, get the default
// flow-code rule.
func AlignerFor(typeName, config string) Aligner {
	switch typeName {
	case "Align":
		if a, ok := parseAlignArgs(config); ok {
			return GeneratorAligner(a)
		}
		return DefaultAligner()
	case "Strip":
		if n, ok := firstIntArg(config, 0); ok {
			return ShifterAligner(n)
		}
		return DefaultAligner()
	case "EtherEncap":
		return ShifterAligner(-14)
	case "CheckIPHeader", "CheckIPHeader2":
		return WantAligner(ipHeaderAlignment(config, 1))
	case "MarkIPHeader":
		return WantAligner(ipHeaderAlignment(config, 0))
	case "Classifier":
		return ClassifierAligner()
	case "FromDevice", "PollDevice", "FromHost",
		"SR2SetChecksum", "SR2CheckHeader", "SetSRChecksum", "CheckSRHeader":
		return GeneratorAligner(alignment.Make(4, 2))
	case "InfiniteSource", "RatedSource", "ICMPError":
		return GeneratorAligner(alignment.Make(4, 0))
	case "ToHost":
		return WantAligner(alignment.Make(4, 2))
	case "IPEncap", "UDPIPEncap", "ICMPPingEncap",
		"RandomUDPIPEncap", "RoundRobinUDPIPEncap", "RoundRobinTCPIPEncap":
		return WantAligner(alignment.Make(4, 0))
	case "ARPResponder", "ARPQuerier":
		return WantAligner(alignment.Make(2, 0))
	case "IPInputCombo":
		return CombinedAligner(ShifterAligner(14), WantAligner(alignment.Make(4, 2)))
	case "GridEncap":
		return CombinedAligner(ShifterAligner(98), WantAligner(alignment.Make(4, 0)))
	case "Idle", "Discard":
		return NullAligner()
	}
	return DefaultAligner()
}

// splitArgs splits a configuration string on top-level commas, trimming
// whitespace. Parenthesized sub-configurations stay intact.
func splitArgs(config string) []string {
	config = strings.TrimSpace(config)
	if config == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(config); i++ {
		switch config[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(config[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(config[start:]))
}

// parseAlignArgs reads the "chunk, offset" configuration of an adjuster
// element.
func parseAlignArgs(config string) (alignment.Alignment, bool) {
	args := splitArgs(config)
	if len(args) != 2 {
		return alignment.Bad(), false
	}
	chunk, err1 := strconv.Atoi(args[0])
	offset, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || chunk < 2 {
		return alignment.Bad(), false
	}
	return alignment.Make(chunk, offset), true
}

func firstIntArg(config string, argno int) (int, bool) {
	args := splitArgs(config)
	if argno >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[argno])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ipHeaderAlignment computes the input requirement for header-checking
// elements whose configuration may carry a byte offset at position argno:
// the header at that offset must land 4-aligned.
func ipHeaderAlignment(config string, argno int) alignment.Alignment {
	offset := 0
	if n, ok := firstIntArg(config, argno); ok {
		offset = n
	}
	return alignment.Make(4, 0).Shift(-offset)
}
