package model

// EventCode is the closed set of event kinds the simulator understands.
type EventCode int

const (
	CodeUnknown EventCode = iota
	CodeSetStart
	CodeServingTeam
	CodePoint
	CodeSegmentEnd
	CodeMatchEnd
	CodeTimeout
	CodeSubstitution
)

var upstreamCodes = map[string]EventCode{ //nolint:gochecknoglobals // static lookup table
	"aloitajakso":      CodeSetStart,
	"aloittavajoukkue": CodeServingTeam,
	"piste":            CodePoint,
	"maali":            CodeSegmentEnd,
	"lopetaottelu":     CodeMatchEnd,
	"aikalisa":         CodeTimeout,
	"vaihto":           CodeSubstitution,
}

// ParseEventCode maps an upstream code onto EventCode.
func ParseEventCode(raw string) EventCode {
	if c, ok := upstreamCodes[raw]; ok {
		return c
	}
	return CodeUnknown
}

// String returns the upstream spelling of the code.
func (c EventCode) String() string {
	switch c {
	case CodeSetStart:
		return "aloitajakso"
	case CodeServingTeam:
		return "aloittavajoukkue"
	case CodePoint:
		return "piste"
	case CodeSegmentEnd:
		return "maali"
	case CodeMatchEnd:
		return "lopetaottelu"
	case CodeTimeout:
		return "aikalisa"
	case CodeSubstitution:
		return "vaihto"
	case CodeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// MarshalText renders the upstream spelling.
func (c EventCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the upstream spelling; anything else is CodeUnknown.
func (c *EventCode) UnmarshalText(b []byte) error {
	*c = ParseEventCode(string(b))
	return nil
}
