package halfduplex

// Limits of the wire exchange.
const (
	// HeaderLen is the number of leading request bytes echoed by the reply.
	HeaderLen = 2
	// MaxPayloadLen is the largest payload carried either way.
	MaxPayloadLen = 255
)

// ResultKind classifies a TransactionResult.
type ResultKind int

const (
	// ResultEmpty means no byte arrived before the read deadline.
	ResultEmpty ResultKind = iota
	// ResultNoMatch means bytes arrived but the header never matched.
	ResultNoMatch
	// ResultMatched means the reply was re-anchored on the header.
	ResultMatched
)

// String implements fmt.Stringer.
func (k ResultKind) String() string {
	switch k {
	case ResultEmpty:
		return "empty"
	case ResultNoMatch:
		return "nomatch"
	case ResultMatched:
		return "matched"
	}
	return "unknown"
}

// Result is the outcome of one transaction.
// Payload is only set when Kind is ResultMatched.
type Result struct {
	Kind    ResultKind
	Payload []byte
}

// Matched creates a ResultMatched result.
func Matched(payload []byte) Result {
	return Result{Kind: ResultMatched, Payload: payload}
}

// NoMatch is the result when the header is not found.
var NoMatch = Result{Kind: ResultNoMatch}

// Empty is the result when nothing is received.
var Empty = Result{Kind: ResultEmpty}

// IsMatched indicates the result carries a reply.
func (r Result) IsMatched() bool {
	return r.Kind == ResultMatched
}

// Header returns the header of a request, or nil if the request is too short
// to carry one.
func Header(payload []byte) []byte {
	if len(payload) < HeaderLen {
		return nil
	}
	return payload[:HeaderLen]
}
