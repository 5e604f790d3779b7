package mesh

import (
	"errors"
	"fmt"

	"github.com/notargets/stlview/readfiles"
	"github.com/notargets/stlview/types"
)

// Phase is the position of a parse attempt in Initial -> Parsing -> {Parsed | Failed}
type Phase uint8

const (
	Initial Phase = iota
	Parsing
	Parsed
	Failed
)

func (p Phase) String() string {
	return [...]string{"Initial", "Parsing", "Parsed", "Failed"}[p]
}

// State is a snapshot of the parser. Err is set only in the Failed phase.
type State struct {
	Phase Phase
	Err   *ParseError
}

func (s State) String() string {
	if s.Phase == Failed && s.Err != nil {
		return fmt.Sprintf("Failed(%s)", s.Err.Kind)
	}
	return s.Phase.String()
}

type ErrorKind uint8

const (
	NoSource ErrorKind = iota
	UnknownFormat
	UnsupportedFormat
	TruncatedHeader
	TruncatedCount
	TruncatedRecords
	IOFailure
)

func (ek ErrorKind) String() string {
	return [...]string{"NoSource", "UnknownFormat", "UnsupportedFormat",
		"TruncatedHeader", "TruncatedCount", "TruncatedRecords", "IOFailure"}[ek]
}

// Category groups error kinds the way a user acts on them
type Category uint8

const (
	CategoryUsage       Category = iota // nothing to parse
	CategoryWrongFormat                 // pick a different file
	CategoryUnsupported                 // valid STL this parser does not read
	CategoryCorrupt                     // file is damaged or truncated
	CategoryIO                          // the system failed to read it
)

func (c Category) String() string {
	return [...]string{"usage", "wrong format", "unsupported format", "corrupt file", "io"}[c]
}

// ParseError is the terminal failure of a parse attempt
type ParseError struct {
	Kind     ErrorKind
	FileKind types.FileKind // Set for UnsupportedFormat and UnknownFormat
	Source   string
	Err      error
}

func (pe *ParseError) Error() string {
	var msg string
	switch pe.Kind {
	case NoSource:
		msg = "no source set"
	case UnsupportedFormat:
		msg = fmt.Sprintf("unsupported format: %s STL", pe.FileKind)
	case UnknownFormat:
		msg = "unable to determine file format"
	default:
		msg = pe.Kind.String()
	}
	if pe.Source != "" {
		msg = pe.Source + ": " + msg
	}
	if pe.Err != nil {
		msg += ": " + pe.Err.Error()
	}
	return msg
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

func (pe *ParseError) Category() Category {
	switch pe.Kind {
	case NoSource:
		return CategoryUsage
	case UnknownFormat:
		return CategoryWrongFormat
	case UnsupportedFormat:
		return CategoryUnsupported
	case TruncatedHeader, TruncatedCount, TruncatedRecords:
		return CategoryCorrupt
	default:
		return CategoryIO
	}
}

// readError maps a FacetBufferReader failure to its error kind
func readError(source string, err error) *ParseError {
	kind := IOFailure
	switch {
	case errors.Is(err, readfiles.ErrTruncatedHeader):
		kind = TruncatedHeader
	case errors.Is(err, readfiles.ErrTruncatedCount):
		kind = TruncatedCount
	case errors.Is(err, readfiles.ErrTruncatedRecords):
		kind = TruncatedRecords
	}
	return &ParseError{Kind: kind, FileKind: types.Binary, Source: source, Err: err}
}
