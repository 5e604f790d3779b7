package mesh

import (
	"bufio"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/notargets/stlview/readfiles"
	"github.com/notargets/stlview/types"
	"github.com/notargets/stlview/utils"
)

var (
	ErrSourceLocked   = errors.New("mesh: source can only be set before parsing starts")
	ErrAlreadyStarted = errors.New("mesh: parse already started, use a new parser to retry")
)

const readBufferSize = 1 << 16

type Option func(*MeshParser)

// WithWorkers limits the decode goroutines, 0 means one per CPU
func WithWorkers(procLimit int) Option {
	return func(mp *MeshParser) { mp.procLimit = procLimit }
}

func WithProgressInterval(records int) Option {
	return func(mp *MeshParser) { mp.progressInterval = records }
}

func WithLogger(logger *slog.Logger) Option {
	return func(mp *MeshParser) {
		if logger != nil {
			mp.logger = logger
		}
	}
}

// WithStateObserver is called on the Start goroutine after every transition
func WithStateObserver(fn func(State)) Option {
	return func(mp *MeshParser) { mp.onState = fn }
}

// WithProgressObserver is called from the decode goroutines whenever the
// overall progress rises. Calls may overlap.
func WithProgressObserver(fn func(float32)) Option {
	return func(mp *MeshParser) { mp.onProgress = fn }
}

// MeshParser runs one parse attempt of one source. A failed or finished parser
// is not reused, retries need a new MeshParser.
type MeshParser struct {
	procLimit        int
	progressInterval int
	logger           *slog.Logger
	onState          func(State)
	onProgress       func(float32)

	mu      sync.Mutex
	source  Source
	started bool
	state   State
	solid   *types.Solid

	decoded  atomic.Int64
	progress atomic.Uint32 // float32 bits
}

func NewMeshParser(opts ...Option) (mp *MeshParser) {
	mp = &MeshParser{
		progressInterval: readfiles.DefaultProgressInterval,
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(mp)
	}
	return
}

func (mp *MeshParser) SetSource(src Source) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.started {
		return ErrSourceLocked
	}
	mp.source = src
	return nil
}

func (mp *MeshParser) State() State {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state
}

func (mp *MeshParser) Progress() float32 {
	return math.Float32frombits(mp.progress.Load())
}

// Solid returns the decoded mesh once the parser is in the Parsed phase
func (mp *MeshParser) Solid() (*types.Solid, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.state.Phase != Parsed {
		return nil, false
	}
	return mp.solid, true
}

// Err returns the failure once the parser is in the Failed phase
func (mp *MeshParser) Err() *ParseError {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.state.Phase != Failed {
		return nil
	}
	return mp.state.Err
}

// Start runs the whole parse on the calling goroutine and returns the terminal
// error, or nil once the solid is available.
func (mp *MeshParser) Start() error {
	mp.mu.Lock()
	if mp.started {
		mp.mu.Unlock()
		return ErrAlreadyStarted
	}
	mp.started = true
	src := mp.source
	mp.mu.Unlock()

	if src == nil {
		return mp.fail(&ParseError{Kind: NoSource})
	}
	mp.transition(State{Phase: Parsing}, nil)
	solid, pe := mp.parse(src)
	if pe != nil {
		return mp.fail(pe)
	}
	mp.transition(State{Phase: Parsed}, solid)
	return nil
}

func (mp *MeshParser) fail(pe *ParseError) error {
	mp.logger.Warn("parse failed", "source", pe.Source, "kind", pe.Kind.String(),
		"category", pe.Category().String(), "error", pe)
	mp.transition(State{Phase: Failed, Err: pe}, nil)
	return pe
}

func (mp *MeshParser) transition(st State, solid *types.Solid) {
	mp.mu.Lock()
	mp.state = st
	if solid != nil {
		mp.solid = solid
	}
	mp.mu.Unlock()
	mp.logger.Debug("parser state", "state", st.String())
	if mp.onState != nil {
		mp.onState(st)
	}
}

func (mp *MeshParser) parse(src Source) (solid *types.Solid, pe *ParseError) {
	var (
		name  = src.Name()
		start = time.Now()
	)
	rc, err := src.Open()
	if err != nil {
		return nil, &ParseError{Kind: UnknownFormat, FileKind: types.Unknown, Source: name, Err: err}
	}
	defer func() {
		if err := rc.Close(); err != nil {
			mp.logger.Warn("close failed", "source", name, "error", err)
		}
	}()

	br := bufio.NewReaderSize(rc, readBufferSize)
	switch kind, err := readfiles.SniffFileKind(br); kind {
	case types.ASCII:
		return nil, &ParseError{Kind: UnsupportedFormat, FileKind: kind, Source: name}
	case types.Unknown:
		return nil, &ParseError{Kind: UnknownFormat, FileKind: kind, Source: name, Err: err}
	}

	count, buf, err := readfiles.ReadFacetBuffer(br)
	if err != nil {
		return nil, readError(name, err)
	}
	N := int(count)
	mp.logger.Debug("read facet buffer", "source", name, "facets", N,
		"bytes", len(buf), "elapsed", time.Since(start))

	facets, err := readfiles.DecodeFacets(N, buf, readfiles.DecodeOptions{
		ProcLimit:        mp.procLimit,
		ProgressInterval: mp.progressInterval,
		Progress:         mp.progressFunc(N),
	})
	if err != nil {
		return nil, &ParseError{Kind: IOFailure, FileKind: types.Binary, Source: name, Err: err}
	}
	mp.logger.Info("parsed", "source", name, "facets", len(facets),
		"workers", utils.ParallelDegreeFor(mp.procLimit, N), "elapsed", time.Since(start))
	return types.NewSolid(name, facets), nil
}

func (mp *MeshParser) progressFunc(total int) readfiles.ProgressFunc {
	return func(_, decoded int) {
		done := mp.decoded.Add(int64(decoded))
		p := float32(float64(done) / float64(total))
		if mp.raiseProgress(p) && mp.onProgress != nil {
			mp.onProgress(p)
		}
	}
}

// raiseProgress stores p if it is above the current value, so readers never
// see progress go backwards even though workers report out of order
func (mp *MeshParser) raiseProgress(p float32) bool {
	for {
		old := mp.progress.Load()
		if p <= math.Float32frombits(old) {
			return false
		}
		if mp.progress.CompareAndSwap(old, math.Float32bits(p)) {
			return true
		}
	}
}
