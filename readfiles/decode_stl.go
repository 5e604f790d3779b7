package readfiles

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/notargets/stlview/types"
	"github.com/notargets/stlview/utils"
)

// DefaultProgressInterval is how many records a worker decodes between
// progress reports
const DefaultProgressInterval = 4096

// ProgressFunc receives the number of records a worker finished since its
// previous report. It is called concurrently from the decode workers.
type ProgressFunc func(worker, decoded int)

type DecodeOptions struct {
	ProcLimit        int // Worker limit, below 1 means runtime.NumCPU()
	ProgressInterval int // Records between progress reports, below 1 means DefaultProgressInterval
	Progress         ProgressFunc
}

// DecodeRecord decodes the 50 byte record at the start of rec
func DecodeRecord(rec []byte) (f types.Facet) {
	_ = rec[RecordSize-1] // bounds check hint
	f.Normal = types.Normal{
		I: float32At(rec, 0),
		J: float32At(rec, 1),
		K: float32At(rec, 2),
	}
	for v := 0; v < 3; v++ {
		base := 3 + 3*v
		f.Vertices[v] = types.Vertex{
			X: float32At(rec, base),
			Y: float32At(rec, base+1),
			Z: float32At(rec, base+2),
		}
	}
	return
}

func float32At(rec []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(rec[i*FloatSize:]))
}

// DecodeFacetsSequential is the single goroutine reference decode
func DecodeFacetsSequential(count int, buf []byte) (facets []types.Facet, err error) {
	if err = checkBuffer(count, buf); err != nil {
		return
	}
	facets = decodeShard(buf, utils.NewPartitionMap(1, count), -1, 0, nil)
	return
}

// DecodeFacets decodes count records from buf using min(ProcLimit, count)
// goroutines. Each worker owns a contiguous range of records and its own output
// shard, the shards are joined in range order so the result is the same as
// DecodeFacetsSequential.
func DecodeFacets(count int, buf []byte, opts DecodeOptions) (facets []types.Facet, err error) {
	if err = checkBuffer(count, buf); err != nil {
		return
	}
	NP := utils.ParallelDegreeFor(opts.ProcLimit, count)
	if NP == 0 {
		facets = []types.Facet{}
		return
	}
	interval := opts.ProgressInterval
	if interval < 1 {
		interval = DefaultProgressInterval
	}
	var (
		pm     = utils.NewPartitionMap(NP, count)
		shards = make([][]types.Facet, NP)
		wg     = sync.WaitGroup{}
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			shards[np] = decodeShard(buf, pm, np, interval, opts.Progress)
		}(np)
	}
	wg.Wait()
	facets = utils.RecombineShards(shards)
	return
}

// decodeShard decodes the records of bucket bn, bn == -1 is the whole buffer
func decodeShard(buf []byte, pm *utils.PartitionMap, bn, interval int, progress ProgressFunc) (facets []types.Facet) {
	facets = make([]types.Facet, pm.GetBucketDimension(bn))
	var sinceReport int
	for kLocal := range facets {
		k := pm.GetGlobalK(kLocal, bn)
		facets[kLocal] = DecodeRecord(buf[k*RecordSize : (k+1)*RecordSize])
		if progress == nil {
			continue
		}
		if sinceReport++; sinceReport == interval {
			progress(bn, sinceReport)
			sinceReport = 0
		}
	}
	if progress != nil && sinceReport > 0 {
		progress(bn, sinceReport)
	}
	return
}

func checkBuffer(count int, buf []byte) error {
	if count < 0 || len(buf) < count*RecordSize {
		return fmt.Errorf("%w: %d records need %d bytes, have %d",
			ErrBufferSize, count, count*RecordSize, len(buf))
	}
	return nil
}
