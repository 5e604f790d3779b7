package readfiles

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/notargets/stlview/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsOf(facets []types.Facet) []byte {
	return BinarySTL("", facets)[HeaderSize+CountSize:]
}

func TestDecodeRecord(t *testing.T) {
	want := types.Facet{
		Normal:   types.Normal{I: 0, J: 0, K: 1},
		Vertices: [3]types.Vertex{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	}
	// Hand laid out little endian bytes, attribute bytes set to garbage
	rec := []byte{
		0, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x00, 0x80, 0x3f, // normal 0,0,1
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // v1 0,0,0
		0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0, // v2 1,0,0
		0, 0, 0, 0, 0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0, // v3 0,1,0
		0xff, 0xee,
	}
	require.Equal(t, RecordSize, len(rec))
	assert.Equal(t, want, DecodeRecord(rec))
	{ // Every float lands in its own field
		f := NumberedFacets(1)[0]
		assert.Equal(t, f, DecodeRecord(recordsOf([]types.Facet{f})))
	}
}

func TestDecodeFacets_MatchesSequential(t *testing.T) {
	for _, N := range []int{1, 2, 3, 7, 9, 64, 101} {
		facets := NumberedFacets(N)
		buf := recordsOf(facets)
		seq, err := DecodeFacetsSequential(N, buf)
		require.NoError(t, err)
		if diff := cmp.Diff(facets, seq); diff != "" {
			t.Fatalf("sequential decode of %d facets mismatch (-want +got):\n%s", N, diff)
		}
		for W := 1; W <= N; W++ {
			par, err := DecodeFacets(N, buf, DecodeOptions{ProcLimit: W})
			require.NoError(t, err)
			if diff := cmp.Diff(seq, par); diff != "" {
				t.Fatalf("N=%d W=%d mismatch (-seq +par):\n%s", N, W, diff)
			}
		}
	}
}

func TestDecodeFacets_BitIdenticalOnArbitraryBytes(t *testing.T) {
	// Random bytes include NaN payloads, compare re-encoded bits rather than floats
	const N = 37
	buf := make([]byte, N*RecordSize)
	rand.New(rand.NewSource(42)).Read(buf)
	for i := 0; i < N; i++ {
		buf[i*RecordSize+RecordSize-2], buf[i*RecordSize+RecordSize-1] = 0, 0
	}
	for _, W := range []int{1, 4, 5, 36, 37} {
		par, err := DecodeFacets(N, buf, DecodeOptions{ProcLimit: W})
		require.NoError(t, err)
		require.Len(t, par, N)
		assert.Equal(t, buf, recordsOf(par), "W=%d", W)
	}
}

func TestDecodeFacets_MoreWorkersThanRecords(t *testing.T) {
	facets := PyramidFacets()[:1]
	got, err := DecodeFacets(1, recordsOf(facets), DecodeOptions{ProcLimit: 16})
	require.NoError(t, err)
	assert.Equal(t, facets, got)

	got, err = DecodeFacets(4, recordsOf(PyramidFacets()), DecodeOptions{ProcLimit: 10})
	require.NoError(t, err)
	assert.Equal(t, PyramidFacets(), got)
}

func TestDecodeFacets_OddCount(t *testing.T) {
	facets := NumberedFacets(9)
	got, err := DecodeFacets(9, recordsOf(facets), DecodeOptions{ProcLimit: 4})
	require.NoError(t, err)
	require.Len(t, got, 9)
	seen := make(map[float32]bool)
	for _, f := range got {
		assert.False(t, seen[f.Normal.I], "duplicate facet %v", f.Normal.I)
		seen[f.Normal.I] = true
	}
	assert.Equal(t, facets, got)
}

func TestDecodeFacets_ZeroAndBadBuffer(t *testing.T) {
	got, err := DecodeFacets(0, nil, DecodeOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	_, err = DecodeFacets(3, make([]byte, 3*RecordSize-1), DecodeOptions{})
	assert.ErrorIs(t, err, ErrBufferSize)
	_, err = DecodeFacetsSequential(-1, nil)
	assert.ErrorIs(t, err, ErrBufferSize)
}

func TestDecodeFacets_Progress(t *testing.T) {
	const (
		N        = 1000
		W        = 3
		interval = 64
	)
	var (
		mu       sync.Mutex
		perWork  = make(map[int][]int)
		reported int
	)
	progress := func(worker, decoded int) {
		mu.Lock()
		defer mu.Unlock()
		reported += decoded
		running := decoded
		if prev := perWork[worker]; len(prev) > 0 {
			running += prev[len(prev)-1]
		}
		perWork[worker] = append(perWork[worker], running)
	}
	_, err := DecodeFacets(N, recordsOf(NumberedFacets(N)),
		DecodeOptions{ProcLimit: W, ProgressInterval: interval, Progress: progress})
	require.NoError(t, err)
	assert.Equal(t, N, reported)
	assert.Len(t, perWork, W)
	for worker, totals := range perWork {
		for i := 1; i < len(totals); i++ {
			assert.Greater(t, totals[i], totals[i-1], "worker %d regressed", worker)
		}
	}
	// 333 records at an interval of 64 report five full intervals and one tail
	assert.Len(t, perWork[0], 6)
	assert.Equal(t, 333, perWork[0][5])
	assert.Equal(t, 334, perWork[2][5])
}
