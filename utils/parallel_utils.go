package utils

import "runtime"

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

// ParallelDegreeFor returns the number of workers to use for maxIndex items,
// never more than there are items. A procLimit below 1 means runtime.NumCPU().
func ParallelDegreeFor(procLimit, maxIndex int) (np int) {
	np = procLimit
	if np < 1 {
		np = runtime.NumCPU()
	}
	if np > maxIndex {
		np = maxIndex
	}
	return
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetGlobalK(kLocal, bn int) (kGlobal int) {
	if bn == -1 {
		kGlobal = kLocal
		return
	}
	kGlobal = pm.Partitions[bn][0] + kLocal
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// Every bucket gets MaxIndex/ParallelDegree items, the last one also takes
	// the remainder of the integer division
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
	)
	bucket[0] = threadNum * Npart
	bucket[1] = bucket[0] + Npart
	if threadNum == pm.ParallelDegree-1 {
		bucket[1] += remainder
	}
	return
}

// RecombineShards concatenates per-partition results in partition order
func RecombineShards[T any](shards [][]T) (all []T) {
	var total int
	for _, s := range shards {
		total += len(s)
	}
	all = make([]T, 0, total)
	for _, s := range shards {
		all = append(all, s...)
	}
	return
}
