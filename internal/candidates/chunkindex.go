// Package candidates provides the ephemeral inverted index used to shortlist
// near-duplicate fingerprints without exhaustive pairwise comparison. The
// index is rebuilt from the persistent store on every run and never written
// to disk.
package candidates

import (
	"sort"

	"photodelta/internal/index"
	"photodelta/internal/phash"
)

// Candidate pairs an entry position with its exact Hamming distance from the
// query fingerprint.
type Candidate struct {
	Pos      int
	Distance int
}

// ChunkIndex maps each fingerprint chunk, keyed by (slot, value), to the
// entry positions exhibiting it. A pair of fingerprints within a small
// Hamming distance must agree on at least one full chunk, so chunk sharing
// is a safe prefilter.
type ChunkIndex struct {
	postings map[uint32][]int
	hashes   []phash.Fingerprint
}

func chunkKey(slot int, value uint16) uint32 {
	return uint32(slot)<<16 | uint32(value)
}

// Build constructs the index over a set's current entries. Positions refer
// to indices into the entries slice handed in.
func Build(entries []index.Entry) *ChunkIndex {
	ix := &ChunkIndex{
		postings: make(map[uint32][]int),
		hashes:   make([]phash.Fingerprint, len(entries)),
	}
	for pos, e := range entries {
		ix.hashes[pos] = e.Hash
		for slot, chunk := range e.Hash.Chunks() {
			key := chunkKey(slot, chunk)
			ix.postings[key] = append(ix.postings[key], pos)
		}
	}
	return ix
}

// Len returns the number of indexed fingerprints.
func (ix *ChunkIndex) Len() int {
	return len(ix.hashes)
}

// Query returns up to maxResults entry positions sharing at least minShared
// chunks with fp, refined to exact Hamming distance at most maxDist and
// sorted ascending by distance. Equal distances order by entry position, so
// results are deterministic.
func (ix *ChunkIndex) Query(fp phash.Fingerprint, maxDist, minShared, maxResults int) []Candidate {
	shared := make(map[int]int)
	for slot, chunk := range fp.Chunks() {
		for _, pos := range ix.postings[chunkKey(slot, chunk)] {
			shared[pos]++
		}
	}

	pre := make([]int, 0, len(shared))
	for pos, count := range shared {
		if count >= minShared {
			pre = append(pre, pos)
		}
	}
	if len(pre) == 0 {
		return nil
	}
	sort.Ints(pre)

	out := make([]Candidate, 0, len(pre))
	for _, pos := range pre {
		if d := phash.Distance(fp, ix.hashes[pos]); d <= maxDist {
			out = append(out, Candidate{Pos: pos, Distance: d})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Distance < out[b].Distance
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
