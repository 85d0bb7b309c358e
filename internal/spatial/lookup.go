package spatial

import "sort"

// Searcher answers overlap queries against a built index in
// O(log n + k) per chromosome using a sorted-slice interval search.
type Searcher struct {
	chroms map[string]chromLoci
}

type chromLoci struct {
	loci   []Locus
	maxEnd []int64 // maxEnd[i] = max(End) over loci[0..i]
}

// NewSearcher prepares an index for range queries. The index must not be
// mutated afterwards.
func NewSearcher(idx Index) *Searcher {
	s := &Searcher{chroms: make(map[string]chromLoci, len(idx))}
	for chrom, loci := range idx {
		if len(loci) == 0 {
			continue
		}
		maxEnd := make([]int64, len(loci))
		maxEnd[0] = loci[0].End
		for i := 1; i < len(loci); i++ {
			maxEnd[i] = loci[i].End
			if maxEnd[i-1] > maxEnd[i] {
				maxEnd[i] = maxEnd[i-1]
			}
		}
		s.chroms[chrom] = chromLoci{loci: loci, maxEnd: maxEnd}
	}
	return s
}

// FindRange returns all loci on chrom overlapping the half-open range
// [start, end), in ascending start order.
func (s *Searcher) FindRange(chrom string, start, end int64) []Locus {
	cl, ok := s.chroms[chrom]
	if !ok {
		return nil
	}

	// First index with Start >= end; candidates are [0, hi).
	hi := sort.Search(len(cl.loci), func(i int) bool {
		return cl.loci[i].Start >= end
	})

	var result []Locus
	for i := hi - 1; i >= 0; i-- {
		// No locus in [0, i] can reach start if the running max falls short.
		if cl.maxEnd[i] <= start {
			break
		}
		if cl.loci[i].End > start {
			result = append(result, cl.loci[i])
		}
	}

	// Restore ascending start order after the backwards scan.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// FindSymbol returns every locus for a symbol across all chromosomes.
func (s *Searcher) FindSymbol(symbol string) []Locus {
	var result []Locus
	for _, chrom := range s.Chromosomes() {
		for _, l := range s.chroms[chrom].loci {
			if l.Symbol == symbol {
				result = append(result, l)
			}
		}
	}
	return result
}

// Chromosomes returns the chromosome names in sorted order.
func (s *Searcher) Chromosomes() []string {
	chroms := make([]string, 0, len(s.chroms))
	for chrom := range s.chroms {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
