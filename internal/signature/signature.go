// Package signature builds and queries gene model release signatures: for
// each known annotation release, the set of gene identifiers that occur in no
// other release of the same organism+identifier-type universe. An unlabeled
// gene list can then be matched against these sets to guess which release it
// was produced with.
package signature

import "sort"

// Set is a set of gene identifiers or symbols.
type Set map[string]struct{}

// NewSet builds a Set from a list of identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the set's elements in lexicographic order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildUniqueSets computes, for every release, the subset of its identifiers
// that appear in no other release. Releases whose unique subset is empty are
// kept with an empty set so the guesser can report a zero score for them.
// The second return value is the number of identifiers shared by all
// releases, reported as a build diagnostic.
func BuildUniqueSets(sets map[string]Set) (map[string]Set, int) {
	unique := make(map[string]Set, len(sets))
	for release, ids := range sets {
		uniq := make(Set)
		for id := range ids {
			elsewhere := false
			for other, otherIDs := range sets {
				if other == release {
					continue
				}
				if otherIDs.Has(id) {
					elsewhere = true
					break
				}
			}
			if !elsewhere {
				uniq[id] = struct{}{}
			}
		}
		unique[release] = uniq
	}
	return unique, countCommon(sets)
}

// countCommon returns the size of the intersection across every set.
func countCommon(sets map[string]Set) int {
	if len(sets) == 0 {
		return 0
	}
	var smallest Set
	for _, ids := range sets {
		if smallest == nil || len(ids) < len(smallest) {
			smallest = ids
		}
	}

	common := 0
	for id := range smallest {
		inAll := true
		for _, ids := range sets {
			if !ids.Has(id) {
				inAll = false
				break
			}
		}
		if inAll {
			common++
		}
	}
	return common
}
