package matching

// validSubset is a size-n subset of intermediate pairings whose
// (output, head) edges admit a perfect bipartite matching.
type validSubset struct {
	pairings []intermediatePairing
}

// invalidSubset is diagnostic residue: a subset whose maximum matching
// came up short of a perfect assignment.
type invalidSubset struct {
	pairings []intermediatePairing
	matched  int
}

// stage2 enumerates every n-element subset of the intermediate pairings
// and runs a maximum-cardinality bipartite matching on each, splitting
// results into subsets that admit a perfect matching (valid) and those
// that don't (kept only for diagnostics).
func stage2(intermediates []intermediatePairing, n int) ([]validSubset, []invalidSubset) {
	var valid []validSubset
	var invalid []invalidSubset

	combinations(len(intermediates), n, func(idx []int) {
		subset := make([]intermediatePairing, len(idx))
		for i, ix := range idx {
			subset[i] = intermediates[ix]
		}

		matched := perfectMatchSize(subset)
		if matched == n {
			valid = append(valid, validSubset{pairings: subset})
		} else {
			invalid = append(invalid, invalidSubset{pairings: subset, matched: matched})
		}
	})

	return valid, invalid
}

// perfectMatchSize runs Hopcroft-Karp over the (output, head) edges
// implied by subset and returns the size of the maximum matching found.
func perfectMatchSize(subset []intermediatePairing) int {
	outputIdx := map[int]int{}
	headIdx := map[uint64]int{}
	var nLeft, nRight int

	leftOf := make([]int, len(subset))
	rightOf := make([]int, len(subset))

	for i, p := range subset {
		li, ok := outputIdx[p.outputIndex]
		if !ok {
			li = nLeft
			outputIdx[p.outputIndex] = li
			nLeft++
		}
		leftOf[i] = li

		ri, ok := headIdx[uint64(p.head.Head.ID)]
		if !ok {
			ri = nRight
			headIdx[uint64(p.head.Head.ID)] = ri
			nRight++
		}
		rightOf[i] = ri
	}

	adj := make([][]int, nLeft)
	for i := range subset {
		adj[leftOf[i]] = append(adj[leftOf[i]], rightOf[i])
	}

	match := hopcroftKarp(nLeft, nRight, adj)
	count := 0
	for _, m := range match {
		if m != noMatch {
			count++
		}
	}
	return count
}

// combinations calls visit once for every n-element subset (as an
// ascending index slice) of the set {0, ..., total-1}.
func combinations(total, n int, visit func(idx []int)) {
	if n <= 0 || n > total {
		return
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for {
		visit(append([]int(nil), idx...))

		i := n - 1
		for i >= 0 && idx[i] == total-n+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < n; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
