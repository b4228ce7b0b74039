package matching

const noMatch = -1

// hopcroftKarp computes a maximum-cardinality matching on a bipartite
// graph with nLeft left vertices and nRight right vertices, given as an
// adjacency list from left vertex index to the right vertex indices it
// connects to. It returns, for each left vertex, the matched right
// vertex index, or noMatch.
//
// This mirrors the adapter shape the reference algorithm uses — mapping
// arbitrary vertex types to small integers before running a classic
// graph routine — except here the caller already hands us dense indices,
// so no separate positive/negative integer remapping is needed.
func hopcroftKarp(nLeft, nRight int, adj [][]int) []int {
	matchLeft := make([]int, nLeft)
	matchRight := make([]int, nRight)
	for i := range matchLeft {
		matchLeft[i] = noMatch
	}
	for i := range matchRight {
		matchRight[i] = noMatch
	}

	dist := make([]int, nLeft)

	bfs := func() bool {
		queue := make([]int, 0, nLeft)
		for u := 0; u < nLeft; u++ {
			if matchLeft[u] == noMatch {
				dist[u] = 0
				queue = append(queue, u)
			} else {
				dist[u] = -1
			}
		}
		found := false
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				w := matchRight[v]
				if w == noMatch {
					found = true
				} else if dist[w] == -1 {
					dist[w] = dist[u] + 1
					queue = append(queue, w)
				}
			}
		}
		return found
	}

	var dfs func(u int) bool
	dfs = func(u int) bool {
		for _, v := range adj[u] {
			w := matchRight[v]
			if w == noMatch || (dist[w] == dist[u]+1 && dfs(w)) {
				matchLeft[u] = v
				matchRight[v] = u
				return true
			}
		}
		dist[u] = -1
		return false
	}

	for bfs() {
		for u := 0; u < nLeft; u++ {
			if matchLeft[u] == noMatch {
				dfs(u)
			}
		}
	}

	return matchLeft
}
