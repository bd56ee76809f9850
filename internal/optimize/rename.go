package optimize

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/google/uuid"

	"taskopt/internal/graph"
)

// KeySplit returns the portion of k's base name before its first "-"/"#"
// separator or trailing numeric suffix, the same grouping key the renamers
// use to decide which absorbed names are worth mentioning.
func KeySplit(k graph.Key) string { return splitBaseName(k.BaseName()) }

func splitBaseName(s string) string {
	if i := strings.IndexAny(s, "-#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "0123456789")
}

// defaultLinearRenamer is FuseLinear's default renamer. chain follows the
// order fuse_linear builds it in: chain[0] is the original downstream key
// (the one that becomes an alias after renaming), chain[len-1] is the
// topmost ancestor with no further reducible producer.
func defaultLinearRenamer(chain []graph.Key) (graph.Key, bool) {
	if len(chain) == 0 {
		return graph.Key{}, false
	}
	root := chain[0]
	names := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 1; i-- {
		names = append(names, KeySplit(chain[i]))
	}
	names = append(names, root.BaseName())
	joined := strings.Join(names, "-")
	if root.IsTuple() {
		return graph.NewTupleKey(joined, root.Coords()...), true
	}
	return graph.NewKey(joined), true
}

// defaultReductionRenamer is Fuse's default renamer. chain follows
// fused_trees' order: chain[len-1] is the surviving root key that already
// holds the fused value, chain[:len-1] are the absorbed descendants.
func defaultReductionRenamer(chain []graph.Key, maxFusedKeyLength int) (graph.Key, bool) {
	if len(chain) == 0 {
		return graph.Key{}, false
	}
	root := chain[len(chain)-1]
	rest := chain[:len(chain)-1]

	firstName := KeySplit(root)
	nameSet := make(map[string]struct{}, len(rest))
	for _, k := range rest {
		nameSet[KeySplit(k)] = struct{}{}
	}
	delete(nameSet, firstName)

	names := make([]string, 0, len(nameSet)+1)
	for n := range nameSet {
		names = append(names, n)
	}
	sort.Strings(names)
	names = append(names, root.BaseName())

	joined := enforceMaxKeyLength(strings.Join(names, "-"), maxFusedKeyLength)
	if root.IsTuple() {
		return graph.NewTupleKey(joined, root.Coords()...), true
	}
	return graph.NewKey(joined), true
}

// enforceMaxKeyLength truncates name to maxLen-5 characters and appends a
// 4-hex-digit hash suffix when name is longer than maxLen-5. maxLen <= 0
// means no limit.
func enforceMaxKeyLength(name string, maxLen int) string {
	if maxLen <= 0 {
		return name
	}
	limit := maxLen - 5
	if limit <= 0 || len(name) <= limit {
		return name
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	suffix := fmt.Sprintf("%x", h.Sum64())
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return name[:limit] + "-" + suffix
}

// disambiguate returns candidate unchanged if it is absent from g, or a
// uuid-suffixed variant otherwise. The original source never had to handle
// this case (a Python dict silently overwrites on a name collision); this
// is a Go-specific robustness addition documented in DESIGN.md.
func disambiguate(g graph.Graph, candidate graph.Key) graph.Key {
	if !g.Has(candidate) {
		return candidate
	}
	suffix := uuid.New().String()[:8]
	newBase := candidate.BaseName() + "-" + suffix
	if candidate.IsTuple() {
		return graph.NewTupleKey(newBase, candidate.Coords()...)
	}
	return graph.NewKey(newBase)
}
