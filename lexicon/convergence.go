package lexicon

// Pair identifies one dominant belief for the convergence metric.
type Pair struct {
	Chirp   uint16
	Concept Concept
}

// DominantSet collects the (chirp, concept) pairs whose weight is at or above
// threshold into a map set.
func (t *Table) DominantSet(threshold float32) map[Pair]struct{} {
	set := make(map[Pair]struct{})
	for i := uint8(0); i < t.n; i++ {
		e := &t.entries[i]
		if e.Weight >= threshold {
			set[Pair{Chirp: e.Chirp, Concept: e.Concept}] = struct{}{}
		}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, defined as 1 when both sets are empty:
// two agents that believe nothing agree perfectly.
func Jaccard(a, b map[Pair]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for p := range a {
		if _, ok := b[p]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Convergence returns the mean pairwise Jaccard similarity of the dominant
// belief sets across all tables. A single table (or none) is trivially
// converged. Cost is quadratic in population; callers run it on a long
// interval, never per tick.
func Convergence(tables []*Table, threshold float32) float64 {
	n := len(tables)
	if n < 2 {
		return 1.0
	}

	sets := make([]map[Pair]struct{}, n)
	for i, t := range tables {
		sets[i] = t.DominantSet(threshold)
	}

	var total float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += Jaccard(sets[i], sets[j])
			pairs++
		}
	}
	return total / float64(pairs)
}
