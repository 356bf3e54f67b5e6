package domain

// SymbolPolicy decides which crypto symbols may be queried. The forbidden
// set is loaded once at process start and is immutable afterwards, so the
// policy is safe for concurrent use without locking.
type SymbolPolicy struct {
	forbidden map[string]struct{}
	list      []string
}

// NewSymbolPolicy creates a SymbolPolicy from the configured forbidden
// symbols. Matching is case-sensitive and exact.
func NewSymbolPolicy(forbiddenSymbols []string) *SymbolPolicy {
	set := make(map[string]struct{}, len(forbiddenSymbols))
	list := make([]string, 0, len(forbiddenSymbols))
	for _, s := range forbiddenSymbols {
		if s == "" {
			continue
		}
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		list = append(list, s)
	}
	return &SymbolPolicy{forbidden: set, list: list}
}

// IsForbidden reports whether symbol is a member of the forbidden set.
func (p *SymbolPolicy) IsForbidden(symbol string) bool {
	_, ok := p.forbidden[symbol]
	return ok
}

// Forbidden returns the configured forbidden symbols. The result is a copy
// intended for exclusion clauses in store queries.
func (p *SymbolPolicy) Forbidden() []string {
	out := make([]string, len(p.list))
	copy(out, p.list)
	return out
}

// Allowed filters knownSymbols, removing forbidden ones. The input order is
// preserved; callers pass the store's distinct-symbol listing, which is
// already descending lexicographic.
func (p *SymbolPolicy) Allowed(knownSymbols []string) []string {
	out := make([]string, 0, len(knownSymbols))
	for _, s := range knownSymbols {
		if p.IsForbidden(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
