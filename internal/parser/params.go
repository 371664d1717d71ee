package parser

// paramTable assigns the dense, 1-based index a bind parameter occupies in
// its statement's parameter list. Occurrences naming the same parameter
// (by name, or by explicit ?n number) share an index; bare `?` always
// allocates a fresh index regardless of any other occurrence.
type paramTable struct {
	byName map[string]int
	next   int
}

func newParamTable() *paramTable {
	return &paramTable{byName: map[string]int{}}
}

// question allocates a fresh index for a bare `?` occurrence.
func (p *paramTable) question() int {
	p.next++
	return p.next
}

// numbered returns the index for `?n`: the literal n itself, since `?n`
// binds directly to position n rather than to an occurrence count. Gaps are
// allowed: `?1` and `?3` with no `?2` in between assigns indices 1 and 3,
// and 2 is simply never allocated.
func (p *paramTable) numbered(n int) int {
	if n > p.next {
		p.next = n
	}
	return n
}

// named returns the shared index for a `:name`, `@name`, or `$name`
// occurrence, allocating on first sight.
func (p *paramTable) named(name string) int {
	if idx, ok := p.byName[name]; ok {
		return idx
	}
	p.next++
	p.byName[name] = p.next
	return p.next
}
