package converter

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// cacheKey identifies one resolution: a declaration's type identity under a
// particular set of generic bindings.
type cacheKey struct {
	id       checker.TypeID
	bindings string
}

type entryState int

const (
	statePending entryState = iota
	stateDone
)

type cacheEntry struct {
	state entryState
	node  schema.Node
	err   error
}

// identityCache memoizes declaration resolutions for a single run. A pending
// entry means the resolution is on the current call stack.
type identityCache struct {
	entries map[cacheKey]*cacheEntry
	hits    int
	misses  int
}

func newIdentityCache() *identityCache {
	return &identityCache{entries: make(map[cacheKey]*cacheEntry)}
}

func (c *identityCache) get(key cacheKey) (*cacheEntry, bool) {
	e, ok := c.entries[key]
	if ok && e.state == stateDone {
		c.hits++
	}
	return e, ok
}

func (c *identityCache) begin(key cacheKey) {
	c.misses++
	c.entries[key] = &cacheEntry{state: statePending}
}

func (c *identityCache) finish(key cacheKey, node schema.Node, err error) {
	c.entries[key] = &cacheEntry{state: stateDone, node: node, err: err}
}

// bindingsKey renders bindings deterministically. Nodes are compared through
// their JSON form, which is structural and carries a kind discriminator.
func bindingsKey(b schema.Bindings) string {
	if len(b) == 0 {
		return ""
	}
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('=')
		data, err := json.Marshal(b[name])
		if err != nil {
			// Fall back to the rendered form; never expected for schema nodes.
			sb.WriteString(b[name].String())
		} else {
			sb.Write(data)
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
