// Package frontmatter parses and serializes the YAML-like metadata block at
// the top of a Markdown document.
//
// The codec is deliberately not a full YAML implementation: converter output
// only ever contains scalar and string-list values, and round-trip fidelity
// (key order, per-key quoting) matters more than YAML coverage. Anything the
// codec cannot parse is treated as body text, never as an error.
package frontmatter

import (
	"sort"
	"strings"
)

// Delimiter marks the start and end of a front matter block.
const Delimiter = "---"

// Value is either a scalar string or an ordered list of strings.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// Block holds parsed front matter. Keys are canonically lowercase; first-seen
// key order and per-key quoting are preserved for serialization.
type Block struct {
	values map[string]Value
	order  []string
	quoted map[string]bool
}

// New returns an empty Block.
func New() *Block {
	return &Block{
		values: make(map[string]Value),
		quoted: make(map[string]bool),
	}
}

// Len returns the number of keys in the block.
func (b *Block) Len() int {
	return len(b.values)
}

// Keys returns all keys in serialization order.
func (b *Block) Keys() []string {
	keys := make([]string, 0, len(b.values))
	seen := make(map[string]bool, len(b.values))
	for _, key := range b.order {
		if _, ok := b.values[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	extra := make([]string, 0)
	for key := range b.values {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Get returns the value for a key (case-insensitive).
func (b *Block) Get(key string) (Value, bool) {
	v, ok := b.values[strings.ToLower(key)]
	return v, ok
}

// Scalar returns the scalar value for a key, or "" when absent or list-valued.
func (b *Block) Scalar(key string) string {
	v, ok := b.Get(key)
	if !ok || v.IsList {
		return ""
	}
	return v.Scalar
}

// List returns the list value for a key. A scalar value is returned as a
// single-element list so callers can treat identifier-style keys uniformly.
func (b *Block) List(key string) []string {
	v, ok := b.Get(key)
	if !ok {
		return nil
	}
	if v.IsList {
		return v.List
	}
	if v.Scalar == "" {
		return nil
	}
	return []string{v.Scalar}
}

// Set assigns a scalar value, registering the key in order on first use.
func (b *Block) Set(key, value string) {
	key = strings.ToLower(key)
	b.touch(key)
	b.values[key] = Value{Scalar: value}
}

// SetList assigns a list value, registering the key in order on first use.
func (b *Block) SetList(key string, items []string) {
	key = strings.ToLower(key)
	b.touch(key)
	b.values[key] = Value{List: items, IsList: true}
}

// Delete removes a key, its order slot, and its quoting flag.
func (b *Block) Delete(key string) {
	key = strings.ToLower(key)
	delete(b.values, key)
	delete(b.quoted, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// ForceQuote marks a key so its scalar is always quoted on serialization.
func (b *Block) ForceQuote(key string) {
	b.quoted[strings.ToLower(key)] = true
}

// Quoted reports whether a key carries the force-quotes flag.
func (b *Block) Quoted(key string) bool {
	return b.quoted[strings.ToLower(key)]
}

func (b *Block) touch(key string) {
	if _, ok := b.values[key]; !ok {
		b.order = append(b.order, key)
	}
}

// Split separates text into its front matter block and body lines.
// When no block is present, or the block is unterminated or unparsable, the
// whole input becomes body and an empty Block is returned (fails soft).
func Split(text string) (*Block, []string) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return New(), lines
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return New(), lines
	}

	block, ok := parse(lines[1:end])
	if !ok {
		return New(), lines
	}
	body := lines[end+1:]
	return block, body
}

// parse reads the interior lines of a block. Returns ok=false on the first
// line that is neither a comment, a key, nor a list item under an open list.
func parse(interior []string) (*Block, bool) {
	block := New()
	currentKey := ""
	currentList := false

	for _, raw := range interior {
		stripped := strings.TrimSpace(raw)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		if strings.HasPrefix(stripped, "- ") {
			if currentKey == "" || !currentList {
				return nil, false
			}
			v := block.values[currentKey]
			v.List = append(v.List, strings.TrimSpace(stripped[2:]))
			block.values[currentKey] = v
			continue
		}

		key, value, found := strings.Cut(raw, ":")
		if !found {
			return nil, false
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, false
		}
		value = strings.TrimSpace(value)

		if value == "" {
			block.SetList(key, nil)
			currentKey, currentList = key, true
			continue
		}

		if unquoted, wasQuoted := unquote(value); wasQuoted {
			block.Set(key, unquoted)
			block.ForceQuote(key)
		} else {
			block.Set(key, value)
		}
		currentKey, currentList = key, false
	}

	return block, true
}

// unquote strips one layer of matching single or double quotes.
func unquote(value string) (string, bool) {
	if len(value) < 2 {
		return value, false
	}
	first, last := value[0], value[len(value)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return value[1 : len(value)-1], true
	}
	return value, false
}

// Marshal renders the block back into delimiter-wrapped lines.
// Returns nil for an empty block so callers can skip the section entirely.
func (b *Block) Marshal() []string {
	if b == nil || len(b.values) == 0 {
		return nil
	}
	lines := []string{Delimiter}
	for _, key := range b.Keys() {
		v := b.values[key]
		if v.IsList {
			lines = append(lines, key+":")
			for _, item := range v.List {
				lines = append(lines, "  - "+formatScalar(item, false))
			}
			continue
		}
		lines = append(lines, key+": "+formatScalar(v.Scalar, b.quoted[key]))
	}
	return append(lines, Delimiter)
}

// needsQuotes reports whether a scalar would be ambiguous unquoted: reserved
// YAML punctuation, surrounding whitespace, emptiness, or a value that would
// round-trip as a boolean/null literal.
func needsQuotes(value string) bool {
	if value == "" || value != strings.TrimSpace(value) {
		return true
	}
	if strings.ContainsAny(value, ":#\"'") {
		return true
	}
	switch strings.ToLower(value) {
	case "true", "false", "null", "~", "yes", "no":
		return true
	}
	return false
}

func formatScalar(value string, force bool) string {
	if force || needsQuotes(value) {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return value
}
