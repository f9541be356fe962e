package complete

import "strings"

// GroupKind identifies what type of grouping this is.
type GroupKind string

const (
	GroupKindKeyspace GroupKind = "keyspace" // Schema objects by keyspace
	GroupKindCategory GroupKind = "category" // Keywords, options
)

// Group ID prefixes
const (
	GroupPrefixKeyspace = "ks:"  // Keyspace group, e.g., "ks:shop"
	GroupPrefixCategory = "cat:" // Category group, e.g., "cat:statements"
)

// Predefined category group IDs
const (
	GroupCatStatements = "cat:statements"
	GroupCatOptions    = "cat:options"
)

// CompletionGroup represents a group that completion items can belong to.
type CompletionGroup struct {
	// ID is a unique identifier for the group (e.g., "ks:shop")
	ID string `json:"id"`

	// Kind identifies what type of grouping this is
	Kind GroupKind `json:"kind"`

	// Label is the display text for the group
	Label string `json:"label"`

	// Icon is an optional icon hint for the frontend
	Icon string `json:"icon,omitempty"`

	// Priority controls ordering of groups (lower = first)
	Priority int `json:"priority,omitempty"`
}

var categoryGroups = map[string]CompletionGroup{
	GroupCatStatements: {ID: GroupCatStatements, Kind: GroupKindCategory, Label: "Statements", Icon: "▶", Priority: 100},
	GroupCatOptions:    {ID: GroupCatOptions, Kind: GroupKindCategory, Label: "Options", Icon: "⚙", Priority: 101},
}

// KeyspaceGroupID returns the group ID of a keyspace.
func KeyspaceGroupID(keyspace string) string {
	return GroupPrefixKeyspace + keyspace
}

// resolveGroups builds the definitions of every group referenced by items,
// in first-reference order. The default keyspace group sorts first.
func resolveGroups(items []CompletionItem, defaultKs string) []CompletionGroup {
	var out []CompletionGroup
	seen := make(map[string]bool)
	for _, it := range items {
		for _, id := range it.Groups {
			if seen[id] {
				continue
			}
			seen[id] = true
			if g, ok := categoryGroups[id]; ok {
				out = append(out, g)
				continue
			}
			if ks, ok := strings.CutPrefix(id, GroupPrefixKeyspace); ok {
				g := CompletionGroup{ID: id, Kind: GroupKindKeyspace, Label: ks, Icon: "⬡", Priority: len(out) + 1}
				if ks == defaultKs {
					g.Label += " (current)"
					g.Priority = 0
				}
				out = append(out, g)
			}
		}
	}
	return out
}
