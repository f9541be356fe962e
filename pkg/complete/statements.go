package complete

import (
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// DefaultHandlers builds the decision lists of every supported statement, in
// the order their leading phrases are suggested. Providers are created first
// and shared between handlers.
func DefaultHandlers(src schema.Source) []*Handler {
	var (
		keyspaceName = KeyspaceNames(src)
		tableName    = TableNames(src)
		indexName    = IndexNames(src)
		typeName     = TypeNames(src)
		viewName     = ViewNames(src)
		with         = Keywords(types.KeywordWith)
		keyspaceOpts = WithOptions("keyspace")
	)

	kw := func(k ...types.Keyword) []types.Keyword { return k }
	return []*Handler{
		{
			Leading: kw(types.KeywordCreate, types.KeywordKeyspace),
			Name:    types.StatementCreateKeyspace,
			Steps:   []Step{{keyspaceName}, {with}, {keyspaceOpts}},
		},
		{
			Leading: kw(types.KeywordAlter, types.KeywordKeyspace),
			Name:    types.StatementAlterKeyspace,
			Steps:   []Step{{keyspaceName}, {with}, {keyspaceOpts}},
		},
		{
			Leading: kw(types.KeywordDrop, types.KeywordKeyspace),
			Name:    types.StatementDropKeyspace,
			Steps:   []Step{{keyspaceName}},
		},
		{
			Leading: kw(types.KeywordDrop, types.KeywordTable),
			Name:    types.StatementDropTable,
			Steps:   []Step{{tableName}},
		},
		{
			Leading: kw(types.KeywordDrop, types.KeywordIndex),
			Name:    types.StatementDropIndex,
			Steps:   []Step{{indexName}},
		},
		{
			Leading: kw(types.KeywordDrop, types.KeywordType),
			Name:    types.StatementDropType,
			Steps:   []Step{{typeName}},
		},
		{
			Leading: kw(types.KeywordDrop, types.KeywordMaterialized, types.KeywordView),
			Name:    types.StatementDropMaterializedView,
			Steps:   []Step{{viewName}},
		},
		{
			Leading: kw(types.KeywordTruncate),
			Name:    types.StatementTruncate,
			Steps:   []Step{{tableName}},
		},
		{
			Leading: kw(types.KeywordUse),
			Name:    types.StatementUse,
			Steps:   []Step{{keyspaceName}},
		},
		{
			Leading: kw(types.KeywordDescribe, types.KeywordKeyspace),
			Name:    types.StatementDescribeKeyspace,
			Steps:   []Step{{keyspaceName}},
		},
		{
			Leading: kw(types.KeywordDescribe, types.KeywordTable),
			Name:    types.StatementDescribeTable,
			Steps:   []Step{{tableName}},
		},
	}
}

// DefaultRegistry builds the registry of the supported statements.
func DefaultRegistry(src schema.Source) (*Registry, error) {
	return NewRegistry(DefaultHandlers(src)...)
}
