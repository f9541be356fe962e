package complete

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

func complete(e *Engine, partial string, words ...string) Result {
	return e.Complete(context.Background(), CompletionRequest{
		Tokens:  tokenize.FromWords(words...),
		Partial: partial,
	})
}

func TestScenarios(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("A: CREATE alone is undetermined", func(t *testing.T) {
		res := complete(engine, "", "CREATE")
		assert.Equal(t, OutcomeUndetermined, res.Outcome)
		assert.Equal(t, types.StatementUnknown, res.Statement)
		assert.Equal(t, []string{"KEYSPACE"}, res.Labels())
	})

	t.Run("B: keyspace names after CREATE KEYSPACE", func(t *testing.T) {
		res := complete(engine, "", "CREATE", "KEYSPACE")
		assert.Equal(t, types.StatementCreateKeyspace, res.Statement)
		assert.Equal(t, OutcomeSuggesting, res.Outcome)
		assert.Equal(t, 0, res.Step)
		assert.Equal(t, []string{`"Analytics"`, "audit", "shop"}, res.Labels())
		for _, it := range res.Items {
			assert.Equal(t, KindKeyspace, it.Kind)
		}
	})

	t.Run("C: WITH after the keyspace name", func(t *testing.T) {
		res := complete(engine, "", "CREATE", "KEYSPACE", "orders")
		assert.Equal(t, types.StatementCreateKeyspace, res.Statement)
		assert.Equal(t, 1, res.Step)
		assert.Equal(t, []string{"WITH"}, res.Labels())
	})

	t.Run("D: table names after DROP TABLE", func(t *testing.T) {
		res := complete(engine, "", "DROP", "TABLE")
		assert.Equal(t, types.StatementDropTable, res.Statement)
		assert.Equal(t, 0, res.Step)
		assert.Equal(t, []string{`"Analytics"."Daily"`, "audit.events", "shop.customers", "shop.orders"}, res.Labels())
	})

	t.Run("E: DROP TABLE x y is over-specified", func(t *testing.T) {
		res := complete(engine, "", "DROP", "TABLE", "x", "y")
		assert.Equal(t, types.StatementDropTable, res.Statement)
		assert.Equal(t, OutcomeOverSpecified, res.Outcome)
		assert.Empty(t, res.Items)
	})

	t.Run("F: unknown statement lists every statement", func(t *testing.T) {
		res := complete(engine, "", "FROB")
		assert.Equal(t, OutcomeUnknown, res.Outcome)
		assert.Equal(t, types.StatementUnknown, res.Statement)
		assert.Equal(t, engine.Registry().LeadingKeywords(), res.Labels())
	})
}

func TestEmptyInputListsRegistrationOrder(t *testing.T) {
	engine := newTestEngine(t)
	res := complete(engine, "")
	assert.Equal(t, OutcomeUndetermined, res.Outcome)
	assert.Equal(t, -1, res.Step)
	assert.Equal(t, engine.Registry().LeadingKeywords(), res.Labels())
	for _, it := range res.Items {
		assert.NotEmpty(t, it.Detail, it.Label)
		assert.Equal(t, []string{GroupCatStatements}, it.Groups)
	}
}

var propertyInputs = []string{
	"",
	"c",
	"DROP ",
	"DROP T",
	"drop table s",
	"DROP TABLE shop.",
	"DROP TABLE \"A",
	"CREATE KEYSPACE ",
	"CREATE KEYSPACE a",
	"CREATE KEYSPACE orders W",
	"CREATE KEYSPACE orders WITH r",
	"CREATE KEYSPACE orders WITH replication = {'c",
	"USE ",
	"USE s",
	"FROB ",
	"FROB a",
	"TRUNCATE ",
}

func TestDeterminism(t *testing.T) {
	engine := newTestEngine(t)
	for _, in := range propertyInputs {
		first := engine.CompleteText(context.Background(), in, len(in), "shop")
		for i := 0; i < 5; i++ {
			again := engine.CompleteText(context.Background(), in, len(in), "shop")
			require.Equal(t, first, again, "input %q", in)
		}
	}
}

func TestPrefixProperty(t *testing.T) {
	engine := newTestEngine(t)
	for _, in := range propertyInputs {
		res := engine.CompleteText(context.Background(), in, len(in), "shop")
		prefix := strings.ToLower(res.Replace)
		for _, label := range res.Labels() {
			assert.True(t, strings.HasPrefix(strings.ToLower(label), prefix),
				"input %q: %q does not start with %q", in, label, res.Replace)
		}
	}
}

func TestDedupProperty(t *testing.T) {
	engine := newTestEngine(t)
	for _, in := range propertyInputs {
		res := engine.CompleteText(context.Background(), in, len(in), "")
		seen := make(map[string]bool)
		for _, label := range res.Labels() {
			assert.False(t, seen[label], "input %q: duplicate %q", in, label)
			seen[label] = true
		}
	}
}

func TestUnionKeepsFirstOccurrence(t *testing.T) {
	s := schema.NewSchema()
	s.AddKeyspace("with")
	s.AddKeyspace("alpha")
	src := schema.NewStaticSource(s)

	reg, err := NewRegistry(&Handler{
		Leading: []types.Keyword{types.KeywordUse},
		Name:    types.StatementUse,
		Steps:   []Step{{Keywords(types.KeywordWith, types.KeywordAnd), KeyspaceNames(src), KeyspaceNames(src)}},
	})
	require.NoError(t, err)

	res := complete(NewEngine(reg), "", "USE")
	// "with" is quoted since WITH is reserved, so it does not collide with the keyword.
	assert.Equal(t, []string{"WITH", "AND", "alpha", `"with"`}, res.Labels())
	assert.Equal(t, KindKeyword, res.Items[0].Kind)
}

func TestFirstMatchWins(t *testing.T) {
	src := schema.NewStaticSource(schema.NewSchema())
	reg, err := NewRegistry(&Handler{
		Leading: []types.Keyword{types.KeywordUse},
		Name:    types.StatementUse,
		// TYPE is not reserved, so it is also a valid keyspace name. The
		// keyword alternative comes first and advances to the WITH step.
		Steps: []Step{{Keywords(types.KeywordType), KeyspaceNames(src)}, {Keywords(types.KeywordWith)}},
	})
	require.NoError(t, err)

	res := complete(NewEngine(reg), "", "USE", "type")
	assert.Equal(t, 1, res.Step)
	assert.Equal(t, []string{"WITH"}, res.Labels())
}

func TestInvalidKeepsStatement(t *testing.T) {
	engine := newTestEngine(t)
	res := complete(engine, "", "DROP", "TABLE", "'literal'")
	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, types.StatementDropTable, res.Statement)
	assert.Equal(t, 0, res.Step)
	assert.Empty(t, res.Items)
}

func TestMaxItems(t *testing.T) {
	engine := newTestEngine(t, WithMaxItems(3))
	res := complete(engine, "")
	assert.Equal(t, []string{"CREATE KEYSPACE", "ALTER KEYSPACE", "DROP KEYSPACE"}, res.Labels())
}

func TestGroups(t *testing.T) {
	engine := newTestEngine(t)
	res := engine.CompleteText(context.Background(), "DROP TABLE ", 11, "shop")
	require.Len(t, res.Groups, 3)
	assert.Equal(t, "ks:shop", res.Groups[0].ID)
	assert.Equal(t, "shop (current)", res.Groups[0].Label)
	assert.Equal(t, 0, res.Groups[0].Priority)
	assert.Equal(t, "ks:Analytics", res.Groups[1].ID)
	assert.Equal(t, "ks:audit", res.Groups[2].ID)
}

func TestCompletesStatementAfterSemicolon(t *testing.T) {
	engine := newTestEngine(t)
	res := engine.CompleteText(context.Background(), "USE shop; DROP TABLE ", 21, "shop")
	assert.Equal(t, types.StatementDropTable, res.Statement)
	assert.Equal(t, OutcomeSuggesting, res.Outcome)
	assert.Contains(t, res.Labels(), "orders")
}

func TestReplaceRange(t *testing.T) {
	engine := newTestEngine(t)
	res := engine.CompleteText(context.Background(), "DROP TABLE shop.or", 18, "")
	assert.Equal(t, "shop.or", res.Replace)
	assert.Equal(t, 11, res.ReplaceStart)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "shop.orders", res.Items[0].GetInsertText())
}

// failingSource fails table and index lookups.
type failingSource struct {
	schema.Source
	err error
}

func (f failingSource) Tables(context.Context, string) ([]string, error)  { return nil, f.err }
func (f failingSource) Indexes(context.Context, string) ([]string, error) { return nil, f.err }

func TestSuggestionSourceError(t *testing.T) {
	s := schema.NewSchema()
	s.AddKeyspace("shop").AddTable("orders")
	boom := errors.New("read timeout")
	src := failingSource{Source: schema.NewStaticSource(s), err: boom}

	reg, err := NewRegistry(&Handler{
		Leading: []types.Keyword{types.KeywordTruncate},
		Name:    types.StatementTruncate,
		Steps:   []Step{{TableNames(src), KeyspaceNames(src), Keywords(types.KeywordTable)}},
	})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	engine := NewEngine(reg, WithLogger(logger))

	res := complete(engine, "", "TRUNCATE")
	assert.Equal(t, OutcomeSuggesting, res.Outcome)
	assert.Equal(t, []string{"shop", "TABLE"}, res.Labels())

	require.Len(t, res.Errors, 1)
	var serr *types.SuggestionSourceError
	require.ErrorAs(t, res.Errors[0], &serr)
	assert.Equal(t, "table name", serr.Provider)
	assert.Equal(t, types.StatementTruncate, serr.Statement)
	assert.ErrorIs(t, res.Errors.First(), boom)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "table name", entry.Data["provider"])
}

func TestCancelledContext(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := engine.CompleteText(ctx, "USE ", 4, "")
	assert.Equal(t, OutcomeSuggesting, res.Outcome)
	assert.Empty(t, res.Items)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], context.Canceled)
}

func TestConcurrentCompletion(t *testing.T) {
	engine := newTestEngine(t)
	want := engine.CompleteText(context.Background(), "DROP TABLE ", 11, "shop")

	done := make(chan Result)
	for i := 0; i < 16; i++ {
		go func() {
			done <- engine.CompleteText(context.Background(), "DROP TABLE ", 11, "shop")
		}()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-done)
	}
}
