package hover

import "strings"

// KeywordInfo contains hover documentation for a CQL keyword or statement.
type KeywordInfo struct {
	Name        string
	Description string
	Syntax      string
}

// Keywords documents the keywords the completion engine understands.
var Keywords = map[string]*KeywordInfo{
	"CREATE":       {Name: "CREATE", Description: "Creates a new schema object", Syntax: "CREATE KEYSPACE ..."},
	"ALTER":        {Name: "ALTER", Description: "Modifies a schema object", Syntax: "ALTER KEYSPACE ..."},
	"DROP":         {Name: "DROP", Description: "Removes a schema object", Syntax: "DROP KEYSPACE|TABLE|INDEX|TYPE|MATERIALIZED VIEW name"},
	"TRUNCATE":     {Name: "TRUNCATE", Description: "Removes all data from a table", Syntax: "TRUNCATE [keyspace.]table"},
	"USE":          {Name: "USE", Description: "Sets the current keyspace for the session", Syntax: "USE keyspace_name"},
	"DESCRIBE":     {Name: "DESCRIBE", Description: "Displays schema information", Syntax: "DESCRIBE KEYSPACE|TABLE name"},
	"KEYSPACE":     {Name: "KEYSPACE", Description: "A namespace for tables (similar to database)", Syntax: "CREATE KEYSPACE name WITH replication = {...}"},
	"TABLE":        {Name: "TABLE", Description: "A collection of rows organized by primary key", Syntax: "DROP TABLE [keyspace.]table"},
	"INDEX":        {Name: "INDEX", Description: "Secondary index on a column", Syntax: "DROP INDEX [keyspace.]index"},
	"TYPE":         {Name: "TYPE", Description: "User-defined type (UDT)", Syntax: "DROP TYPE [keyspace.]type"},
	"MATERIALIZED": {Name: "MATERIALIZED", Description: "Used with VIEW to name materialized views", Syntax: "DROP MATERIALIZED VIEW [keyspace.]view"},
	"VIEW":         {Name: "VIEW", Description: "A table maintained from a base table by the server", Syntax: "DROP MATERIALIZED VIEW [keyspace.]view"},
	"WITH":         {Name: "WITH", Description: "Starts the keyspace options", Syntax: "WITH option = value [AND option = value ...]"},
	"AND":          {Name: "AND", Description: "Separates keyspace options", Syntax: "WITH option = value AND option = value"},
}

// Statements documents every completable statement, keyed by its leading
// keyword phrase.
var Statements = map[string]*KeywordInfo{
	"CREATE KEYSPACE":        {Name: "CREATE KEYSPACE", Description: "Creates a keyspace", Syntax: "CREATE KEYSPACE name WITH replication = {...} [AND durable_writes = true|false]"},
	"ALTER KEYSPACE":         {Name: "ALTER KEYSPACE", Description: "Changes the options of a keyspace", Syntax: "ALTER KEYSPACE name WITH replication = {...} [AND durable_writes = true|false]"},
	"DROP KEYSPACE":          {Name: "DROP KEYSPACE", Description: "Removes a keyspace with all its tables and data", Syntax: "DROP KEYSPACE name"},
	"DROP TABLE":             {Name: "DROP TABLE", Description: "Removes a table and its data", Syntax: "DROP TABLE [keyspace.]table"},
	"DROP INDEX":             {Name: "DROP INDEX", Description: "Removes a secondary index", Syntax: "DROP INDEX [keyspace.]index"},
	"DROP TYPE":              {Name: "DROP TYPE", Description: "Removes a user-defined type", Syntax: "DROP TYPE [keyspace.]type"},
	"DROP MATERIALIZED VIEW": {Name: "DROP MATERIALIZED VIEW", Description: "Removes a materialized view", Syntax: "DROP MATERIALIZED VIEW [keyspace.]view"},
	"TRUNCATE":               {Name: "TRUNCATE", Description: "Removes all rows of a table, keeping the table", Syntax: "TRUNCATE [keyspace.]table"},
	"USE":                    {Name: "USE", Description: "Switches the current keyspace", Syntax: "USE keyspace"},
	"DESCRIBE KEYSPACE":      {Name: "DESCRIBE KEYSPACE", Description: "Prints the CQL that recreates a keyspace", Syntax: "DESCRIBE KEYSPACE name"},
	"DESCRIBE TABLE":         {Name: "DESCRIBE TABLE", Description: "Prints the CQL that recreates a table", Syntax: "DESCRIBE TABLE [keyspace.]table"},
}

// Options documents keyspace options, map keys and well-known values.
// Quoted entries keep their quotes: they are matched against string literals.
var Options = map[string]*KeywordInfo{
	"replication":               {Name: "replication", Description: "Replica placement strategy and its settings", Syntax: "replication = {'class': 'SimpleStrategy', 'replication_factor': 3}"},
	"durable_writes":            {Name: "durable_writes", Description: "Whether updates go through the commit log", Syntax: "durable_writes = true|false"},
	"'class'":                   {Name: "class", Description: "Replication strategy class", Syntax: "'class': 'SimpleStrategy'|'NetworkTopologyStrategy'"},
	"'replication_factor'":      {Name: "replication_factor", Description: "Number of replicas (SimpleStrategy)", Syntax: "'replication_factor': 3"},
	"'simplestrategy'":          {Name: "SimpleStrategy", Description: "Places replicas on consecutive nodes of the ring; for single-datacenter clusters"},
	"'networktopologystrategy'": {Name: "NetworkTopologyStrategy", Description: "Sets the number of replicas per datacenter", Syntax: "{'class': 'NetworkTopologyStrategy', 'dc1': 3, 'dc2': 2}"},
}

// GetKeywordInfo returns documentation for a keyword, or nil.
func GetKeywordInfo(keyword string) *KeywordInfo {
	return Keywords[strings.ToUpper(keyword)]
}

// GetStatementInfo returns documentation for a statement phrase, or nil.
func GetStatementInfo(phrase string) *KeywordInfo {
	return Statements[strings.ToUpper(phrase)]
}

// GetOptionInfo returns documentation for an option name, map key or
// strategy literal, or nil.
func GetOptionInfo(text string) *KeywordInfo {
	if info, ok := Options[text]; ok {
		return info
	}
	return Options[strings.ToLower(text)]
}
