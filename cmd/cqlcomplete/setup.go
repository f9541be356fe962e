package main

import (
	"context"
	"os"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"github.com/urfave/cli/v2"

	"github.com/tentacle-scylla/cqlcomplete"
	"github.com/tentacle-scylla/cqlcomplete/internal/config"
	"github.com/tentacle-scylla/cqlcomplete/internal/logger"
	"github.com/tentacle-scylla/cqlcomplete/internal/metrics"
	"github.com/tentacle-scylla/cqlcomplete/pkg/cluster"
	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

// appState is what the complete and serve commands share.
type appState struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Registry
	engine  *complete.Engine
	session *gocql.Session

	// schema is the loaded snapshot, nil when names come from a cluster
	schema *schema.Schema
}

func (rt *appState) Close() {
	if rt.session != nil {
		rt.session.Close()
	}
}

// flagOverrides maps command-line flags onto config keys. Only flags that
// were set override the file and environment.
var flagOverrides = map[string]string{
	"log-level": "log_level",
	"schema":    "schema_file",
	"keyspace":  "default_keyspace",
	"listen":    "server.listen",
}

func loadConfig(c *cli.Context) (*config.Config, *logger.Logger, error) {
	overrides := make(map[string]any)
	for flag, key := range flagOverrides {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.File != "" {
		log.Debug().Str("file", cfg.File).Msg("config loaded")
	}
	return cfg, log, nil
}

func setup(c *cli.Context) (*appState, error) {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	rt := &appState{cfg: cfg, log: log, metrics: metrics.NewRegistry("cqlcomplete")}

	src, err := rt.source()
	if err != nil {
		return nil, err
	}

	rt.engine, err = cqlcomplete.New(src,
		complete.WithMaxItems(cfg.MaxItems),
		complete.WithLogger(log.FieldLogger()),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// source picks the schema snapshot when one is configured, then the
// cluster, and falls back to an empty schema so keyword completion still
// works.
func (rt *appState) source() (schema.Source, error) {
	switch {
	case rt.cfg.SchemaFile != "":
		s, err := schema.LoadFromJSON(rt.cfg.SchemaFile)
		if err != nil {
			return nil, err
		}
		rt.log.Debug().Str("file", rt.cfg.SchemaFile).Int("keyspaces", len(s.Keyspaces)).Msg("schema snapshot loaded")
		rt.schema = s
		return schema.NewStaticSource(s), nil

	case rt.cfg.Cluster.Enabled():
		session, err := cluster.Connect(clusterConfig(rt.cfg))
		if err != nil {
			return nil, err
		}
		rt.session = session
		rt.log.Debug().Strs("hosts", rt.cfg.Cluster.Hosts).Msg("connected to cluster")
		return cluster.NewSource(session, rt.cfg.Cluster.Timeout), nil

	default:
		rt.log.Warn().Msg("no schema_file or cluster configured, names will not be suggested")
		return schema.NewStaticSource(nil), nil
	}
}

// fullSchema returns the schema for hovers: the snapshot, or a one-off read
// of the cluster schema. A failed read only loses object hovers.
func (rt *appState) fullSchema(ctx context.Context) *schema.Schema {
	if rt.schema != nil || rt.session == nil {
		return rt.schema
	}
	s, err := cluster.LoadSchema(ctx, rt.session, false)
	if err != nil {
		rt.log.Warn().Err(err).Msg("reading cluster schema for hovers")
		return nil
	}
	rt.schema = s
	return s
}

func clusterConfig(cfg *config.Config) cluster.Config {
	cc := cfg.Cluster
	return cluster.Config{
		Hosts:       cc.Hosts,
		Keyspace:    cc.Keyspace,
		Username:    cc.Username,
		Password:    cc.Password,
		Timeout:     cc.Timeout,
		Consistency: cc.Consistency,
	}
}
