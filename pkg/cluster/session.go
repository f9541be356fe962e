// Package cluster reads schema metadata from a live Cassandra or ScyllaDB
// cluster through the gocql driver.
package cluster

import (
	"fmt"
	"strings"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
)

// Config holds the connection settings.
type Config struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	Consistency string
}

var consistencies = map[string]gocql.Consistency{
	"ANY":          gocql.Any,
	"ONE":          gocql.One,
	"TWO":          gocql.Two,
	"THREE":        gocql.Three,
	"QUORUM":       gocql.Quorum,
	"ALL":          gocql.All,
	"LOCAL_QUORUM": gocql.LocalQuorum,
	"EACH_QUORUM":  gocql.EachQuorum,
	"LOCAL_ONE":    gocql.LocalOne,
}

// Connect opens a session. Schema reads are small, so one timeout covers
// both connecting and querying.
func Connect(cfg Config) (*gocql.Session, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("cluster: no hosts configured")
	}

	c := gocql.NewCluster(cfg.Hosts...)
	c.Keyspace = cfg.Keyspace
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
		c.ConnectTimeout = cfg.Timeout
	}
	if cfg.Consistency != "" {
		cons, ok := consistencies[strings.ToUpper(cfg.Consistency)]
		if !ok {
			return nil, fmt.Errorf("cluster: unknown consistency %q", cfg.Consistency)
		}
		c.Consistency = cons
	}
	if cfg.Username != "" {
		c.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	session, err := c.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cluster: connecting to %s: %w", strings.Join(cfg.Hosts, ","), err)
	}
	return session, nil
}

// rowIter is the part of *gocql.Iter the package reads rows through.
type rowIter interface {
	Scan(dest ...interface{}) bool
	Close() error
}

// querier runs one statement. It is satisfied by sessionQuerier in
// production and by fakes in tests.
type querier interface {
	query(stmt string, args ...interface{}) rowIter
}

type sessionQuerier struct {
	session *gocql.Session
}

func (q sessionQuerier) query(stmt string, args ...interface{}) rowIter {
	return q.session.Query(stmt, args...).Iter()
}
