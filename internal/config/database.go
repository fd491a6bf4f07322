package config

import (
	"github.com/ict4events/eventsite/internal/db"
)

type Database struct {
	DBType       string `yaml:"db_type"`
	ConnString   string `yaml:"conn_string"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	// Procedures maps procedure names to SQL bodies for SQLite, which has no
	// stored procedures of its own.
	Procedures map[string]string `yaml:"procedures,omitempty"`
}

// Type returns the configured db_type or the one inferred from the
// connection string.
func (d Database) Type() string {
	if d.DBType != "" {
		return d.DBType
	}
	return db.InferDBType(d.DSN())
}

// DSN returns the connection string with ${VAR} references expanded.
func (d Database) DSN() string {
	return expandEnv(d.ConnString)
}

func (d Database) Connector() (*db.BaseConnector, error) {
	return db.CreateConnector(d.Type(), d.DSN(), db.Options{
		MaxOpenConns: d.MaxOpenConns,
		Procedures:   d.Procedures,
	})
}

// SetProcedure adds or replaces a catalogue entry and saves the config.
func (c *Config) SetProcedure(name, body string) error {
	if c.Database.Procedures == nil {
		c.Database.Procedures = make(map[string]string)
	}
	c.Database.Procedures[name] = body
	return c.Save()
}
