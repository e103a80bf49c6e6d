package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[[sources]]
name = "edgeryders"
host = "localhost"
port = 5432
dbname = "discourse_backup"
user = "reader"
password = "secret"

[[sources]]
name = "captainfact"
host = "db.internal"
dbname = "cf_backup"
user = "reader"
password = "secret"

[redaction]
omit_private_messages = true
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "edgeryders", m.Sources[0].Name)
	assert.Equal(t, 5432, m.Sources[0].Port)
	assert.True(t, m.Redaction.OmitPrivateMessages)
	assert.False(t, m.Redaction.OmitProtectedContent)
}

func TestLoadManifest_NoSources(t *testing.T) {
	path := writeManifest(t, `[redaction]`)
	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_MissingName(t *testing.T) {
	path := writeManifest(t, `
[[sources]]
host = "localhost"
dbname = "x"
`)
	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_DuplicateName(t *testing.T) {
	path := writeManifest(t, `
[[sources]]
name = "edgeryders"

[[sources]]
name = "edgeryders"
`)
	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSourceConnString(t *testing.T) {
	s := Source{Name: "edgeryders", Host: "localhost", Port: 5433, DBName: "backup", User: "reader", Password: "secret"}
	assert.Equal(t,
		"host=localhost port=5433 user=reader password=secret dbname=backup sslmode=prefer",
		s.ConnString(),
	)

	// Port defaults to the PostgreSQL standard.
	s.Port = 0
	assert.Contains(t, s.ConnString(), "port=5432")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
		ChunkSize:     1000,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Neo4jURI = ""
	assert.Error(t, missing.Validate())

	badChunk := valid
	badChunk.ChunkSize = 0
	assert.Error(t, badChunk.Validate())
}

func TestEnvModes(t *testing.T) {
	assert.True(t, (&Config{Env: "development"}).IsDevelopment())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.True(t, (&Config{Env: "production"}).IsProduction())
}
