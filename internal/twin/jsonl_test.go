package twin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := openTestStore(t)
	ada, err := src.Insert("people", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	acme, err := src.Insert("companies", map[string]any{"name": "Acme", "tags": []any{"b2b"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.jsonl")
	require.NoError(t, src.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)

	dst := openTestStore(t)
	n, err := dst.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.Get("people", ada["id"].(int64))
	require.NoError(t, err)
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, 1700000000.0, got["date_created"])

	got, err = dst.Get("companies", acme["id"].(int64))
	require.NoError(t, err)
	assert.Equal(t, []any{"b2b"}, got["tags"])

	next, err := dst.Insert("people", map[string]any{"name": "Grace"})
	require.NoError(t, err)
	assert.Greater(t, next["id"].(int64), acme["id"].(int64), "new ids follow imported ones")
}

func TestImportSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonl")
	content := strings.Join([]string{
		`{"collection":"people","id":7,"record":{"name":"Ada"}}`,
		``,
		`{not json`,
		`{"collection":"widgets","id":8,"record":{"name":"x"}}`,
		`{"collection":"leads","id":0,"record":{"name":"no id"}}`,
		`{"collection":"leads","id":9,"record":{"name":"Lead","id":1234}}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := openTestStore(t)
	n, err := s.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get("leads", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got["id"], "the line id wins over the record's")

	_, err = s.Import(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
