//go:build unit

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "vendor_id,pickup,dropoff,passengers,distance,rate,flag,pu,do,payment,fare,extra,tax,tip,tolls,surcharge,total,index"

func row(index, total, dest string) string {
	return strings.Join([]string{
		"1", "2020-01-01 00:00:00", "2020-01-01 00:10:00", "1", "2.5", "1", "N",
		"100", dest, "1", "8", "0.5", "0.5", "1", "0", "0.3", total, index,
	}, ",")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	// Prepare
	work := t.TempDir()
	t.Chdir(work)
	t.Setenv("TRIPINDEX_INDEX_DIR", filepath.Join(work, "index"))
	lines := []string{header, row("1", "10.0", "A"), row("2", "20.0", "A"), row("3", "30.0", "B")}
	source := filepath.Join(work, "trips.csv")
	require.NoError(t, os.WriteFile(source, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	t.Run("build", func(t *testing.T) {
		out, err := run(t, "build", source)
		require.NoError(t, err)
		assert.Contains(t, out, "indexed 3 records")
	})

	t.Run("lookup", func(t *testing.T) {
		out, err := run(t, "lookup", "3")
		require.NoError(t, err)
		assert.Contains(t, out, `"total_amount": 30`)

		_, err = run(t, "lookup", "nope")
		assert.ErrorContains(t, err, "no record")
	})

	t.Run("filter", func(t *testing.T) {
		dest := filepath.Join(work, "out", "cheap.csv")
		out, err := run(t, "filter", source, dest, "--where", "total <= 20", "--max", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "wrote 2 records")
		assert.FileExists(t, dest)
	})

	t.Run("stats", func(t *testing.T) {
		out, err := run(t, "stats", source, "--where", `dest == "A"`)
		require.NoError(t, err)
		assert.Contains(t, out, `"count": 2`)
	})

	t.Run("top", func(t *testing.T) {
		out, err := run(t, "top", source, "--limit", "1")
		require.NoError(t, err)
		assert.Equal(t, "1\tA\t2\n", out)
	})

	t.Run("report", func(t *testing.T) {
		out, err := run(t, "report", source)
		require.NoError(t, err)
		assert.Contains(t, out, `"destinations"`)
		assert.Contains(t, out, `"count": 3`)
	})

	t.Run("lookup adopts the layout the index was built with", func(t *testing.T) {
		// Prepare
		dir := filepath.Join(work, "crc32-index")
		t.Setenv("TRIPINDEX_INDEX_HASH", "crc32")
		t.Setenv("TRIPINDEX_INDEX_CODEC", "cbor")
		t.Setenv("TRIPINDEX_INDEX_BUCKETS", "64")
		_, err := run(t, "build", source, "--dir", dir)
		require.NoError(t, err)
		t.Setenv("TRIPINDEX_INDEX_HASH", "")
		t.Setenv("TRIPINDEX_INDEX_CODEC", "")
		t.Setenv("TRIPINDEX_INDEX_BUCKETS", "0")

		// Execute
		out, err := run(t, "lookup", "2", "--dir", dir)

		// Check
		require.NoError(t, err)
		assert.Contains(t, out, `"total_amount": 20`)
		manifest, err := os.ReadFile(filepath.Join(dir, "table.json"))
		require.NoError(t, err)
		assert.Contains(t, string(manifest), `"crc32"`)
		assert.FileExists(t, filepath.Join(dir, "bucket_063.cbor"))
	})

	t.Run("lookup in a directory without an index", func(t *testing.T) {
		_, err := run(t, "lookup", "1", "--dir", filepath.Join(work, "typo"))
		assert.ErrorContains(t, err, "not an index directory")
		assert.NoDirExists(t, filepath.Join(work, "typo"))
	})

	t.Run("bad filter", func(t *testing.T) {
		_, err := run(t, "stats", source, "--where", "fare > 3")
		assert.Error(t, err)
	})
}
