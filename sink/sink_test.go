package sink_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"screensmith/shared"
	"screensmith/sink"
)

func TestFileSinkWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := sink.NewFileSink(dir, ".html")
	require.NoError(t, err)

	t.Run("valid result writes content and meta", func(t *testing.T) {
		res := shared.WorkerResult{ID: "login", Output: "<html>ok</html>"}
		val := &shared.ValidationResult{Valid: true, Content: "<html>ok</html>"}
		require.NoError(t, s.Write(res, val))

		content, err := os.ReadFile(filepath.Join(dir, "login.html"))
		require.NoError(t, err)
		require.Equal(t, "<html>ok</html>", string(content))

		raw, err := os.ReadFile(filepath.Join(dir, "login.meta.json"))
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		require.Equal(t, true, m["valid"])
	})

	t.Run("invalid content is still persisted", func(t *testing.T) {
		res := shared.WorkerResult{ID: "broken", Output: "<html>trunc"}
		val := &shared.ValidationResult{Valid: false, Content: "<html>trunc", Errors: []string{"missing closing marker"}}
		require.NoError(t, s.Write(res, val))

		content, err := os.ReadFile(filepath.Join(dir, "broken.html"))
		require.NoError(t, err)
		require.Equal(t, "<html>trunc", string(content))
	})

	t.Run("hard failure writes meta only", func(t *testing.T) {
		res := shared.WorkerResult{ID: "dead", Err: "timeout"}
		require.NoError(t, s.Write(res, nil))

		_, err := os.Stat(filepath.Join(dir, "dead.html"))
		require.True(t, os.IsNotExist(err))

		raw, err := os.ReadFile(filepath.Join(dir, "dead.meta.json"))
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		require.Equal(t, "timeout", m["error"])
	})
}

func TestSummarize(t *testing.T) {
	results := []shared.WorkerResult{
		{ID: "a", Output: "ok"},
		{ID: "b", Output: "chatty"},
		{ID: "c", Output: "bad"},
		{ID: "d", Err: "timeout"},
	}
	validations := []*shared.ValidationResult{
		{Valid: true},
		{Valid: true, Extracted: true},
		{Valid: false, Errors: []string{"missing opening marker"}},
		nil,
	}

	sum := sink.Summarize(results, validations)
	require.Equal(t, 1, sum.OK)
	require.Equal(t, 1, sum.Extracted)
	require.Equal(t, 1, sum.Invalid)
	require.Equal(t, 1, sum.Failed)
}
