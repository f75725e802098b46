package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"screensmith/shared"
)

// FileSink persists each task's best-available content plus a metadata
// sidecar. Invalid output is written too; a failed validation still yields
// content worth salvaging by hand.
type FileSink struct {
	Dir string
	Ext string
}

func NewFileSink(dir string, ext string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sink directory: %w", err)
	}
	if ext == "" {
		ext = ".html"
	}
	return &FileSink{Dir: dir, Ext: ext}, nil
}

type meta struct {
	ID        string   `json:"id"`
	Err       string   `json:"error,omitempty"`
	Valid     bool     `json:"valid"`
	Extracted bool     `json:"extracted,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// Write stores one result pair. The validation result may be nil for tasks
// whose invocation already failed hard.
func (s *FileSink) Write(res shared.WorkerResult, val *shared.ValidationResult) error {
	m := meta{ID: res.ID, Err: res.Err}
	content := res.Output
	if val != nil {
		m.Valid = val.Valid
		m.Extracted = val.Extracted
		m.Errors = val.Errors
		content = val.Content
	}

	if content != "" {
		path := filepath.Join(s.Dir, res.ID+s.Ext)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write content for %s: %w", res.ID, err)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta for %s: %w", res.ID, err)
	}
	metaPath := filepath.Join(s.Dir, res.ID+".meta.json")
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("write meta for %s: %w", res.ID, err)
	}
	return nil
}

// Summary aggregates batch results for the operator report.
type Summary struct {
	OK        int
	Extracted int
	Invalid   int
	Failed    int
}

func Summarize(results []shared.WorkerResult, validations []*shared.ValidationResult) Summary {
	var sum Summary
	for i, res := range results {
		switch {
		case res.Failed():
			sum.Failed++
		case i < len(validations) && validations[i] != nil && !validations[i].Valid:
			sum.Invalid++
		case i < len(validations) && validations[i] != nil && validations[i].Extracted:
			sum.Extracted++
		default:
			sum.OK++
		}
	}
	return sum
}

func (s Summary) Log() {
	log.Info().
		Int("ok", s.OK).
		Int("extracted", s.Extracted).
		Int("invalid", s.Invalid).
		Int("failed", s.Failed).
		Msg("batch summary")
}
