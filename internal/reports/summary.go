package reports

import (
	"fmt"
	"io"

	"github.com/alimgiray/gdocscope/internal/models"
	"gopkg.in/yaml.v3"
)

// YAMLReporter writes the whole analysis as a single YAML document
type YAMLReporter struct {
	out io.Writer
}

func NewYAMLReporter(out io.Writer) *YAMLReporter {
	return &YAMLReporter{out: out}
}

func (r *YAMLReporter) Report(analysis *models.Analysis) error {
	encoder := yaml.NewEncoder(r.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(analysis); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return encoder.Close()
}
