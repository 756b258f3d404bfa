package output

import (
	"encoding/json"
	"fmt"

	"github.com/tribgo/tribgo/internal/domain"
)

// JSONFormatter renders a run as indented JSON.
type JSONFormatter struct{}

// Format marshals the full calculation run.
func (jf *JSONFormatter) Format(run *domain.CalculationRun) (string, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	return string(data), nil
}
