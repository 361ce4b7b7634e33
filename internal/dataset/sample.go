package dataset

import (
	_ "embed"
	"fmt"
)

//go:embed sample/sadc.yaml
var sampleYAML []byte

// Sample returns the embedded SADC sample dataset
func Sample() (*Model, error) {
	m, err := ParseYAML(sampleYAML)
	if err != nil {
		return nil, fmt.Errorf("load embedded sample: %w", err)
	}
	return m, nil
}
