package output

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML writes data as a single YAML document
func YAML(data interface{}) error {
	enc := yaml.NewEncoder(Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
