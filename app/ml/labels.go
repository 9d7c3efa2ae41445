package ml

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type labelsFile struct {
	Labels []string `yaml:"labels"`
}

// LoadLabels reads the candidate label list for auto tagging from a YAML
// file of the form:
//
//	labels:
//	  - recipes
//	  - anime
//
// A missing file is not an error; it disables auto tagging.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	var parsed labelsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse labels file: %w", err)
	}

	var labels []string
	for _, label := range parsed.Labels {
		label = strings.TrimSpace(label)
		if label != "" {
			labels = append(labels, label)
		}
	}

	return labels, nil
}
