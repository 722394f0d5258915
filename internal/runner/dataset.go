// Package runner composes the judge client and the metrics engine: it runs
// a judge over a labeled dataset with bounded concurrency and scores the
// agreement between predictions and ground truth.
package runner

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-verdict/internal/domain"
)

// Sample is one labeled question/response pair from an evaluation dataset.
type Sample struct {
	// Question is the question that was asked.
	Question string `yaml:"question" json:"question" validate:"required"`

	// Response is the AI-generated response under evaluation.
	Response string `yaml:"response" json:"response" validate:"required"`

	// Label is the ground-truth verdict assigned by a human rater.
	Label domain.Verdict `yaml:"label" json:"label" validate:"required,oneof=pass fail"`
}

// Dataset is a labeled evaluation set.
type Dataset struct {
	// Name identifies the dataset in reports and metric labels.
	Name string `yaml:"name" json:"name"`

	// Samples are the labeled pairs to judge.
	Samples []Sample `yaml:"samples" json:"samples" validate:"required,min=1,dive"`
}

// LoadDataset reads and validates a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes and validates YAML dataset content.
func ParseDataset(data []byte) (Dataset, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset: %w", err)
	}

	if err := validator.New().Struct(dataset); err != nil {
		return Dataset{}, fmt.Errorf("invalid dataset: %w", err)
	}

	return dataset, nil
}
