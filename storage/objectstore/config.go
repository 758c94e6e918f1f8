package objectstore

import "github.com/c360/workplan/errors"

// Config holds configuration for the ObjectStore backend.
type Config struct {
	// Bucket is the JetStream ObjectStore bucket name.
	Bucket string `json:"bucket"`

	// Description is stored on the bucket for operator visibility.
	Description string `json:"description,omitempty"`

	// Replicas is the JetStream replica count (1 for single-node).
	Replicas int `json:"replicas,omitempty"`
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		Bucket:      "WORKPLAN",
		Description: "Client and workload documents",
		Replicas:    1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.WrapDependency(nil, "objectstore", "Validate", "bucket name cannot be empty")
	}
	if c.Replicas < 0 {
		return errors.WrapDependency(nil, "objectstore", "Validate", "replicas cannot be negative")
	}
	return nil
}
