package dossierwriter

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// writerSchema defines the configuration schema.
var writerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the dossier-writer component.
type Config struct {
	Ports        *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	ConsumerName string                `json:"consumer_name" schema:"type:string,description:Durable consumer name,category:advanced,default:dossier-writer"`
	MaxDeliver   int                   `json:"max_deliver" schema:"type:int,description:Delivery attempts for a save request,category:advanced,default:3"`
	AckWait      string                `json:"ack_wait" schema:"type:string,description:Time allowed to process one save,category:advanced,default:30s"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxDeliver < 0 {
		return fmt.Errorf("max_deliver must be >= 0")
	}
	if c.AckWait != "" {
		d, err := time.ParseDuration(c.AckWait)
		if err != nil {
			return fmt.Errorf("invalid ack_wait: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("ack_wait must be positive")
		}
	}
	if c.Ports != nil {
		if len(c.Ports.Inputs) > 0 && c.Ports.Inputs[0].Subject == "" {
			return fmt.Errorf("input port subject is required")
		}
		if len(c.Ports.Outputs) > 0 && c.Ports.Outputs[0].Subject == "" {
			return fmt.Errorf("output port subject is required")
		}
	}
	return nil
}

// GetAckWait returns the ack wait with a default fallback.
func (c *Config) GetAckWait() time.Duration {
	if d, err := time.ParseDuration(c.AckWait); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// GetMaxDeliver returns the delivery limit with a default fallback.
func (c *Config) GetMaxDeliver() int {
	if c.MaxDeliver > 0 {
		return c.MaxDeliver
	}
	return 3
}

// DefaultConfig returns the default configuration for dossier-writer.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "saves_in",
					Type:        "jetstream",
					Subject:     "dossier.save",
					StreamName:  "DOSSIER",
					Required:    true,
					Description: "Edited dossier documents to commit",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "saved_out",
					Type:        "jetstream",
					Subject:     "dossier.saved",
					StreamName:  "DOSSIER",
					Required:    true,
					Description: "Outcome of every save request",
				},
			},
		},
		ConsumerName: "dossier-writer",
		MaxDeliver:   3,
		AckWait:      "30s",
	}
}
