package dossierwriter

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the dossier-writer component with the given registry.
func Register(registry RegistryInterface, saver Saver) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "dossier-writer",
		Factory:     NewFactory(saver),
		Schema:      writerSchema,
		Type:        "processor",
		Protocol:    "dossier",
		Domain:      "dossier",
		Description: "Commits edited dossier documents as typed named graphs",
		Version:     "1.0.0",
	})
}
