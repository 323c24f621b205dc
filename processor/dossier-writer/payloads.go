package dossierwriter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"

	"github.com/c360studio/semdossier/document"
)

// RegisterPayloads adds the dossier save payload types to reg.
func RegisterPayloads(reg *payloadregistry.Registry) error {
	registrations := []*payloadregistry.Registration{
		{
			Domain:      "dossier",
			Category:    "save",
			Version:     "v1",
			Description: "Request to commit an edited dossier document",
			Factory:     func() any { return &SaveRequest{} },
		},
		{
			Domain:      "dossier",
			Category:    "saved",
			Version:     "v1",
			Description: "Outcome of a dossier save request",
			Factory:     func() any { return &SaveOutcome{} },
		},
	}

	var errs []error
	for _, r := range registrations {
		if err := reg.Register(r); err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", r.MessageType(), err))
		}
	}
	return errors.Join(errs...)
}

// Message types.
var (
	SaveRequestType = message.Type{Domain: "dossier", Category: "save", Version: "v1"}
	SaveOutcomeType = message.Type{Domain: "dossier", Category: "saved", Version: "v1"}
)

// SaveRequest asks for a dossier document to be committed.
type SaveRequest struct {
	RequestID string `json:"request_id"`
	// DossierID is zero for a dossier that does not exist yet.
	DossierID int64  `json:"dossier_id,omitempty"`
	Name      string `json:"name"`
	XML       string `json:"xml"`
}

// Schema returns the message type for Payload interface.
func (p *SaveRequest) Schema() message.Type { return SaveRequestType }

// Validate validates the payload for Payload interface.
func (p *SaveRequest) Validate() error {
	if p.RequestID == "" {
		return errors.New("request_id is required")
	}
	if p.DossierID == 0 && p.Name == "" {
		return errors.New("name is required for a new dossier")
	}
	if p.DossierID < 0 {
		return errors.New("dossier_id must not be negative")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *SaveRequest) MarshalJSON() ([]byte, error) {
	type Alias SaveRequest
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *SaveRequest) UnmarshalJSON(data []byte) error {
	type Alias SaveRequest
	return json.Unmarshal(data, (*Alias)(p))
}

// SaveOutcome reports the result of a save request.
type SaveOutcome struct {
	RequestID string           `json:"request_id"`
	DossierID int64            `json:"dossier_id,omitempty"`
	Graph     string           `json:"graph,omitempty"`
	Triples   int              `json:"triples"`
	Typed     int              `json:"typed"`
	Issues    []document.Issue `json:"issues,omitempty"`
	// Stage names where a failed save stopped; empty on success.
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the graph was committed.
func (p *SaveOutcome) Succeeded() bool {
	return p.Error == ""
}

// Schema returns the message type for Payload interface.
func (p *SaveOutcome) Schema() message.Type { return SaveOutcomeType }

// Validate validates the payload for Payload interface.
func (p *SaveOutcome) Validate() error {
	if p.RequestID == "" {
		return errors.New("request_id is required")
	}
	if p.Error == "" && p.Graph == "" {
		return errors.New("graph is required for a successful save")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *SaveOutcome) MarshalJSON() ([]byte, error) {
	type Alias SaveOutcome
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *SaveOutcome) UnmarshalJSON(data []byte) error {
	type Alias SaveOutcome
	return json.Unmarshal(data, (*Alias)(p))
}
