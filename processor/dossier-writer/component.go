// Package dossierwriter provides a JetStream component that commits dossier
// documents sent as save requests and publishes the outcome of each save.
package dossierwriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/payloadregistry"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semdossier/dossier"
	"github.com/c360studio/semdossier/pipeline"
	"github.com/c360studio/semdossier/store"
)

// Saver runs the dossier write path. *pipeline.Service implements it.
type Saver interface {
	Save(ctx context.Context, d *dossier.Dossier) (*pipeline.SaveResult, error)
}

// Component implements the dossier-writer processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	decoder    *message.Decoder
	saver      Saver
	logger     *slog.Logger

	// Resolved subjects from port config
	inputSubject  string
	inputStream   string
	outputSubject string

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	savesCommitted atomic.Int64
	savesRejected  atomic.Int64
	savesRetried   atomic.Int64
	publishErrors  atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// New creates a dossier-writer from a decoded configuration. payloads must
// hold the types added by RegisterPayloads.
func New(config Config, nc *natsclient.Client, payloads *payloadregistry.Registry, saver Saver, logger *slog.Logger) (*Component, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if payloads == nil {
		return nil, fmt.Errorf("payload registry required")
	}
	if saver == nil {
		return nil, fmt.Errorf("saver required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Resolve subjects from port definitions
	inputSubject := "dossier.save"
	inputStream := "DOSSIER"
	outputSubject := "dossier.saved"

	if config.Ports != nil {
		if len(config.Ports.Inputs) > 0 {
			inputSubject = config.Ports.Inputs[0].Subject
			if config.Ports.Inputs[0].StreamName != "" {
				inputStream = config.Ports.Inputs[0].StreamName
			}
		}
		if len(config.Ports.Outputs) > 0 {
			outputSubject = config.Ports.Outputs[0].Subject
		}
	}

	return &Component{
		name:          "dossier-writer",
		config:        config,
		natsClient:    nc,
		decoder:       message.NewDecoder(payloads),
		saver:         saver,
		logger:        logger,
		inputSubject:  inputSubject,
		inputStream:   inputStream,
		outputSubject: outputSubject,
	}, nil
}

// NewFactory returns a component factory bound to saver.
func NewFactory(saver Saver) func(json.RawMessage, component.Dependencies) (component.Discoverable, error) {
	return func(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
		config := DefaultConfig()
		if len(rawConfig) > 0 {
			if err := json.Unmarshal(rawConfig, &config); err != nil {
				return nil, fmt.Errorf("unmarshal config: %w", err)
			}
		}
		return New(config, deps.NATSClient, deps.PayloadRegistry, saver, deps.GetLoggerWithComponent("dossier-writer"))
	}
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming save requests.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	// Set running state while holding lock to prevent race condition
	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  c.config.ConsumerName,
		FilterSubject: c.inputSubject,
		DeliverPolicy: "all",
		AckPolicy:     "explicit",
		MaxDeliver:    c.config.GetMaxDeliver(),
		AckWait:       c.config.GetAckWait(),
	}

	err := c.natsClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, c.handleMessage)
	if err != nil {
		// Rollback running state on failure
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("dossier-writer started",
		"input", c.inputSubject,
		"stream", c.inputStream,
		"output", c.outputSubject)

	return nil
}

// disposition is what happens to a delivered request after processing.
type disposition int

const (
	ack disposition = iota
	nak
	term
)

// handleMessage processes a single save request.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	outcome, disp := c.process(ctx, msg.Data())
	c.updateLastActivity()

	if outcome != nil && disp != nak {
		if err := c.publish(ctx, outcome); err != nil {
			c.logger.Warn("Failed to publish save outcome",
				"request_id", outcome.RequestID,
				"subject", c.outputSubject,
				"error", err)
			c.publishErrors.Add(1)
		}
	}

	switch disp {
	case ack:
		_ = msg.Ack()
	case nak:
		_ = msg.Nak()
	case term:
		_ = msg.Term()
	}
}

// process decodes and runs one request. Requests that cannot succeed on
// redelivery are acknowledged with a failure outcome; transient commit
// failures are redelivered.
func (c *Component) process(ctx context.Context, data []byte) (*SaveOutcome, disposition) {
	baseMsg, err := c.decoder.Decode(data)
	if err != nil {
		c.logger.Warn("Failed to decode base message", "error", err)
		c.savesRejected.Add(1)
		return nil, term
	}

	req, ok := baseMsg.Payload().(*SaveRequest)
	if !ok {
		c.logger.Warn("Payload is not a save request", "type", baseMsg.Type())
		c.savesRejected.Add(1)
		return nil, term
	}
	if err := req.Validate(); err != nil {
		c.savesRejected.Add(1)
		return &SaveOutcome{RequestID: req.RequestID, DossierID: req.DossierID, Stage: "request", Error: err.Error()}, ack
	}

	d := &dossier.Dossier{ID: req.DossierID, Name: req.Name, XML: req.XML}
	res, err := c.saver.Save(ctx, d)
	if err != nil {
		outcome := &SaveOutcome{
			RequestID: req.RequestID,
			DossierID: d.ID,
			Stage:     pipeline.Stage(err),
			Error:     err.Error(),
		}
		if errors.Is(err, store.ErrCommit) && !errors.Is(err, store.ErrInvalidGraph) {
			c.savesRetried.Add(1)
			c.logger.Warn("Dossier commit failed, requesting redelivery",
				"request_id", req.RequestID,
				"dossier_id", d.ID,
				"error", err)
			return outcome, nak
		}
		c.savesRejected.Add(1)
		return outcome, ack
	}

	c.savesCommitted.Add(1)
	c.logger.Debug("Dossier committed",
		"request_id", req.RequestID,
		"dossier_id", d.ID,
		"graph", res.Graph,
		"triples", res.Triples)

	return &SaveOutcome{
		RequestID: req.RequestID,
		DossierID: d.ID,
		Graph:     res.Graph,
		Triples:   res.Triples,
		Typed:     res.Report.Typed,
		Issues:    res.Issues,
	}, ack
}

func (c *Component) publish(ctx context.Context, outcome *SaveOutcome) error {
	baseMsg := message.NewBaseMessage(SaveOutcomeType, outcome, c.name)
	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	return c.natsClient.PublishToStream(ctx, c.outputSubject, data)
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("dossier-writer stopped",
		"committed", c.savesCommitted.Load(),
		"rejected", c.savesRejected.Load(),
		"retried", c.savesRetried.Load(),
		"publish_errors", c.publishErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "dossier-writer",
		Type:        "processor",
		Description: "Commits edited dossier documents as typed named graphs",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return writerSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.savesRetried.Load() + c.publishErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		LastActivity: c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
