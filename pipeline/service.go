package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semdossier/block"
	"github.com/c360studio/semdossier/document"
	"github.com/c360studio/semdossier/dossier"
	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/reconcile"
	"github.com/c360studio/semdossier/store"
)

// Config holds the save-path settings.
type Config struct {
	// BaseURI prefixes named-graph IRIs.
	BaseURI string
	// Namespaces are stripped from documents before parsing and storage.
	Namespaces []string
	// StrictValidation refuses documents with validation issues.
	StrictValidation bool
	RangePolicy      reconcile.RangePolicy
	LexicalPolicy    reconcile.LexicalPolicy
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		BaseURI:       "http://wise10.vub.ac.be",
		Namespaces:    document.DefaultNamespaces,
		RangePolicy:   reconcile.RangeFirst,
		LexicalPolicy: reconcile.LexicalStrict,
	}
}

// SaveResult describes a committed document.
type SaveResult struct {
	Dossier *dossier.Dossier `json:"dossier"`
	// Graph is the named-graph IRI that was replaced.
	Graph   string `json:"graph"`
	Triples int    `json:"triples"`
	// NTriples renders the committed graph.
	NTriples string           `json:"ntriples"`
	Issues   []document.Issue `json:"issues,omitempty"`
	Report   reconcile.Report `json:"report"`
}

// Service answers palette reads and runs document saves.
type Service struct {
	catalog     *block.Catalog
	transformer *document.Transformer
	validator   *document.Validator
	committer   *store.Committer
	records     dossier.Repository
	cfg         Config
	metrics     *Metrics
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records save outcomes.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a service. A nil transformer uses the built-in mapping.
func New(catalog *block.Catalog, transformer *document.Transformer, committer *store.Committer,
	records dossier.Repository, cfg Config, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		committer: committer,
		records:   records,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if transformer == nil {
		transformer = document.NewTransformer(nil, s.logger)
	}
	s.transformer = transformer
	s.validator = document.NewValidator(catalog, transformer.Mapping())
	if len(s.cfg.Namespaces) == 0 {
		s.cfg.Namespaces = document.DefaultNamespaces
	}
	return s
}

// Catalog returns the block catalog backing palette reads.
func (s *Service) Catalog() *block.Catalog {
	return s.catalog
}

// NewSession starts an editor session with its own block selection.
func (s *Service) NewSession() *block.Session {
	return block.NewSession(s.catalog)
}

// BlockNames lists the names a domain concept can be composed of: each
// report name followed by the messages of its descendants, then the names
// of the stored domain concepts.
func (s *Service) BlockNames(ctx context.Context) ([]string, error) {
	reports, err := s.catalog.RootBlockTypes()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, r := range reports {
		names = append(names, r.Name)
		children, err := s.catalog.ResolveChildren(r.Type, true)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			names = append(names, c.Message)
		}
	}

	concepts, err := s.records.Concepts(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range concepts {
		names = append(names, c.Name)
	}
	return names, nil
}

// Create stores a new dossier with its default document.
func (s *Service) Create(ctx context.Context, name string) (*dossier.Dossier, error) {
	d := &dossier.Dossier{Name: name}
	if err := s.records.SaveDossier(ctx, d); err != nil {
		return nil, err
	}
	d.URL = dossier.GraphURI(s.cfg.BaseURI, d.ID)
	d.XML = dossier.DefaultXML(d, s.cfg.BaseURI)
	if err := s.records.SaveDossier(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("Dossier created", "id", d.ID, "name", d.Name)
	return d, nil
}

// Open loads a dossier for editing, filling in the default document when it
// has none.
func (s *Service) Open(ctx context.Context, id int64) (*dossier.Dossier, error) {
	d, err := s.records.Dossier(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.XML == "" {
		d.XML = dossier.DefaultXML(d, s.cfg.BaseURI)
	}
	return d, nil
}

// Delete removes a dossier record and its named graph.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.records.DeleteDossier(ctx, id); err != nil {
		return err
	}
	return s.committer.Store().DropGraph(ctx, dossier.GraphURI(s.cfg.BaseURI, id))
}

// Graph returns the committed graph of a dossier.
func (s *Service) Graph(ctx context.Context, id int64) (*graph.Graph, error) {
	return s.committer.Store().Graph(ctx, dossier.GraphURI(s.cfg.BaseURI, id))
}

// Save runs d.XML through the write path and replaces the dossier's named
// graph. A dossier without an ID is inserted first to obtain one and removed
// again when the save fails.
//
// Errors match document.ErrTransform, document.ErrValidation,
// reconcile.ErrReconcile or store.ErrCommit by stage. The dossier record is
// updated only after a successful commit.
func (s *Service) Save(ctx context.Context, d *dossier.Dossier) (*SaveResult, error) {
	res, err := s.save(ctx, d)
	s.metrics.result(Stage(err))
	if err != nil {
		s.logger.Error("Dossier save failed", "id", d.ID, "error", err)
		return nil, err
	}
	s.logger.Info("Dossier saved",
		"id", d.ID,
		"graph", res.Graph,
		"triples", res.Triples,
		"typed", res.Report.Typed,
		"issues", len(res.Issues))
	return res, nil
}

func (s *Service) save(ctx context.Context, d *dossier.Dossier) (_ *SaveResult, err error) {
	if d.ID == 0 {
		if err := s.records.SaveDossier(ctx, d); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				s.discard(ctx, d)
			}
		}()
	}
	name := dossier.GraphURI(s.cfg.BaseURI, d.ID)

	raw := d.XML
	if raw == "" {
		raw = dossier.DefaultXML(d, s.cfg.BaseURI)
	}

	doc, err := document.Parse(raw, s.cfg.Namespaces)
	if err != nil {
		return nil, err
	}
	s.bindIdentity(doc, d.ID, name)

	issues, err := s.validator.Validate(doc)
	if err != nil {
		return nil, err
	}
	s.metrics.validated(len(issues))
	for _, is := range issues {
		s.logger.Warn("Document validation issue",
			"dossier", d.ID,
			"block", is.BlockID,
			"type", is.BlockType,
			"field", is.Field,
			"reason", is.Reason)
	}
	if s.cfg.StrictValidation && len(issues) > 0 {
		return nil, &document.ValidationError{Issues: issues}
	}

	candidate, err := s.transformer.Transform(doc)
	if err != nil {
		return nil, err
	}

	resolver, err := s.catalog.Resolver()
	if err != nil {
		return nil, err
	}
	typed, report, err := reconcile.New(resolver.Snapshot(),
		reconcile.WithRangePolicy(s.cfg.RangePolicy),
		reconcile.WithLexicalPolicy(s.cfg.LexicalPolicy),
		reconcile.WithLogger(s.logger),
	).Reconcile(candidate.Graph)
	if err != nil {
		return nil, err
	}
	s.metrics.reconciled(report.Typed)

	if err := s.committer.Commit(ctx, name, typed); err != nil {
		return nil, err
	}

	d.URL = name
	d.XML = document.Normalize(raw, s.cfg.Namespaces)
	if err := s.records.SaveDossier(ctx, d); err != nil {
		return nil, fmt.Errorf("graph %s committed but dossier record not saved: %w", name, err)
	}

	preview, err := graph.NTriples(typed)
	if err != nil {
		return nil, err
	}
	return &SaveResult{
		Dossier:  d,
		Graph:    name,
		Triples:  typed.Len(),
		NTriples: preview,
		Issues:   issues,
		Report:   report,
	}, nil
}

// discard removes a dossier inserted by a save that then failed, so the
// failure leaves no record behind. A graph committed before the failure is
// dropped with it.
func (s *Service) discard(ctx context.Context, d *dossier.Dossier) {
	ctx = context.WithoutCancel(ctx)
	id := d.ID
	if err := s.records.DeleteDossier(ctx, id); err != nil {
		s.logger.Warn("Failed to discard dossier record", "id", id, "error", err)
		return
	}
	if err := s.committer.Store().DropGraph(ctx, dossier.GraphURI(s.cfg.BaseURI, id)); err != nil {
		s.logger.Warn("Failed to drop graph of discarded dossier", "id", id, "error", err)
	}
	d.ID = 0
	d.URL = ""
}

// bindIdentity makes the root block carry the dossier's graph IRI, the
// subject every root statement is minted on.
func (s *Service) bindIdentity(doc *document.Document, id int64, name string) {
	m := s.transformer.Mapping()
	root := doc.Root(m.RootType)
	if root == nil {
		return
	}
	if current, ok := root.Field(m.SubjectField); ok && current != "" && current != name {
		s.logger.Warn("Document identity does not match dossier, rebinding",
			"dossier", id,
			"document", current,
			"graph", name)
	}
	root.SetField(m.SubjectField, name)
}

// SaveConcept normalizes and stores a domain concept.
func (s *Service) SaveConcept(ctx context.Context, c *dossier.DomainConcept) error {
	if c.XML == "" {
		c.XML = dossier.DefaultConceptXML
	}
	c.XML = document.Normalize(c.XML, s.cfg.Namespaces)
	return s.records.SaveConcept(ctx, c)
}

// ConceptPalette returns the stored domain concepts as editor lists.
func (s *Service) ConceptPalette(ctx context.Context) (dossier.ConceptPalette, error) {
	concepts, err := s.records.Concepts(ctx)
	if err != nil {
		return dossier.ConceptPalette{}, err
	}
	return dossier.PaletteOf(concepts), nil
}

// Stage names the write-path step an error came from.
func Stage(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, document.ErrTransform):
		return "transform_failed"
	case errors.Is(err, document.ErrValidation):
		return "invalid"
	case errors.Is(err, reconcile.ErrReconcile):
		return "reconcile_failed"
	case errors.Is(err, store.ErrCommit):
		return "commit_failed"
	default:
		return "error"
	}
}
