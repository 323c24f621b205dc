// Package reconcile types the literals of a candidate graph with the ranges
// the ontology declares for their predicates.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/vocabulary/dossier"
	"github.com/cayleygraph/quad"
)

// ErrReconcile is returned when a graph cannot be typed.
var ErrReconcile = errors.New("literal reconciliation failed")

// RangePolicy decides what happens when a predicate declares several ranges.
type RangePolicy string

const (
	// RangeFirst uses the first declared range in ontology load order.
	RangeFirst RangePolicy = "first"
	// RangeReject fails the reconciliation.
	RangeReject RangePolicy = "reject"
)

// LexicalPolicy decides whether literal values are checked against their
// new datatype.
type LexicalPolicy string

const (
	// LexicalStrict rejects values that are not valid for a numeric or
	// boolean datatype.
	LexicalStrict LexicalPolicy = "strict"
	// LexicalLenient types every value as found.
	LexicalLenient LexicalPolicy = "lenient"
)

// Ranges looks up the declared ranges of a property. *ontology.Snapshot
// implements it.
type Ranges interface {
	Ranges(property string) []string
}

// LiteralError describes one literal that could not be typed.
type LiteralError struct {
	Subject   string
	Predicate string
	Value     string
	Datatype  string
	Reason    string
}

func (e LiteralError) String() string {
	return fmt.Sprintf("%s %s %q: %s", e.Subject, e.Predicate, e.Value, e.Reason)
}

// Error collects every literal problem of one reconciliation.
type Error struct {
	Problems []LiteralError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%d literal(s) rejected: %s", len(e.Problems), strings.Join(parts, "; "))
}

// Is makes an Error match ErrReconcile.
func (e *Error) Is(target error) bool {
	return target == ErrReconcile
}

// Report summarizes a reconciliation.
type Report struct {
	// Typed counts literals that received a datatype.
	Typed int
	// Normalized counts typed literals whose lexical form changed.
	Normalized int
	// Untouched counts literals whose predicate declares no range.
	Untouched int
	// Ambiguous lists predicates with more than one range.
	Ambiguous []string
}

// Reconciler types literals. It is stateless and safe for concurrent use.
type Reconciler struct {
	ranges      Ranges
	rangePolicy RangePolicy
	lexical     LexicalPolicy
	logger      *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRangePolicy sets the multiple-range policy.
func WithRangePolicy(p RangePolicy) Option {
	return func(r *Reconciler) { r.rangePolicy = p }
}

// WithLexicalPolicy sets the lexical checking policy.
func WithLexicalPolicy(p LexicalPolicy) Option {
	return func(r *Reconciler) { r.lexical = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// New creates a reconciler reading ranges from ranges.
func New(ranges Ranges, opts ...Option) *Reconciler {
	r := &Reconciler{
		ranges:      ranges,
		rangePolicy: RangeFirst,
		lexical:     LexicalStrict,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile returns a copy of g in which every literal whose predicate
// declares a range is typed with that range. g itself is not modified.
// Replacements are collected first and applied while building the result,
// so the output keeps the input order. On error no graph is returned.
func (r *Reconciler) Reconcile(g *graph.Graph) (*graph.Graph, Report, error) {
	var report Report
	var problems []LiteralError
	ambiguous := make(map[string]bool)

	triples := g.Triples()
	replace := make(map[int]graph.Triple)
	for i, t := range triples {
		if !graph.IsLiteral(t.Object) {
			continue
		}
		pred, ok := graph.IRIOf(t.Predicate)
		if !ok {
			continue
		}
		ranges := r.ranges.Ranges(pred)
		if len(ranges) == 0 {
			report.Untouched++
			continue
		}
		subj := graph.Key(t.Subject)
		lexical, _ := graph.Lexical(t.Object)

		if len(ranges) > 1 {
			if !ambiguous[pred] {
				ambiguous[pred] = true
				report.Ambiguous = append(report.Ambiguous, pred)
				if r.rangePolicy != RangeReject {
					r.logger.Warn("Predicate declares several ranges, using the first",
						"predicate", pred,
						"ranges", ranges)
				}
			}
			if r.rangePolicy == RangeReject {
				problems = append(problems, LiteralError{
					Subject: subj, Predicate: pred, Value: lexical,
					Reason: fmt.Sprintf("predicate declares %d ranges", len(ranges)),
				})
				continue
			}
		}

		datatype := ranges[0]
		value, err := normalize(datatype, lexical)
		if err != nil && r.lexical != LexicalLenient {
			problems = append(problems, LiteralError{
				Subject: subj, Predicate: pred, Value: lexical, Datatype: datatype,
				Reason: err.Error(),
			})
			continue
		}
		if err != nil {
			value = lexical
		}

		typed := quad.TypedString{Value: quad.String(value), Type: quad.IRI(datatype)}
		report.Typed++
		if value != lexical {
			report.Normalized++
		}
		if graph.Key(typed) == graph.Key(t.Object) {
			continue
		}
		replace[i] = graph.Triple{Subject: t.Subject, Predicate: t.Predicate, Object: typed}
	}

	if len(problems) > 0 {
		return nil, report, &Error{Problems: problems}
	}

	out := graph.New()
	for i, t := range triples {
		if nt, ok := replace[i]; ok {
			t = nt
		}
		out.Add(t)
	}
	return out, report, nil
}

// normalize validates a lexical value for datatype and returns its
// canonical form where the editor's form differs (booleans).
func normalize(datatype, lexical string) (string, error) {
	v := strings.TrimSpace(lexical)
	switch datatype {
	case dossier.XSDBoolean:
		switch strings.ToLower(v) {
		case "true", "1":
			return "true", nil
		case "false", "0":
			return "false", nil
		}
		return "", fmt.Errorf("not a boolean")
	case dossier.XSDInteger, dossier.XSDLong:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "", fmt.Errorf("not an integer")
		}
		return v, nil
	case dossier.XSDInt:
		if _, err := strconv.ParseInt(v, 10, 32); err != nil {
			return "", fmt.Errorf("not a 32-bit integer")
		}
		return v, nil
	case dossier.XSDPositiveInt:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return "", fmt.Errorf("not a positive integer")
		}
		return v, nil
	case dossier.XSDDouble, dossier.XSDFloat, dossier.XSDDecimal:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", fmt.Errorf("not a number")
		}
		return v, nil
	default:
		return lexical, nil
	}
}

// ParseRangePolicy validates a policy name. Empty selects RangeFirst.
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch RangePolicy(strings.ToLower(s)) {
	case "", RangeFirst:
		return RangeFirst, nil
	case RangeReject:
		return RangeReject, nil
	default:
		return "", fmt.Errorf("unknown range policy %q", s)
	}
}

// ParseLexicalPolicy validates a policy name. Empty selects LexicalStrict.
func ParseLexicalPolicy(s string) (LexicalPolicy, error) {
	switch LexicalPolicy(strings.ToLower(s)) {
	case "", LexicalStrict:
		return LexicalStrict, nil
	case LexicalLenient:
		return LexicalLenient, nil
	default:
		return "", fmt.Errorf("unknown lexical policy %q", s)
	}
}
