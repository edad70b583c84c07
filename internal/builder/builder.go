// Package builder turns analyzer type facts into a validated UML model
// graph. The pipeline is strictly phased: element preparation, detail
// enrichment, relationship inference, compliance filtering. Each phase reads
// the output of the prior ones and writes only its own slice of the graph;
// iteration order is fixed by declaration order in the input, so identical
// input always produces an identical model.
package builder

import (
	"log/slog"

	"cuml/internal/cpptype"
	"cuml/internal/errors"
	"cuml/internal/facts"
	"cuml/internal/identity"
	"cuml/internal/profile"
	"cuml/internal/slogutil"
	"cuml/internal/uml"
)

// Options is the configuration surface the pipeline consumes.
type Options struct {
	ProjectName string
	// Strict disables owned-end synthesis entirely: only relationships with
	// real fields on both sides survive as associations.
	Strict bool
	// OwnershipAnnotations marks associations that carry synthesized ends.
	OwnershipAnnotations bool
	// PlaceholderStubs enables stand-in datatype elements for referenced but
	// undefined external types.
	PlaceholderStubs bool
	Profile          *profile.Profile
	Logger           *slog.Logger
}

// prepared pairs an element with the fact it was created from, so later
// phases can reach raw analyzer data without re-parsing.
type prepared struct {
	fact *facts.TypeFact
	el   *uml.Element
}

// Pipeline owns all state of one build: the in-progress model, the identity
// registry, the name index, and the diagnostics collected along the way.
// Created at build start, discarded with it.
type Pipeline struct {
	opts    Options
	log     *slog.Logger
	reg     *identity.Registry
	cleaner *cpptype.Cleaner

	model    *uml.Model
	prepared []prepared
	index    *nameIndex
	diags    []errors.Diagnostic

	// consumed marks target-side fields already absorbed as the opposite end
	// of an association, so their own scan does not produce a mirror.
	consumed map[string]struct{}
	// assocPairs records element pairs connected by any association;
	// classOwnedPairs the subset where at least one end is class-owned.
	assocPairs      map[string]struct{}
	classOwnedPairs map[string]struct{}
	depPairs        map[string]struct{}
}

// New creates a pipeline. Missing options fall back to defaults.
func New(opts Options) *Pipeline {
	if opts.Profile == nil {
		opts.Profile = profile.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slogutil.NewDiscardLogger()
	}
	return &Pipeline{
		opts:            opts,
		log:             opts.Logger,
		reg:             identity.NewRegistry(),
		cleaner:         cpptype.NewCleaner(opts.Profile),
		index:           newNameIndex(),
		consumed:        make(map[string]struct{}),
		assocPairs:      make(map[string]struct{}),
		classOwnedPairs: make(map[string]struct{}),
		depPairs:        make(map[string]struct{}),
	}
}

// Build runs the full pipeline over a fact set. Recoverable conditions are
// returned as diagnostics alongside the finished model; only internal
// invariant violations produce an error.
func (p *Pipeline) Build(fs *facts.FactSet) (*uml.Model, []errors.Diagnostic, error) {
	name := p.opts.ProjectName
	if name == "" {
		name = fs.ProjectName
	}
	if name == "" {
		name = "GeneratedUML"
	}
	p.model = uml.NewModel(name)

	if err := p.prepareElements(fs); err != nil {
		return nil, p.diags, err
	}
	p.log.Debug("elements prepared", "count", len(p.prepared))

	if err := p.enrichDetails(); err != nil {
		return nil, p.diags, err
	}
	p.log.Debug("details enriched")

	p.resolveMemberTypes()
	p.inferFieldAssociations()
	p.inferDeclaredRelations()
	p.resolveExternalReferences()
	p.inferDependencies()
	p.inferGeneralizations()
	p.log.Debug("relationships inferred",
		"associations", len(p.model.Associations),
		"dependencies", len(p.model.Dependencies),
		"generalizations", len(p.model.Generalizations))

	if err := p.applyCompliance(); err != nil {
		return nil, p.diags, err
	}
	p.log.Debug("compliance filter applied", "diagnostics", len(p.diags))

	return p.model, p.diags, nil
}

func (p *Pipeline) diag(code errors.ErrorCode, subject, message string) {
	d := errors.Diagnostic{Code: code, Subject: subject, Message: message}
	p.diags = append(p.diags, d)
	p.log.Warn(message, "code", string(code), "subject", subject)
}

// pairKey builds an unordered key for an element pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
