package builder

import (
	"fmt"
	"strings"

	"cuml/internal/cpptype"
	"cuml/internal/errors"
	"cuml/internal/facts"
	"cuml/internal/uml"
)

// enrichDetails attaches members, operations, template argument bindings,
// enumeration literals, and alias targets to every prepared element. The
// name index is populated as the pass goes, in a single forward sweep:
// associations are resolved in a later phase once every element exists, so
// no fix-up pass is needed.
func (p *Pipeline) enrichDetails() error {
	for _, pr := range p.prepared {
		fact, el := pr.fact, pr.el

		p.enrichTemplates(pr)

		switch el.Kind {
		case uml.KindEnumeration:
			el.Literals = append(el.Literals, fact.Enumerators...)
		case uml.KindDataType:
			if fact.Underlying != "" {
				el.Underlying = fact.Underlying
			}
		}

		for _, mf := range fact.Members {
			if mf.Name == "" {
				continue
			}
			el.AddMember(&uml.Member{
				Name:         mf.Name,
				Raw:          mf.Type,
				TypeName:     p.displayType(mf.Type),
				Multiplicity: uml.MultOne,
				Visibility:   uml.ParseVisibility(mf.Visibility, uml.VisibilityPrivate),
				IsStatic:     mf.IsStatic,
				OppositeRole: mf.OppositeRole,
			})
		}

		for i, of := range fact.Operations {
			op, err := p.makeOperation(el, i, of)
			if err != nil {
				return err
			}
			el.Operations = append(el.Operations, op)
		}

		p.index.register(el)
	}
	return nil
}

// enrichTemplates cleans the element's template arguments and rebuilds its
// display name. Template-ness only ever lives in the display name: no
// template signature or binding nodes are materialized, because inferred and
// possibly partial argument data can never populate those correctly.
func (p *Pipeline) enrichTemplates(pr prepared) {
	el := pr.el
	raws := pr.fact.TemplateArgs
	base := el.Name
	if len(raws) == 0 {
		base, raws = cpptype.ParseTemplateArgs(el.Name)
		if len(raws) == 0 {
			return
		}
	} else if b, _ := cpptype.ParseTemplateArgs(el.Name); b != "" {
		base = b
	}

	cleaned, discarded := p.cleaner.CleanAll(raws)
	if discarded > 0 {
		p.diag(errors.MalformedTemplateArgument, el.QualifiedName,
			fmt.Sprintf("%d of %d template arguments discarded", discarded, len(raws)))
	}
	el.TemplateArgs = cleaned
	el.Name = p.cleaner.BuildTemplateName(base, raws)
}

// displayType renders a raw declared type as a clean display string:
// qualifiers and declarators stripped, template arguments cleaned.
func (p *Pipeline) displayType(raw string) string {
	if raw == "" {
		return ""
	}
	an := cpptype.Analyze(raw)
	base, args := cpptype.ParseTemplateArgs(an.Base)
	if len(args) == 0 {
		return an.Base
	}
	return p.cleaner.BuildTemplateName(base, args)
}

// makeOperation builds one operation descriptor with its identity. The
// identity key is the owning class's qualified name plus the signature text,
// and the operation's ordinal within its class is folded in unconditionally,
// so identically-mangled overloads still receive distinct ids.
func (p *Pipeline) makeOperation(el *uml.Element, ordinal int, of facts.OperationFact) (*uml.Operation, error) {
	name := of.Name
	if name == "" {
		name = "op"
	}
	sig := of.Signature
	if sig == "" {
		sig = synthesizeSignature(name, of)
	}

	id, err := p.reg.ClaimOrdinal(el.QualifiedName+":op:"+sig, ordinal, el.QualifiedName)
	if err != nil {
		return nil, err
	}

	op := &uml.Operation{
		ID:         id,
		Name:       name,
		Signature:  sig,
		ReturnType: of.ReturnType,
		Visibility: uml.ParseVisibility(of.Visibility, uml.VisibilityPublic),
		IsStatic:   of.IsStatic,
		IsAbstract: of.IsAbstract,
	}
	for _, pf := range of.Parameters {
		dir := pf.Direction
		if dir == "" {
			dir = "in"
		}
		op.Parameters = append(op.Parameters, uml.Parameter{
			Name:      pf.Name,
			TypeName:  pf.Type,
			Direction: dir,
			Default:   pf.Default,
		})
	}
	return op, nil
}

func synthesizeSignature(name string, of facts.OperationFact) string {
	parts := make([]string, len(of.Parameters))
	for i, pf := range of.Parameters {
		parts[i] = pf.Type
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
