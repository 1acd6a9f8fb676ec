package parser

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/diag"
)

// checkBindingIdentifier enforces the binding-identifier restrictions of
// spec.md §4.7: eval/arguments cannot be bound in strict-mode code, and
// yield/await cannot be bound inside the generator/async function they
// would otherwise be an ordinary identifier in.
func (p *Parser) checkBindingIdentifier(name atom.Atom, span diag.Span) {
	text := p.atoms.Resolve(name)
	if p.strict && (text == "eval" || text == "arguments") {
		p.fail(span, "%q cannot be used as a binding identifier in strict mode", text)
	}
	if p.inGenerator > 0 && text == "yield" {
		p.fail(span, "\"yield\" cannot be used as a binding identifier inside a generator")
	}
	if p.inAsync > 0 && text == "await" {
		p.fail(span, "\"await\" cannot be used as a binding identifier inside an async function")
	}
}

// bindingNames collects every binding identifier a parameter or
// destructuring target introduces, recursing through defaults, rest
// elements, and nested array/object patterns.
func bindingNames(n ast.Node) []atom.Atom {
	switch t := n.(type) {
	case *ast.Identifier:
		return []atom.Atom{t.Name}
	case *ast.AssignmentPattern:
		return bindingNames(t.Left)
	case *ast.RestElement:
		return bindingNames(t.Argument)
	case *ast.ArrayPattern:
		var names []atom.Atom
		for _, e := range t.Elements {
			if e == nil {
				continue
			}
			names = append(names, bindingNames(e)...)
		}
		return names
	case *ast.ObjectPattern:
		var names []atom.Atom
		for _, prop := range t.Properties {
			names = append(names, bindingNames(prop.Value)...)
		}
		return names
	}
	return nil
}

func isSimpleParamList(params []ast.Node) bool {
	for _, param := range params {
		if _, ok := param.(*ast.Identifier); !ok {
			return false
		}
	}
	return true
}

// checkParams enforces the duplicate-formal-parameter-name restriction.
// Arrow functions, methods, generators, and async functions (forceUnique)
// never get Annex B's relaxation; an ordinary sloppy-mode function with an
// all-identifier parameter list is the only shape that may repeat a name.
func (p *Parser) checkParams(params []ast.Node, span diag.Span, forceUnique bool) {
	forbidDuplicates := forceUnique || p.strict || !isSimpleParamList(params)
	seen := map[atom.Atom]bool{}
	for _, param := range params {
		for _, name := range bindingNames(param) {
			if seen[name] && forbidDuplicates {
				p.fail(span, "duplicate parameter name %q", p.atoms.Resolve(name))
			}
			seen[name] = true
		}
	}
}

// checkStrictParamNames re-checks a parameter list already parsed under a
// sloppy outer context once its body turns out to declare "use strict":
// eval/arguments are never valid parameter names in strict code, but that
// can only be known after the directive prologue has been read.
func (p *Parser) checkStrictParamNames(params []ast.Node, span diag.Span) {
	for _, param := range params {
		for _, name := range bindingNames(param) {
			text := p.atoms.Resolve(name)
			if text == "eval" || text == "arguments" {
				p.fail(span, "%q cannot be used as a parameter name in strict mode", text)
			}
		}
	}
}

// directiveText reports the string value of stmt if it is a directive
// prologue candidate: a bare string-literal ExpressionStatement.
func directiveText(stmt ast.Node) (string, bool) {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return "", false
	}
	lit, ok := es.Expression.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	return lit.String, true
}

// parseFunctionBody parses a function/method/arrow block body, detecting a
// leading "use strict" directive the way parseProgram detects one at
// script level: each leading statement is parsed normally and the moment
// one reads back as the "use strict" directive, strict mode switches on
// for every statement parsed afterward in this same body — no lookahead or
// re-parse. hasNonSimpleParams rejects the directive outright, since
// 'use strict' is incompatible with a non-simple parameter list.
func (p *Parser) parseFunctionBody(hasNonSimpleParams bool) (body *ast.BlockStatement, becameStrict bool) {
	start := p.expectPunct("{")
	outerStrict := p.strict
	defer func() { p.strict = outerStrict }()

	var stmts []ast.Node
	sawNonDirective := false
	for !p.isPunct("}") {
		stmt := p.parseStatementListItem()
		if !sawNonDirective {
			if text, ok := directiveText(stmt); ok {
				if text == "use strict" {
					if hasNonSimpleParams {
						p.fail(stmt.Span(), "'use strict' directive not allowed in function with non-simple parameter list")
					}
					p.strict = true
					becameStrict = true
				}
			} else {
				sawNonDirective = true
			}
		}
		stmts = append(stmts, stmt)
	}
	p.expectPunct("}")
	return &ast.BlockStatement{Base: b(mergeSpan(start, p.tok.Span)), Body: stmts}, becameStrict
}

// declaredPrivateNames collects the names a class body's own member list
// declares; it excludes inherited/enclosing names, since private-name
// resolution does not see through class boundaries the way lexical
// scoping does for ordinary identifiers.
func declaredPrivateNames(members []*ast.ClassMember) map[atom.Atom]bool {
	names := map[atom.Atom]bool{}
	for _, m := range members {
		if m.IsPrivate {
			if pi, ok := m.Key.(*ast.PrivateIdentifier); ok {
				names[pi.Name] = true
			}
		}
	}
	return names
}

func (p *Parser) privateNameDeclared(name atom.Atom) bool {
	for i := len(p.privateScopes) - 1; i >= 0; i-- {
		if p.privateScopes[i][name] {
			return true
		}
	}
	return false
}

func (p *Parser) checkPrivateNameResolved(pi *ast.PrivateIdentifier) {
	if !p.privateNameDeclared(pi.Name) {
		p.fail(pi.Span(), "private name %q must be declared in an enclosing class body", "#"+p.atoms.Resolve(pi.Name))
	}
}

// checkClassPrivateNames implements spec.md §4.7's private-identifier
// resolution pass: superClass is walked against the scopes enclosing this
// class (the heritage clause is evaluated outside the class's own private
// environment), then every member's computed key and value is walked with
// this class's declared names pushed on top.
func (p *Parser) checkClassPrivateNames(superClass ast.Node, members []*ast.ClassMember) {
	p.walkPrivateRefs(superClass)
	p.privateScopes = append(p.privateScopes, declaredPrivateNames(members))
	for _, m := range members {
		if m.Computed {
			p.walkPrivateRefs(m.Key)
		}
		p.walkPrivateRefs(m.Value)
	}
	p.privateScopes = p.privateScopes[:len(p.privateScopes)-1]
}

func (p *Parser) walkPrivateRefsList(nodes []ast.Node) {
	for _, n := range nodes {
		p.walkPrivateRefs(n)
	}
}

// walkPrivateRefs is a generic tree walk over every node kind that can
// contain an expression, used solely to find private-identifier
// references and check each resolves to a declaring class body. It is not
// a general-purpose AST visitor: nodes with no expression-bearing children
// (literals, this/super, debugger, empty, meta-property) fall through the
// default case untouched.
func (p *Parser) walkPrivateRefs(n ast.Node) {
	switch t := n.(type) {
	case nil:
		return
	case *ast.PrivateIdentifier:
		p.checkPrivateNameResolved(t)
	case *ast.BlockStatement:
		p.walkPrivateRefsList(t.Body)
	case *ast.VariableDeclaration:
		for _, d := range t.Declarations {
			p.walkPrivateRefs(d.Init)
		}
	case *ast.ExpressionStatement:
		p.walkPrivateRefs(t.Expression)
	case *ast.IfStatement:
		p.walkPrivateRefs(t.Test)
		p.walkPrivateRefs(t.Consequent)
		p.walkPrivateRefs(t.Alternate)
	case *ast.ForStatement:
		p.walkPrivateRefs(t.Init)
		p.walkPrivateRefs(t.Test)
		p.walkPrivateRefs(t.Update)
		p.walkPrivateRefs(t.Body)
	case *ast.ForInStatement:
		p.walkPrivateRefs(t.Left)
		p.walkPrivateRefs(t.Right)
		p.walkPrivateRefs(t.Body)
	case *ast.ForOfStatement:
		p.walkPrivateRefs(t.Left)
		p.walkPrivateRefs(t.Right)
		p.walkPrivateRefs(t.Body)
	case *ast.WhileStatement:
		p.walkPrivateRefs(t.Test)
		p.walkPrivateRefs(t.Body)
	case *ast.DoWhileStatement:
		p.walkPrivateRefs(t.Body)
		p.walkPrivateRefs(t.Test)
	case *ast.ReturnStatement:
		p.walkPrivateRefs(t.Argument)
	case *ast.ThrowStatement:
		p.walkPrivateRefs(t.Argument)
	case *ast.TryStatement:
		p.walkPrivateRefs(t.Block)
		p.walkPrivateRefs(t.Param)
		p.walkPrivateRefs(t.Handler)
		p.walkPrivateRefs(t.Finalizer)
	case *ast.SwitchStatement:
		p.walkPrivateRefs(t.Discriminant)
		for _, c := range t.Cases {
			p.walkPrivateRefs(c.Test)
			p.walkPrivateRefsList(c.Consequent)
		}
	case *ast.LabeledStatement:
		p.walkPrivateRefs(t.Body)
	case *ast.FunctionDeclaration:
		p.walkPrivateRefsList(t.Params)
		p.walkPrivateRefs(t.Body)
	case *ast.FunctionExpression:
		p.walkPrivateRefsList(t.Params)
		p.walkPrivateRefs(t.Body)
	case *ast.ArrowFunctionExpression:
		p.walkPrivateRefsList(t.Params)
		p.walkPrivateRefs(t.Body)
	case *ast.ClassDeclaration:
		p.checkClassPrivateNames(t.SuperClass, t.Body)
	case *ast.ClassExpression:
		p.checkClassPrivateNames(t.SuperClass, t.Body)
	case *ast.TemplateLiteral:
		for _, e := range t.Expressions {
			p.walkPrivateRefs(e)
		}
	case *ast.TaggedTemplateExpression:
		p.walkPrivateRefs(t.Tag)
		p.walkPrivateRefs(t.Quasi)
	case *ast.ArrayExpression:
		p.walkPrivateRefsList(t.Elements)
	case *ast.ObjectExpression:
		for _, prop := range t.Properties {
			p.walkPrivateRefs(prop.Key)
			p.walkPrivateRefs(prop.Value)
		}
	case *ast.UnaryExpression:
		p.walkPrivateRefs(t.Argument)
	case *ast.UpdateExpression:
		p.walkPrivateRefs(t.Argument)
	case *ast.BinaryExpression:
		p.walkPrivateRefs(t.Left)
		p.walkPrivateRefs(t.Right)
	case *ast.LogicalExpression:
		p.walkPrivateRefs(t.Left)
		p.walkPrivateRefs(t.Right)
	case *ast.AssignmentExpression:
		p.walkPrivateRefs(t.Left)
		p.walkPrivateRefs(t.Right)
	case *ast.ConditionalExpression:
		p.walkPrivateRefs(t.Test)
		p.walkPrivateRefs(t.Consequent)
		p.walkPrivateRefs(t.Alternate)
	case *ast.CallExpression:
		p.walkPrivateRefs(t.Callee)
		p.walkPrivateRefsList(t.Args)
	case *ast.NewExpression:
		p.walkPrivateRefs(t.Callee)
		p.walkPrivateRefsList(t.Args)
	case *ast.MemberExpression:
		p.walkPrivateRefs(t.Object)
		if t.Computed {
			p.walkPrivateRefs(t.Property)
		} else if pi, ok := t.Property.(*ast.PrivateIdentifier); ok {
			p.checkPrivateNameResolved(pi)
		}
	case *ast.SequenceExpression:
		p.walkPrivateRefsList(t.Expressions)
	case *ast.SpreadElement:
		p.walkPrivateRefs(t.Argument)
	case *ast.YieldExpression:
		p.walkPrivateRefs(t.Argument)
	case *ast.AwaitExpression:
		p.walkPrivateRefs(t.Argument)
	case *ast.AssignmentPattern:
		p.walkPrivateRefs(t.Default)
	case *ast.RestElement:
		p.walkPrivateRefs(t.Argument)
	case *ast.ArrayPattern:
		p.walkPrivateRefsList(t.Elements)
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			p.walkPrivateRefs(prop.Value)
		}
	}
}
