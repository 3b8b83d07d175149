package scanner

import (
	"inlet/internal/ast"
	"inlet/internal/js_ast"
	"inlet/internal/logger"
)

// The walk descends into nested function and class bodies. References made
// from inside a nested body are attributed to the enclosing top-level
// statement, which is what dead-statement elimination needs.

func (s *AstScanner) walkStmt(stmt js_ast.Stmt) {
	switch st := stmt.Data.(type) {
	case *js_ast.SBlock:
		for _, child := range st.Stmts {
			s.walkStmt(child)
		}

	case *js_ast.SExpr:
		s.walkExpr(st.Value)

	case *js_ast.SLazyExport:
		s.walkExpr(st.Value)

	case *js_ast.SLocal:
		for _, decl := range st.Decls {
			s.walkBinding(decl.Binding)
			if decl.Value != nil {
				s.walkExpr(*decl.Value)
			}
		}

	case *js_ast.SFunction:
		s.walkFn(&st.Fn)

	case *js_ast.SClass:
		s.walkClass(&st.Class)

	case *js_ast.SExportDefault:
		if st.Value.Expr != nil {
			s.walkExpr(*st.Value.Expr)
		}
		if st.Value.Stmt != nil {
			s.walkStmt(*st.Value.Stmt)
		}

	case *js_ast.SIf:
		s.walkExpr(st.Test)
		s.walkStmt(st.Yes)
		if st.No != nil {
			s.walkStmt(*st.No)
		}

	case *js_ast.SFor:
		if st.Init != nil {
			s.walkStmt(*st.Init)
		}
		if st.Test != nil {
			s.walkExpr(*st.Test)
		}
		if st.Update != nil {
			s.walkExpr(*st.Update)
		}
		s.walkStmt(st.Body)

	case *js_ast.SForIn:
		s.walkStmt(st.Init)
		s.walkExpr(st.Value)
		s.walkStmt(st.Body)

	case *js_ast.SForOf:
		s.walkStmt(st.Init)
		s.walkExpr(st.Value)
		s.walkStmt(st.Body)

	case *js_ast.SDoWhile:
		s.walkStmt(st.Body)
		s.walkExpr(st.Test)

	case *js_ast.SWhile:
		s.walkExpr(st.Test)
		s.walkStmt(st.Body)

	case *js_ast.STry:
		for _, child := range st.Body {
			s.walkStmt(child)
		}
		if st.Catch != nil {
			if st.Catch.Binding != nil {
				s.walkBinding(*st.Catch.Binding)
			}
			for _, child := range st.Catch.Body {
				s.walkStmt(child)
			}
		}
		if st.Finally != nil {
			for _, child := range st.Finally.Stmts {
				s.walkStmt(child)
			}
		}

	case *js_ast.SSwitch:
		s.walkExpr(st.Test)
		for _, c := range st.Cases {
			if c.Value != nil {
				s.walkExpr(*c.Value)
			}
			for _, child := range c.Body {
				s.walkStmt(child)
			}
		}

	case *js_ast.SLabel:
		s.walkStmt(st.Stmt)

	case *js_ast.SReturn:
		if st.Value != nil {
			s.walkExpr(*st.Value)
		}

	case *js_ast.SThrow:
		s.walkExpr(st.Value)
	}
}

func (s *AstScanner) walkExpr(expr js_ast.Expr) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		s.referenceSymbol(e.Ref)

	case *js_ast.EImportIdentifier:
		s.referenceSymbol(e.Ref)

	case *js_ast.EArray:
		for _, item := range e.Items {
			s.walkExpr(item)
		}

	case *js_ast.EUnary:
		s.walkExpr(e.Value)

	case *js_ast.EBinary:
		s.walkExpr(e.Left)
		s.walkExpr(e.Right)

	case *js_ast.ENew:
		s.walkExpr(e.Target)
		for _, arg := range e.Args {
			s.walkExpr(arg)
		}

	case *js_ast.ECall:
		if e.IsDirectEval && !s.result.HasEval {
			s.result.HasEval = true
			s.addWarning(logger.Range{Loc: expr.Loc},
				"Using direct eval with a bundler is not recommended and may cause problems")
		}
		s.walkExpr(e.Target)
		for _, arg := range e.Args {
			s.walkExpr(arg)
		}

	case *js_ast.EDot:
		s.walkExpr(e.Target)

	case *js_ast.EIndex:
		s.walkExpr(e.Target)
		s.walkExpr(e.Index)

	case *js_ast.EArrow:
		for _, arg := range e.Args {
			s.walkBinding(arg.Binding)
			if arg.Default != nil {
				s.walkExpr(*arg.Default)
			}
		}
		for _, child := range e.Body.Stmts {
			s.walkStmt(child)
		}

	case *js_ast.EFunction:
		s.walkFn(&e.Fn)

	case *js_ast.EClass:
		s.walkClass(&e.Class)

	case *js_ast.EObject:
		for _, property := range e.Properties {
			s.walkProperty(property)
		}

	case *js_ast.ESpread:
		s.walkExpr(e.Value)

	case *js_ast.ETemplate:
		if e.Tag != nil {
			s.walkExpr(*e.Tag)
		}
		for _, part := range e.Parts {
			s.walkExpr(part.Value)
		}

	case *js_ast.EAwait:
		s.walkExpr(e.Value)

	case *js_ast.EYield:
		if e.Value != nil {
			s.walkExpr(*e.Value)
		}

	case *js_ast.EIf:
		s.walkExpr(e.Test)
		s.walkExpr(e.Yes)
		s.walkExpr(e.No)

	case *js_ast.ERequire:
		s.result.Usage |= UsesRequireCall
		s.addImportRecord(ast.ImportRequire, e.Path, 0)

	case *js_ast.EImport:
		if e.Path.Text != "" {
			recordIndex := s.addImportRecord(ast.ImportDynamic, e.Path, 0)
			s.result.DynamicImports = append(s.result.DynamicImports, recordIndex)
		} else {
			s.addWarning(logger.Range{Loc: e.Expr.Loc},
				"This dynamic import will not be bundled because the argument is not a string literal")
			s.walkExpr(e.Expr)
		}
	}
}

// Binding patterns can nest arbitrary expressions via default values and
// computed keys, so they get walked too.
func (s *AstScanner) walkBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BArray:
		for _, item := range b.Items {
			s.walkBinding(item.Binding)
			if item.DefaultValue != nil {
				s.walkExpr(*item.DefaultValue)
			}
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			if property.IsComputed {
				s.walkExpr(property.Key)
			}
			s.walkBinding(property.Value)
			if property.DefaultValue != nil {
				s.walkExpr(*property.DefaultValue)
			}
		}
	}
}

func (s *AstScanner) walkFn(fn *js_ast.Fn) {
	for _, arg := range fn.Args {
		s.walkBinding(arg.Binding)
		if arg.Default != nil {
			s.walkExpr(*arg.Default)
		}
	}
	for _, child := range fn.Body.Stmts {
		s.walkStmt(child)
	}
}

func (s *AstScanner) walkClass(class *js_ast.Class) {
	// Track the class-name binding while inside the body so references back
	// to the class itself can be detected
	if class.Name != nil {
		s.enclosingClassRefs = append(s.enclosingClassRefs, class.Name.Ref)
		defer func() {
			s.enclosingClassRefs = s.enclosingClassRefs[:len(s.enclosingClassRefs)-1]
		}()
	}

	if class.Extends != nil {
		s.walkExpr(*class.Extends)
	}
	for _, property := range class.Properties {
		s.walkProperty(property)
	}
}

func (s *AstScanner) walkProperty(property js_ast.Property) {
	if property.IsComputed {
		s.walkExpr(property.Key)
	}
	if property.Value != nil {
		s.walkExpr(*property.Value)
	}
	if property.Initializer != nil {
		s.walkExpr(*property.Initializer)
	}
}
