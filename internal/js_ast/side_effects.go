package js_ast

// The removability analysis below is deliberately pessimistic: a statement is
// side-effecting unless it is provably a pure declaration or value with no
// observable external effect. Labeling pure code as side-effecting only costs
// bundle size; the reverse would break programs.

// Reports whether every statement in the list could be removed without
// changing observable behavior if nothing in it is used.
func StmtsCanBeRemovedIfUnused(stmts []Stmt, symbols *SymbolTable) bool {
	for _, stmt := range stmts {
		if !StmtCanBeRemovedIfUnused(stmt, symbols) {
			return false
		}
	}
	return true
}

func StmtCanBeRemovedIfUnused(stmt Stmt, symbols *SymbolTable) bool {
	switch s := stmt.Data.(type) {
	case *SFunction, *SEmpty, *SDirective:
		// These never have side effects

	case *SImport, *SExportStar:
		// Let these be removed if they are unused. Note that the module graph
		// also needs to check whether the imported file is marked as
		// "sideEffects: false" before it can remove one of these. Otherwise
		// the import must be kept for its side effects.

	case *SClass:
		if !ClassCanBeRemovedIfUnused(s.Class, symbols) {
			return false
		}

	case *SExpr:
		if !ExprCanBeRemovedIfUnused(s.Value, symbols) {
			return false
		}

	case *SLocal:
		for _, decl := range s.Decls {
			if !bindingCanBeRemovedIfUnused(decl.Binding, symbols) {
				return false
			}
			if decl.Value != nil && !ExprCanBeRemovedIfUnused(*decl.Value, symbols) {
				return false
			}
		}

	case *SExportClause, *SExportFrom:
		// Exports are tracked separately, so these have no effect themselves

	case *SExportDefault:
		switch {
		case s.Value.Expr != nil:
			if !ExprCanBeRemovedIfUnused(*s.Value.Expr, symbols) {
				return false
			}

		case s.Value.Stmt != nil:
			switch s2 := s.Value.Stmt.Data.(type) {
			case *SFunction:
				// These never have side effects

			case *SClass:
				if !ClassCanBeRemovedIfUnused(s2.Class, symbols) {
					return false
				}

			default:
				panic("Internal error")
			}
		}

	default:
		// Assume that all statements not explicitly special-cased here have
		// side effects, and cannot be removed even if unused
		return false
	}

	return true
}

func ClassCanBeRemovedIfUnused(class Class, symbols *SymbolTable) bool {
	if class.Extends != nil && !ExprCanBeRemovedIfUnused(*class.Extends, symbols) {
		return false
	}

	for _, property := range class.Properties {
		// Computed keys must still be evaluated
		if property.IsComputed && !ExprCanBeRemovedIfUnused(property.Key, symbols) {
			return false
		}
		// Static initializers run when the class is evaluated
		if property.IsStatic {
			if property.Value != nil && !ExprCanBeRemovedIfUnused(*property.Value, symbols) {
				return false
			}
			if property.Initializer != nil && !ExprCanBeRemovedIfUnused(*property.Initializer, symbols) {
				return false
			}
		}
	}

	return true
}

func bindingCanBeRemovedIfUnused(binding Binding, symbols *SymbolTable) bool {
	switch b := binding.Data.(type) {
	case *BArray:
		for _, item := range b.Items {
			if !bindingCanBeRemovedIfUnused(item.Binding, symbols) {
				return false
			}
			if item.DefaultValue != nil && !ExprCanBeRemovedIfUnused(*item.DefaultValue, symbols) {
				return false
			}
		}

	case *BObject:
		for _, property := range b.Properties {
			if !property.IsSpread && property.IsComputed && !ExprCanBeRemovedIfUnused(property.Key, symbols) {
				return false
			}
			if !bindingCanBeRemovedIfUnused(property.Value, symbols) {
				return false
			}
			if property.DefaultValue != nil && !ExprCanBeRemovedIfUnused(*property.DefaultValue, symbols) {
				return false
			}
		}
	}

	return true
}

func ExprCanBeRemovedIfUnused(expr Expr, symbols *SymbolTable) bool {
	switch e := expr.Data.(type) {
	case *ENull, *EUndefined, *EMissing, *EBoolean, *ENumber, *EBigInt,
		*EString, *EThis, *ERegExp, *EFunction, *EArrow, *EImportMeta:
		return true

	case *EDot:
		return e.CanBeRemovedIfUnused

	case *EClass:
		return ClassCanBeRemovedIfUnused(e.Class, symbols)

	case *EIdentifier:
		// Referencing an unbound identifier can throw a ReferenceError
		if e.CanBeRemovedIfUnused || symbols.Get(e.Ref).Kind != SymbolUnbound {
			return true
		}

	case *EImportIdentifier:
		// References to import items are pure property accesses after linking
		return true

	case *EIf:
		return ExprCanBeRemovedIfUnused(e.Test, symbols) &&
			ExprCanBeRemovedIfUnused(e.Yes, symbols) &&
			ExprCanBeRemovedIfUnused(e.No, symbols)

	case *EArray:
		for _, item := range e.Items {
			if !ExprCanBeRemovedIfUnused(item, symbols) {
				return false
			}
		}
		return true

	case *EObject:
		for _, property := range e.Properties {
			// The key must still be evaluated if it's computed or a spread
			if property.Kind == PropertySpread || property.IsComputed {
				return false
			}
			if property.Value != nil && !ExprCanBeRemovedIfUnused(*property.Value, symbols) {
				return false
			}
		}
		return true

	case *ECall:
		// A call that has been marked "__PURE__" can be removed if all
		// arguments can be removed. The annotation causes us to ignore the
		// target.
		if e.CanBeUnwrappedIfUnused {
			for _, arg := range e.Args {
				if !ExprCanBeRemovedIfUnused(arg, symbols) {
					return false
				}
			}
			return true
		}

	case *ENew:
		// A constructor call that has been marked "__PURE__" can be removed
		// if all arguments can be removed. The annotation causes us to ignore
		// the target.
		if e.CanBeUnwrappedIfUnused {
			for _, arg := range e.Args {
				if !ExprCanBeRemovedIfUnused(arg, symbols) {
					return false
				}
			}
			return true
		}
	}

	// Assume all other expression types have side effects and cannot be removed
	return false
}
