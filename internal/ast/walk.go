package ast

// VisitResult is the traversal control signal returned by every hook.
type VisitResult uint8

const (
	// VisitContinue proceeds with the traversal.
	VisitContinue VisitResult = iota
	// VisitStop aborts the traversal immediately.
	VisitStop
)

// Visitor receives post-order callbacks for every construct in a file, then
// one AfterFile call once the whole tree has been visited. Hooks dispatch on
// the construct kind themselves; the walker guarantees children are visited
// before their parent.
type Visitor interface {
	PostExpr(b *Builder, id ExprID) VisitResult
	PostStmt(b *Builder, id StmtID) VisitResult
	PostItem(b *Builder, id ItemID) VisitResult
	AfterFile(b *Builder, id FileID) VisitResult
}

// WalkFile drives a post-order traversal of one file. The control result of
// every hook is checked before the walk proceeds.
func WalkFile(b *Builder, file FileID, v Visitor) VisitResult {
	root := b.Files.Get(file)
	if root == nil {
		return VisitContinue
	}
	for _, item := range root.Items {
		if walkItem(b, item, v) == VisitStop {
			return VisitStop
		}
	}
	return v.AfterFile(b, file)
}

func walkItem(b *Builder, id ItemID, v Visitor) VisitResult {
	item := b.Items.Get(id)
	if item == nil {
		return VisitContinue
	}
	if item.Kind == ItemStage {
		stage, ok := b.Items.Stage(id)
		if ok && stage.Body.IsValid() {
			if walkStmt(b, stage.Body, v) == VisitStop {
				return VisitStop
			}
		}
	}
	return v.PostItem(b, id)
}

func walkStmt(b *Builder, id StmtID, v Visitor) VisitResult {
	stmt := b.Stmts.Get(id)
	if stmt == nil {
		return VisitContinue
	}
	switch stmt.Kind {
	case StmtBlock:
		block, _ := b.Stmts.Block(id)
		for _, sub := range block.Stmts {
			if walkStmt(b, sub, v) == VisitStop {
				return VisitStop
			}
		}
	case StmtLet:
		let, _ := b.Stmts.Let(id)
		if let.Init.IsValid() {
			if walkExpr(b, let.Init, v) == VisitStop {
				return VisitStop
			}
		}
	case StmtAssign:
		assign, _ := b.Stmts.Assign(id)
		if walkExpr(b, assign.Target, v) == VisitStop {
			return VisitStop
		}
		if walkExpr(b, assign.Value, v) == VisitStop {
			return VisitStop
		}
	case StmtWrite:
		write, _ := b.Stmts.Write(id)
		if walkExpr(b, write.Port, v) == VisitStop {
			return VisitStop
		}
		if walkExpr(b, write.Value, v) == VisitStop {
			return VisitStop
		}
	case StmtIf:
		ifData, _ := b.Stmts.If(id)
		if walkExpr(b, ifData.Cond, v) == VisitStop {
			return VisitStop
		}
		if walkStmt(b, ifData.Then, v) == VisitStop {
			return VisitStop
		}
		if ifData.Else.IsValid() {
			if walkStmt(b, ifData.Else, v) == VisitStop {
				return VisitStop
			}
		}
	case StmtWhile:
		while, _ := b.Stmts.While(id)
		if walkExpr(b, while.Cond, v) == VisitStop {
			return VisitStop
		}
		if walkStmt(b, while.Body, v) == VisitStop {
			return VisitStop
		}
	case StmtExpr:
		exprStmt, _ := b.Stmts.Expr(id)
		if walkExpr(b, exprStmt.Expr, v) == VisitStop {
			return VisitStop
		}
	case StmtBypassStart, StmtBypassEnd:
		// no children
	case StmtBypassWrite:
		bw, _ := b.Stmts.BypassWrite(id)
		if walkExpr(b, bw.Value, v) == VisitStop {
			return VisitStop
		}
	}
	return v.PostStmt(b, id)
}

func walkExpr(b *Builder, id ExprID, v Visitor) VisitResult {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return VisitContinue
	}
	switch expr.Kind {
	case ExprIdent, ExprIntLit, ExprBoolLit, ExprBypassRead:
		// leaves
	case ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		if walkExpr(b, bin.Left, v) == VisitStop {
			return VisitStop
		}
		if walkExpr(b, bin.Right, v) == VisitStop {
			return VisitStop
		}
	case ExprConcat:
		concat, _ := b.Exprs.Concat(id)
		for _, op := range concat.Operands {
			if walkExpr(b, op, v) == VisitStop {
				return VisitStop
			}
		}
	case ExprCast:
		cast, _ := b.Exprs.Cast(id)
		if walkExpr(b, cast.Arg, v) == VisitStop {
			return VisitStop
		}
	case ExprIndex:
		index, _ := b.Exprs.Index(id)
		if walkExpr(b, index.Array, v) == VisitStop {
			return VisitStop
		}
		if walkExpr(b, index.Index, v) == VisitStop {
			return VisitStop
		}
	case ExprField:
		field, _ := b.Exprs.Field(id)
		if walkExpr(b, field.Agg, v) == VisitStop {
			return VisitStop
		}
	case ExprAggLit:
		lit, _ := b.Exprs.AggLit(id)
		for _, f := range lit.Fields {
			if walkExpr(b, f.Value, v) == VisitStop {
				return VisitStop
			}
		}
	case ExprRegRead:
		reg, _ := b.Exprs.RegRead(id)
		if walkExpr(b, reg.Reg, v) == VisitStop {
			return VisitStop
		}
	case ExprPortRead:
		port, _ := b.Exprs.PortRead(id)
		if walkExpr(b, port.Port, v) == VisitStop {
			return VisitStop
		}
	}
	return v.PostExpr(b, id)
}
