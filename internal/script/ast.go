package script

type stmt interface {
	stmtPos() Pos
}

type expr interface {
	exprPos() Pos
}

type (
	elementStmt struct {
		pos   Pos
		name  expr
		attrs expr
		text  expr
		body  []stmt
	}

	forStmt struct {
		pos  Pos
		name string
		seq  expr
		body []stmt
	}

	letStmt struct {
		pos   Pos
		name  string
		value expr
	}

	assignStmt struct {
		pos   Pos
		name  string
		value expr
	}

	ifStmt struct {
		pos  Pos
		cond expr
		then []stmt
		els  []stmt
	}

	discardStmt struct {
		pos    Pos
		reason expr
	}

	exprStmt struct {
		x expr
	}
)

func (s *elementStmt) stmtPos() Pos { return s.pos }
func (s *forStmt) stmtPos() Pos     { return s.pos }
func (s *letStmt) stmtPos() Pos     { return s.pos }
func (s *assignStmt) stmtPos() Pos  { return s.pos }
func (s *ifStmt) stmtPos() Pos      { return s.pos }
func (s *discardStmt) stmtPos() Pos { return s.pos }
func (s *exprStmt) stmtPos() Pos    { return s.x.exprPos() }

type (
	literal struct {
		pos   Pos
		value Value
	}

	ident struct {
		pos  Pos
		name string
	}

	listLit struct {
		pos   Pos
		items []expr
	}

	mapLit struct {
		pos    Pos
		keys   []string
		values []expr
	}

	indexExpr struct {
		pos   Pos
		x     expr
		index expr
	}

	callExpr struct {
		pos     Pos
		builtin *Builtin
		args    []expr
	}

	unaryExpr struct {
		pos Pos
		op  string
		x   expr
	}

	binaryExpr struct {
		pos  Pos
		op   string
		x, y expr
	}
)

func (e *literal) exprPos() Pos    { return e.pos }
func (e *ident) exprPos() Pos      { return e.pos }
func (e *listLit) exprPos() Pos    { return e.pos }
func (e *mapLit) exprPos() Pos     { return e.pos }
func (e *indexExpr) exprPos() Pos  { return e.pos }
func (e *callExpr) exprPos() Pos   { return e.pos }
func (e *unaryExpr) exprPos() Pos  { return e.pos }
func (e *binaryExpr) exprPos() Pos { return e.pos }
