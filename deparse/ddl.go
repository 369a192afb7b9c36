package deparse

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/xiaohui-zhangxh/pg_query_go/catalog"
)

// alterTableStmt renders ALTER TABLE rel cmd [, cmd ...], one SQL verb per
// command via the catalog's AlterTableType dispatch table.
func (d *deparser) alterTableStmt(s *pg_query.AlterTableStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	rel, err := d.rangeVar(s.Relation)
	if err != nil {
		return "", err
	}

	cmds := make([]string, 0, len(s.Cmds))
	for _, c := range s.Cmds {
		cmd := c.GetAlterTableCmd()
		if cmd == nil {
			continue
		}
		rendered, err := d.alterTableCmd(cmd)
		if err != nil {
			return "", err
		}
		cmds = append(cmds, rendered)
	}

	return "ALTER TABLE " + rel + " " + strings.Join(cmds, ", "), nil
}

func (d *deparser) alterTableCmd(cmd *pg_query.AlterTableCmd) (string, error) {
	verb, ok := catalog.AlterTableCommandVerb(cmd.Subtype.String())
	if !ok {
		return "", &UnsupportedNode{Kind: "AlterTableCmd:" + cmd.Subtype.String(), Payload: cmd}
	}

	switch cmd.Subtype {
	case pg_query.AlterTableType_AT_AddColumn:
		colDef := cmd.Def.GetColumnDef()
		col, err := d.columnDef(colDef)
		if err != nil {
			return "", err
		}
		return verb + " " + col, nil

	case pg_query.AlterTableType_AT_DropColumn:
		return verb + " " + identifier(cmd.Name), nil

	case pg_query.AlterTableType_AT_AlterColumnType:
		colDef := cmd.Def.GetColumnDef()
		tn, err := d.typeName(colDef.TypeName)
		if err != nil {
			return "", err
		}
		return verb + " " + identifier(cmd.Name) + " TYPE " + tn, nil

	case pg_query.AlterTableType_AT_ColumnDefault:
		if cmd.Def == nil {
			return verb + " " + identifier(cmd.Name) + " DROP DEFAULT", nil
		}
		expr, err := d.deparseNode(cmd.Def, none)
		if err != nil {
			return "", err
		}
		return verb + " " + identifier(cmd.Name) + " SET DEFAULT " + expr, nil

	case pg_query.AlterTableType_AT_SetNotNull:
		return verb + " " + identifier(cmd.Name) + " SET NOT NULL", nil

	case pg_query.AlterTableType_AT_DropNotNull:
		return verb + " " + identifier(cmd.Name) + " DROP NOT NULL", nil

	case pg_query.AlterTableType_AT_AddConstraint:
		con, err := d.constraint(cmd.Def.GetConstraint())
		if err != nil {
			return "", err
		}
		return verb + " " + con, nil

	case pg_query.AlterTableType_AT_DropConstraint:
		return verb + " " + identifier(cmd.Name), nil
	}

	return "", &UnsupportedNode{Kind: "AlterTableCmd:" + cmd.Subtype.String(), Payload: cmd}
}

// renameStmt renders the ALTER ... RENAME family, dispatching the noun
// phrase through the catalog's ObjectType table.
func (d *deparser) renameStmt(s *pg_query.RenameStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	noun, ok := catalog.RenameObjectNoun(s.RenameType.String())
	if !ok {
		return "", &UnsupportedNode{Kind: "RenameStmt:" + s.RenameType.String(), Payload: s}
	}

	var subject string
	switch s.RenameType {
	case pg_query.ObjectType_OBJECT_COLUMN, pg_query.ObjectType_OBJECT_TABCONSTRAINT:
		rel, err := d.rangeVar(s.Relation)
		if err != nil {
			return "", err
		}
		subject = "ALTER TABLE " + rel + " RENAME " + noun + " " + identifier(s.Subname)
	default:
		rel, err := d.rangeVar(s.Relation)
		if err != nil {
			return "", err
		}
		subject = "ALTER " + noun + " " + rel + " RENAME"
	}

	return subject + " TO " + identifier(s.NewName), nil
}

// dropStmt renders DROP <noun> [IF EXISTS] name [, ...] [CASCADE].
func (d *deparser) dropStmt(s *pg_query.DropStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	noun, ok := catalog.DropObjectNoun(s.RemoveType.String())
	if !ok {
		return "", &UnsupportedNode{Kind: "DropStmt:" + s.RemoveType.String(), Payload: s}
	}

	var b strings.Builder
	b.WriteString("DROP " + noun)
	if s.Concurrent {
		b.WriteString(" CONCURRENTLY")
	}
	if s.MissingOk {
		b.WriteString(" IF EXISTS")
	}

	names := make([]string, 0, len(s.Objects))
	for _, obj := range s.Objects {
		name, err := d.dropObjectName(obj)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	b.WriteString(" " + strings.Join(names, ", "))

	if s.Behavior == pg_query.DropBehavior_DROP_CASCADE {
		b.WriteString(" CASCADE")
	}
	return b.String(), nil
}

// dropObjectName renders one DROP target, which is either a dotted List of
// String_ name parts or a bare node (e.g. a TypeName for DROP TYPE).
func (d *deparser) dropObjectName(obj *pg_query.Node) (string, error) {
	if l := obj.GetList(); l != nil {
		parts := make([]string, 0, len(l.Items))
		for _, item := range l.Items {
			str := item.GetString_()
			if str == nil {
				continue
			}
			parts = append(parts, identifier(str.Sval))
		}
		return strings.Join(parts, "."), nil
	}
	return d.deparseNode(obj, none)
}

// truncateStmt renders TRUNCATE [TABLE] rel [, ...] [RESTART IDENTITY] [CASCADE].
func (d *deparser) truncateStmt(s *pg_query.TruncateStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	rels := make([]string, 0, len(s.Relations))
	for _, r := range s.Relations {
		rv, err := d.rangeVar(r.GetRangeVar())
		if err != nil {
			return "", err
		}
		rels = append(rels, rv)
	}

	b := "TRUNCATE TABLE " + strings.Join(rels, ", ")
	if s.RestartSeqs {
		b += " RESTART IDENTITY"
	}
	if s.Behavior == pg_query.DropBehavior_DROP_CASCADE {
		b += " CASCADE"
	}
	return b, nil
}

// lockStmt renders LOCK TABLE rel [, ...] [IN mode MODE] [NOWAIT].
func (d *deparser) lockStmt(s *pg_query.LockStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	rels := make([]string, 0, len(s.Relations))
	for _, r := range s.Relations {
		rv, err := d.rangeVar(r.GetRangeVar())
		if err != nil {
			return "", err
		}
		rels = append(rels, rv)
	}

	b := "LOCK TABLE " + strings.Join(rels, ", ")
	if mode, ok := lockModeNames[s.Mode]; ok {
		b += " IN " + mode + " MODE"
	}
	if s.Nowait {
		b += " NOWAIT"
	}
	return b, nil
}

var lockModeNames = map[int32]string{
	1: "ACCESS SHARE",
	2: "ROW SHARE",
	3: "ROW EXCLUSIVE",
	4: "SHARE UPDATE EXCLUSIVE",
	5: "SHARE",
	6: "SHARE ROW EXCLUSIVE",
	7: "EXCLUSIVE",
	8: "ACCESS EXCLUSIVE",
}

// vacuumStmt renders VACUUM or ANALYZE over the given relations.
func (d *deparser) vacuumStmt(s *pg_query.VacuumStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	verb := "VACUUM"
	if !s.IsVacuumcmd {
		verb = "ANALYZE"
	}

	if len(s.Rels) == 0 {
		return verb, nil
	}

	rels := make([]string, 0, len(s.Rels))
	for _, r := range s.Rels {
		vr := r.GetVacuumRelation()
		if vr == nil || vr.Relation == nil {
			continue
		}
		rv, err := d.rangeVar(vr.Relation)
		if err != nil {
			return "", err
		}
		rels = append(rels, rv)
	}
	return verb + " " + strings.Join(rels, ", "), nil
}

// explainStmt renders EXPLAIN [(opt, ...)] query.
func (d *deparser) explainStmt(s *pg_query.ExplainStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	query, err := d.deparseNode(s.Query, none)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("EXPLAIN")
	if len(s.Options) > 0 {
		opts := make([]string, 0, len(s.Options))
		for _, o := range s.Options {
			de := o.GetDefElem()
			if de == nil {
				continue
			}
			opt, err := explainOption(de)
			if err != nil {
				return "", err
			}
			opts = append(opts, opt)
		}
		b.WriteString(" (" + strings.Join(opts, ", ") + ")")
	}
	b.WriteString(" " + query)
	return b.String(), nil
}

// explainOption renders one EXPLAIN option, e.g. ANALYZE, FORMAT JSON,
// VERBOSE FALSE (string values are upper-cased). A bare option (no argument) means the option name alone.
func explainOption(de *pg_query.DefElem) (string, error) {
	name := strings.ToUpper(de.Defname)
	if de.Arg == nil {
		return name, nil
	}
	switch v := de.Arg.Node.(type) {
	case *pg_query.Node_String_:
		return name + " " + strings.ToUpper(v.String_.Sval), nil
	case *pg_query.Node_Integer:
		return name + " " + formatInteger(v.Integer.Ival), nil
	case *pg_query.Node_Float:
		return name + " " + v.Float.Fval, nil
	}
	return "", &UnsupportedNode{Kind: "ExplainStmt:Option:" + name, Payload: de}
}

// grantStmt renders GRANT/REVOKE privilege [, ...] ON noun object [, ...]
// TO/FROM grantee [, ...].
func (d *deparser) grantStmt(s *pg_query.GrantStmt) (string, error) {
	if s == nil {
		return "", nil
	}

	privs := "ALL"
	if len(s.Privileges) > 0 {
		parts := make([]string, 0, len(s.Privileges))
		for _, p := range s.Privileges {
			ag := p.GetAccessPriv()
			if ag == nil {
				continue
			}
			parts = append(parts, strings.ToUpper(ag.PrivName))
		}
		privs = strings.Join(parts, ", ")
	}

	noun, _ := catalog.DropObjectNoun(s.Objtype.String())
	objs := make([]string, 0, len(s.Objects))
	for _, o := range s.Objects {
		if rv := o.GetRangeVar(); rv != nil {
			name, err := d.rangeVar(rv)
			if err != nil {
				return "", err
			}
			objs = append(objs, name)
			continue
		}
		name, err := d.dropObjectName(o)
		if err != nil {
			return "", err
		}
		objs = append(objs, name)
	}

	grantees := make([]string, 0, len(s.Grantees))
	for _, g := range s.Grantees {
		role := g.GetRoleSpec()
		if role == nil {
			continue
		}
		if role.Roletype == pg_query.RoleSpecType_ROLESPEC_PUBLIC {
			grantees = append(grantees, "PUBLIC")
			continue
		}
		grantees = append(grantees, identifier(role.Rolename))
	}

	var b strings.Builder
	if s.IsGrant {
		b.WriteString("GRANT " + privs)
		if noun != "" {
			b.WriteString(" ON " + noun)
		}
		b.WriteString(" " + strings.Join(objs, ", "))
		b.WriteString(" TO " + strings.Join(grantees, ", "))
	} else {
		b.WriteString("REVOKE " + privs)
		if noun != "" {
			b.WriteString(" ON " + noun)
		}
		b.WriteString(" " + strings.Join(objs, ", "))
		b.WriteString(" FROM " + strings.Join(grantees, ", "))
	}
	return b.String(), nil
}

// createStmt renders CREATE [TEMPORARY] TABLE [IF NOT EXISTS] rel (elts).
func (d *deparser) createStmt(s *pg_query.CreateStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	rel, err := d.rangeVar(s.Relation)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE")
	if s.Relation != nil && s.Relation.Relpersistence == "t" {
		b.WriteString(" TEMPORARY")
	}
	b.WriteString(" TABLE")
	if s.IfNotExists {
		b.WriteString(" IF NOT EXISTS")
	}
	b.WriteString(" " + rel + " (")

	elts := make([]string, 0, len(s.TableElts))
	for _, elt := range s.TableElts {
		s, err := d.deparseNode(elt, none)
		if err != nil {
			return "", err
		}
		elts = append(elts, s)
	}
	b.WriteString(strings.Join(elts, ", ") + ")")
	return b.String(), nil
}

// columnDef renders "name type [NOT NULL] [DEFAULT expr] [constraint ...]".
func (d *deparser) columnDef(c *pg_query.ColumnDef) (string, error) {
	if c == nil {
		return "", nil
	}
	tn, err := d.typeName(c.TypeName)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(identifier(c.Colname) + " " + tn)

	for _, con := range c.Constraints {
		s, err := d.deparseNode(con, none)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + s)
	}
	return b.String(), nil
}

// constraint renders a table or column constraint clause.
func (d *deparser) constraint(c *pg_query.Constraint) (string, error) {
	if c == nil {
		return "", nil
	}

	named := ""
	if c.Conname != "" {
		named = "CONSTRAINT " + identifier(c.Conname) + " "
	}

	switch c.Contype {
	case pg_query.ConstrType_CONSTR_NOTNULL:
		return named + "NOT NULL", nil
	case pg_query.ConstrType_CONSTR_NULL:
		return named + "NULL", nil
	case pg_query.ConstrType_CONSTR_DEFAULT:
		expr, err := d.deparseNode(c.RawExpr, none)
		if err != nil {
			return "", err
		}
		return named + "DEFAULT " + expr, nil
	case pg_query.ConstrType_CONSTR_CHECK:
		expr, err := d.deparseNode(c.RawExpr, none)
		if err != nil {
			return "", err
		}
		out := named + "CHECK (" + expr + ")"
		if c.SkipValidation {
			out += " NOT VALID"
		}
		return out, nil
	case pg_query.ConstrType_CONSTR_PRIMARY:
		cols, err := columnNames(c.Keys)
		if err != nil {
			return "", err
		}
		if cols == "" {
			return named + "PRIMARY KEY", nil
		}
		return named + "PRIMARY KEY (" + cols + ")", nil
	case pg_query.ConstrType_CONSTR_UNIQUE:
		cols, err := columnNames(c.Keys)
		if err != nil {
			return "", err
		}
		if cols == "" {
			return named + "UNIQUE", nil
		}
		return named + "UNIQUE (" + cols + ")", nil
	case pg_query.ConstrType_CONSTR_EXCLUSION:
		parts := make([]string, 0, len(c.Exclusions))
		for _, ex := range c.Exclusions {
			pair := ex.GetList()
			if pair == nil || len(pair.Items) != 2 {
				return "", &UnsupportedNode{Kind: "Constraint:EXCLUSION", Payload: c}
			}
			elem, err := d.indexElem(pair.Items[0].GetIndexElem())
			if err != nil {
				return "", err
			}
			op, err := d.operatorName(listItems(pair.Items[1]))
			if err != nil {
				return "", err
			}
			parts = append(parts, elem+" WITH "+op)
		}
		out := named + "EXCLUDE"
		if c.AccessMethod != "" {
			out += " USING " + identifier(c.AccessMethod)
		}
		out += " (" + strings.Join(parts, ", ") + ")"
		if c.WhereClause != nil {
			where, err := d.deparseNode(c.WhereClause, none)
			if err != nil {
				return "", err
			}
			out += " WHERE (" + where + ")"
		}
		return out, nil
	case pg_query.ConstrType_CONSTR_FOREIGN:
		cols, err := columnNames(c.FkAttrs)
		if err != nil {
			return "", err
		}
		refTable, err := d.rangeVar(c.Pktable)
		if err != nil {
			return "", err
		}
		refCols, err := columnNames(c.PkAttrs)
		if err != nil {
			return "", err
		}
		out := named + "FOREIGN KEY (" + cols + ") REFERENCES " + refTable
		if refCols != "" {
			out += " (" + refCols + ")"
		}
		return out, nil
	}

	return "", &UnsupportedNode{Kind: "Constraint:" + c.Contype.String(), Payload: c}
}

// indexElem renders one EXCLUDE or ON CONFLICT index element: its plain
// column name, or its expression when it has no name.
func (d *deparser) indexElem(e *pg_query.IndexElem) (string, error) {
	if e == nil {
		return "", nil
	}
	if e.Name != "" {
		return identifier(e.Name), nil
	}
	return d.deparseNode(e.Expr, ctxPrecedence)
}

func columnNames(keys []*pg_query.Node) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		str := k.GetString_()
		if str == nil {
			continue
		}
		parts = append(parts, identifier(str.Sval))
	}
	return strings.Join(parts, ", "), nil
}

// transactionStmt renders BEGIN/COMMIT/ROLLBACK/SAVEPOINT/RELEASE and their
// variants.
func (d *deparser) transactionStmt(s *pg_query.TransactionStmt) (string, error) {
	if s == nil {
		return "", nil
	}
	switch s.Kind {
	case pg_query.TransactionStmtKind_TRANS_STMT_BEGIN:
		return "BEGIN", nil
	case pg_query.TransactionStmtKind_TRANS_STMT_START:
		return "START TRANSACTION", nil
	case pg_query.TransactionStmtKind_TRANS_STMT_COMMIT:
		return "COMMIT", nil
	case pg_query.TransactionStmtKind_TRANS_STMT_ROLLBACK:
		return "ROLLBACK", nil
	case pg_query.TransactionStmtKind_TRANS_STMT_SAVEPOINT:
		return "SAVEPOINT " + identifier(s.SavepointName), nil
	case pg_query.TransactionStmtKind_TRANS_STMT_RELEASE:
		return "RELEASE SAVEPOINT " + identifier(s.SavepointName), nil
	case pg_query.TransactionStmtKind_TRANS_STMT_ROLLBACK_TO:
		return "ROLLBACK TO SAVEPOINT " + identifier(s.SavepointName), nil
	}
	return "", &UnsupportedTransactionKind{Kind: s.Kind.String()}
}
