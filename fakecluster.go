package plume

import "bytes"
import "errors"
import "fmt"
import "sort"
import "strconv"
import "strings"
import "time"

// FakeCassandra returns a Cluster interface to an in-memory imitation of Cassandra. This is
// great for unit testing, but beware that it only understands the statement shapes produced by
// this package's builders: CREATE TABLE, INSERT, DELETE, and SELECT with equality/range terms,
// ORDER BY, LIMIT, and COUNT(*).
func FakeCassandra() Cluster {
	return &fakeCluster{
		keyspace: "fake",
		tables:   make(map[string]*fakeTable),
	}
}

type fakeCluster struct {
	keyspace string
	tables   map[string]*fakeTable
}

type fakeTable struct {
	Columns []string
	Key     []string
	Rows    []fakeRow
}

type fakeRow map[string]interface{}

func (c *fakeCluster) Close() {}

func (c *fakeCluster) GetKeyspace() string {
	return c.keyspace
}

func (c *fakeCluster) Query(stmts ...CQL) Query {
	return c.Batch(LoggedBatch, stmts...)
}

// Batch executes statements one at a time; the fake makes no atomicity distinction.
func (c *fakeCluster) Batch(kind BatchKind, stmts ...CQL) Query {
	var last *fakeQuery
	for _, stmt := range stmts {
		last = c.execute(stmt)
		if last.err != nil {
			return last
		}
	}
	if last == nil {
		return &fakeQuery{}
	}
	return last
}

func (c *fakeCluster) execute(stmt CQL) *fakeQuery {
	text := string(stmt.PreparedCQL)
	var err error
	var rows [][]interface{}
	switch {
	case strings.HasPrefix(text, "CREATE TABLE "):
		err = c.createTable(text)
	case strings.HasPrefix(text, "INSERT INTO "):
		err = c.insert(text, stmt.params)
	case strings.HasPrefix(text, "DELETE FROM "):
		err = c.delete(text, stmt.params)
	case strings.HasPrefix(text, "SELECT "):
		rows, err = c.query(text, stmt.params)
	default:
		err = errors.New("fake cassandra cannot execute: " + text)
	}
	return &fakeQuery{rows: rows, err: err}
}

func (c *fakeCluster) createTable(text string) error {
	rest := strings.TrimPrefix(text, "CREATE TABLE ")
	open := strings.Index(rest, " (")
	if open < 0 {
		return errors.New("malformed CREATE TABLE: " + text)
	}
	name := strings.ToLower(rest[:open])
	body := rest[open+2:]
	pk := strings.Index(body, "PRIMARY KEY (")
	if pk < 0 {
		return errors.New("CREATE TABLE without PRIMARY KEY: " + text)
	}
	table := &fakeTable{Rows: make([]fakeRow, 0)}
	colsPart := strings.TrimSuffix(strings.TrimSpace(body[:pk]), ",")
	for _, def := range strings.Split(colsPart, ", ") {
		fields := strings.Fields(def)
		if len(fields) < 2 {
			return errors.New("malformed column definition: " + def)
		}
		table.Columns = append(table.Columns, fields[0])
	}
	keyPart := body[pk+len("PRIMARY KEY ("):]
	end := strings.Index(keyPart, ")")
	if end < 0 {
		return errors.New("malformed PRIMARY KEY: " + text)
	}
	table.Key = strings.Split(keyPart[:end], ", ")
	c.tables[name] = table
	return nil
}

func (c *fakeCluster) getTable(name string) (*fakeTable, error) {
	table, ok := c.tables[strings.ToLower(name)]
	if !ok {
		return nil, errors.New("column family doesn't exist: " + name)
	}
	return table, nil
}

func (c *fakeCluster) insert(text string, params []interface{}) error {
	rest := strings.TrimPrefix(text, "INSERT INTO ")
	open := strings.Index(rest, " (")
	if open < 0 {
		return errors.New("malformed INSERT: " + text)
	}
	table, err := c.getTable(rest[:open])
	if err != nil {
		return err
	}
	colsPart := rest[open+2:]
	end := strings.Index(colsPart, ")")
	cols := strings.Split(colsPart[:end], ", ")
	if len(cols) != len(params) {
		return errors.New("INSERT column/value count mismatch: " + text)
	}
	row := make(fakeRow)
	for i, col := range cols {
		row[col] = normalizeValue(params[i])
	}
	// upsert semantics: an existing row with the same primary key is overwritten
	for _, existing := range table.Rows {
		if matched, err := rowsMatchKey(existing, row, table.Key); err != nil {
			return err
		} else if matched {
			for k, v := range row {
				existing[k] = v
			}
			return nil
		}
	}
	table.Rows = append(table.Rows, row)
	return nil
}

func (c *fakeCluster) delete(text string, params []interface{}) error {
	rest := strings.TrimPrefix(text, "DELETE FROM ")
	wh := strings.Index(rest, " WHERE ")
	if wh < 0 {
		return errors.New("DELETE without WHERE: " + text)
	}
	table, err := c.getTable(rest[:wh])
	if err != nil {
		return err
	}
	terms, err := parseWhere(rest[wh+len(" WHERE "):], params)
	if err != nil {
		return err
	}
	kept := make([]fakeRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		matched, err := matchRow(row, terms)
		if err != nil {
			return err
		}
		if !matched {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
	return nil
}

func (c *fakeCluster) query(text string, params []interface{}) ([][]interface{}, error) {
	rest := strings.TrimPrefix(text, "SELECT ")
	from := strings.Index(rest, " FROM ")
	if from < 0 {
		return nil, errors.New("malformed SELECT: " + text)
	}
	cols := strings.Split(rest[:from], ", ")
	rest = rest[from+len(" FROM "):]
	rest = strings.TrimSuffix(rest, " ALLOW FILTERING")

	limit := 0
	if i := strings.Index(rest, " LIMIT "); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(rest[i+len(" LIMIT "):]))
		if err != nil {
			return nil, err
		}
		limit = n
		rest = rest[:i]
	}

	var orderBy []order
	if i := strings.Index(rest, " ORDER BY "); i >= 0 {
		for _, term := range strings.Split(rest[i+len(" ORDER BY "):], ", ") {
			fields := strings.Fields(term)
			o := order{col: fields[0]}
			if len(fields) > 1 && strings.EqualFold(fields[1], "DESC") {
				o.dir = desc
			}
			orderBy = append(orderBy, o)
		}
		rest = rest[:i]
	}

	var terms []comparison
	if i := strings.Index(rest, " WHERE "); i >= 0 {
		var err error
		terms, err = parseWhere(rest[i+len(" WHERE "):], params)
		if err != nil {
			return nil, err
		}
		rest = rest[:i]
	}

	table, err := c.getTable(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}

	counting := len(cols) == 1 && strings.EqualFold(cols[0], "COUNT(*)")
	if len(cols) == 1 && cols[0] == "*" {
		cols = table.Columns
	}

	matched := make([]fakeRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		ok, err := matchRow(row, terms)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	if counting {
		return [][]interface{}{{int64(len(matched))}}, nil
	}

	if len(orderBy) > 0 {
		var sortErr error
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range orderBy {
				cmp, err := compareValues(matched[i][o.col], matched[j][o.col])
				if err != nil {
					sortErr = err
					return false
				}
				if cmp == 0 {
					continue
				}
				if o.dir == desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([][]interface{}, len(matched))
	for i, row := range matched {
		vals := make([]interface{}, len(cols))
		for j, col := range cols {
			vals[j] = row[col]
		}
		results[i] = vals
	}
	return results, nil
}

type comparison struct {
	col string
	op  string
	val interface{}
}

type orderDir int

const (
	asc orderDir = iota
	desc
)

type order struct {
	col string
	dir orderDir
}

// parseWhere handles conjunctions of "Col OP ?" terms, consuming params in order.
func parseWhere(clause string, params []interface{}) ([]comparison, error) {
	terms := strings.Split(clause, " AND ")
	if len(terms) > len(params) {
		return nil, errors.New("not enough bound params for: " + clause)
	}
	result := make([]comparison, len(terms))
	for i, term := range terms {
		fields := strings.Fields(term)
		if len(fields) != 3 || fields[2] != "?" {
			return nil, errors.New("unsupported WHERE term: " + term)
		}
		switch fields[1] {
		case "=", "<", "<=", ">", ">=":
		default:
			return nil, errors.New("unsupported operator in: " + term)
		}
		result[i] = comparison{col: fields[0], op: fields[1], val: normalizeValue(params[i])}
	}
	return result, nil
}

func matchRow(row fakeRow, terms []comparison) (bool, error) {
	for _, term := range terms {
		left, ok := row[term.col]
		if !ok || left == nil {
			return false, nil
		}
		cmp, err := compareValues(left, term.val)
		if err != nil {
			return false, err
		}
		var result bool
		switch term.op {
		case "=":
			result = cmp == 0
		case "<":
			result = cmp < 0
		case "<=":
			result = cmp <= 0
		case ">":
			result = cmp > 0
		case ">=":
			result = cmp >= 0
		}
		if !result {
			return false, nil
		}
	}
	return true, nil
}

func rowsMatchKey(a, b fakeRow, key []string) (bool, error) {
	for _, k := range key {
		av, aok := a[k]
		bv, bok := b[k]
		if !aok || !bok {
			return false, errors.New("key value for " + k + " not given")
		}
		cmp, err := compareValues(av, bv)
		if err != nil || cmp != 0 {
			return false, err
		}
	}
	return true, nil
}

func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	default:
		return v
	}
}

func compareValues(a, b interface{}) (int, error) {
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		if !ok {
			break
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case string:
		y, ok := b.(string)
		if !ok {
			break
		}
		return strings.Compare(x, y), nil
	case []byte:
		y, ok := b.([]byte)
		if !ok {
			break
		}
		return bytes.Compare(x, y), nil
	case float64:
		y, ok := b.(float64)
		if !ok {
			break
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			break
		}
		if x == y {
			return 0, nil
		}
		if !x {
			return -1, nil
		}
		return 1, nil
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			break
		}
		switch {
		case x.Before(y):
			return -1, nil
		case x.After(y):
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

type fakeQuery struct {
	rows [][]interface{}
	err  error
}

func (q *fakeQuery) Close() error {
	return q.err
}

func (q *fakeQuery) Exec() error {
	return q.err
}

func (q *fakeQuery) Scan(dests ...interface{}) bool {
	if q.err != nil || len(q.rows) == 0 {
		return false
	}
	row := q.rows[0]
	q.rows = q.rows[1:]
	if len(row) != len(dests) {
		q.err = errors.New("number of destinations and number of result cols do not match")
		return false
	}
	for i, dest := range dests {
		if err := assignValue(dest, row[i]); err != nil {
			q.err = err
			return false
		}
	}
	return true
}

func assignValue(dest, val interface{}) error {
	switch d := dest.(type) {
	case *int64:
		if v, ok := val.(int64); ok {
			*d = v
			return nil
		}
	case *int:
		if v, ok := val.(int64); ok {
			*d = int(v)
			return nil
		}
	case *string:
		if v, ok := val.(string); ok {
			*d = v
			return nil
		}
	case *[]byte:
		if v, ok := val.([]byte); ok {
			*d = v
			return nil
		}
		if val == nil {
			*d = nil
			return nil
		}
	case *float64:
		if v, ok := val.(float64); ok {
			*d = v
			return nil
		}
	case *bool:
		if v, ok := val.(bool); ok {
			*d = v
			return nil
		}
	case *time.Time:
		if v, ok := val.(time.Time); ok {
			*d = v
			return nil
		}
	case *interface{}:
		*d = val
		return nil
	}
	return fmt.Errorf("cannot scan %T into %T", val, dest)
}
