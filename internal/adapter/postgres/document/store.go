// Package document implements the document store on a single Postgres table
// holding JSONB documents keyed by collection and id.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/postgres"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

const table = "documents"

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// Field names are interpolated into ORDER BY expressions.
	fieldName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

type row struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	Data      []byte    `db:"data"`
}

// Store is a docstore.Store on Postgres. Writes inside TxManager.RunInTx use
// the transaction from the context.
type Store struct {
	q postgres.Querier
}

// New creates a Store.
func New(q postgres.Querier) *Store {
	return &Store{q: q}
}

func (s *Store) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, s.q)
}

// Create inserts a new document and returns its id.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Record) (string, error) {
	id := uuid.NewString()
	data, err := encode(fields)
	if err != nil {
		return "", fmt.Errorf("%s: encode: %w", collection, err)
	}

	query, args, err := psql.Insert(table).
		Columns("collection", "id", "data").
		Values(collection, id, data).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%s: build insert: %w", collection, err)
	}

	var createdAt time.Time
	if err := s.querier(ctx).QueryRow(ctx, query, args...).Scan(&createdAt); err != nil {
		return "", postgres.MapError(err, collection, id)
	}
	return id, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Record, error) {
	query, args, err := psql.Select("id", "created_at", "data").
		From(table).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s %s: build select: %w", collection, id, err)
	}

	var r row
	if err := pgxscan.Get(ctx, s.querier(ctx), &r, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, collection, id)
	}
	return decode(r)
}

// Put upserts a document under a known id.
func (s *Store) Put(ctx context.Context, collection, id string, fields docstore.Record) error {
	data, err := encode(fields)
	if err != nil {
		return fmt.Errorf("%s %s: encode: %w", collection, id, err)
	}

	query, args, err := psql.Insert(table).
		Columns("collection", "id", "data").
		Values(collection, id, data).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s %s: build upsert: %w", collection, id, err)
	}

	if _, err := s.querier(ctx).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, collection, id)
	}
	return nil
}

// Update merges or replaces the document data. The precondition is checked
// in the same statement with JSONB containment.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error {
	data, err := encode(fields)
	if err != nil {
		return fmt.Errorf("%s %s: encode: %w", collection, id, err)
	}

	b := psql.Update(table)
	if opts.MergeOnly {
		b = b.Set("data", sq.Expr("data || ?::jsonb", data))
	} else {
		b = b.Set("data", sq.Expr("?::jsonb", data))
	}
	b = b.Where(sq.Eq{"collection": collection, "id": id})
	if len(opts.Precondition) > 0 {
		exact := make(map[string]any, len(opts.Precondition))
		var optional []string
		for field, want := range opts.Precondition {
			if _, ok := want.(docstore.OrAbsent); ok {
				optional = append(optional, field)
				continue
			}
			exact[field] = want
		}
		if len(exact) > 0 {
			pre, err := json.Marshal(exact)
			if err != nil {
				return fmt.Errorf("%s %s: encode precondition: %w", collection, id, err)
			}
			b = b.Where("data @> ?::jsonb", string(pre))
		}
		slices.Sort(optional)
		for _, field := range optional {
			pred, err := dataMatch(field, opts.Precondition[field])
			if err != nil {
				return fmt.Errorf("%s %s: encode precondition: %w", collection, id, err)
			}
			b = b.Where(pred)
		}
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("%s %s: build update: %w", collection, id, err)
	}

	tag, err := s.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, collection, id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	exists, err := s.exists(ctx, collection, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %s: precondition failed: %w", collection, id, domain.ErrConflict)
}

func (s *Store) exists(ctx context.Context, collection, id string) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		collection, id,
	).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, collection, id)
	}
	return exists, nil
}

// Query filters with JSONB containment and pages with a keyset on
// (order column, id).
func (s *Store) Query(ctx context.Context, q docstore.Query) (docstore.Result, error) {
	b := psql.Select("id", "created_at", "data").
		From(table).
		Where(sq.Eq{"collection": q.Collection})

	for _, f := range q.Filters {
		switch f.Field {
		case docstore.FieldID:
			b = b.Where(sq.Eq{"id": f.Value})
		case docstore.FieldCreatedAt:
			b = b.Where(sq.Eq{"created_at": f.Value})
		default:
			pred, err := dataMatch(f.Field, f.Value)
			if err != nil {
				return docstore.Result{}, fmt.Errorf("%s: encode filter %s: %w", q.Collection, f.Field, err)
			}
			b = b.Where(pred)
		}
	}

	orderField := q.OrderBy.Field
	if orderField == "" {
		orderField = docstore.FieldCreatedAt
	}
	col, cast, err := orderColumn(orderField)
	if err != nil {
		return docstore.Result{}, fmt.Errorf("%s: %w", q.Collection, err)
	}
	dir, op := "ASC", ">"
	if q.OrderBy.Desc {
		dir, op = "DESC", "<"
	}
	b = b.OrderBy(col+" "+dir, "id "+dir)

	if q.After != nil {
		value, err := cursorValue(orderField, q.After.Value)
		if err != nil {
			return docstore.Result{}, fmt.Errorf("%s: %w", q.Collection, err)
		}
		b = b.Where(fmt.Sprintf("(%s, id) %s (?%s, ?)", col, op, cast), value, q.After.ID)
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return docstore.Result{}, fmt.Errorf("%s: build query: %w", q.Collection, err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, s.querier(ctx), &rows, query, args...); err != nil {
		return docstore.Result{}, postgres.MapError(err, q.Collection, "query")
	}

	res := docstore.Result{Records: make([]docstore.Record, 0, len(rows))}
	for _, r := range rows {
		rec, err := decode(r)
		if err != nil {
			return docstore.Result{}, err
		}
		res.Records = append(res.Records, rec)
	}
	if q.Limit > 0 && len(res.Records) == q.Limit {
		res.Next = docstore.CursorOf(res.Records[len(res.Records)-1], docstore.OrderBy{Field: orderField})
	}
	return res, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.querier(ctx).Exec(ctx, "SELECT 1"); err != nil {
		return postgres.MapError(err, table, "ping")
	}
	return nil
}

// dataMatch is the predicate for field holding want in the data column. An
// OrAbsent value also accepts a missing key or a JSON null.
func dataMatch(field string, want any) (sq.Sqlizer, error) {
	opt, orAbsent := want.(docstore.OrAbsent)
	if orAbsent {
		want = opt.Value
	}
	doc, err := json.Marshal(map[string]any{field: want})
	if err != nil {
		return nil, err
	}
	if !orAbsent {
		return sq.Expr("data @> ?::jsonb", string(doc)), nil
	}
	return sq.Expr("(data -> ?::text IS NULL OR data -> ?::text = 'null'::jsonb OR data @> ?::jsonb)",
		field, field, string(doc)), nil
}

func orderColumn(field string) (col, cast string, err error) {
	switch field {
	case docstore.FieldCreatedAt:
		return "created_at", "", nil
	case docstore.FieldID:
		return "id", "", nil
	}
	if !fieldName.MatchString(field) {
		return "", "", fmt.Errorf("order field %q: %w", field, domain.ErrValidation)
	}
	return "data->'" + field + "'", "::jsonb", nil
}

func cursorValue(field string, v any) (any, error) {
	switch field {
	case docstore.FieldCreatedAt:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("cursor %q: %w", t, domain.ErrValidation)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("cursor value %v: %w", v, domain.ErrValidation)
	case docstore.FieldID:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cursor value: %w", err)
	}
	return string(raw), nil
}

// encode drops system fields; they live in their own columns.
func encode(fields docstore.Record) (string, error) {
	data := make(docstore.Record, len(fields))
	for k, v := range fields {
		if k == docstore.FieldID || k == docstore.FieldCreatedAt {
			continue
		}
		data[k] = v
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decode(r row) (docstore.Record, error) {
	rec := docstore.Record{}
	if len(r.Data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(r.Data))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("document %s: decode: %w", r.ID, err)
		}
	}
	rec[docstore.FieldID] = r.ID
	rec[docstore.FieldCreatedAt] = r.CreatedAt.UTC()
	return rec, nil
}
