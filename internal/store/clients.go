package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"greenlight-cli/internal/model"
)

const DefaultListLimit = 50

type ClientQuery struct {
	// Search is a case-insensitive substring matched against names, contact
	// fields and note content.
	Search string
	// Type filters by client type; empty means all.
	Type  model.ClientType
	Limit int
	Skip  int
}

// searchText is the denormalized haystack stored alongside each document.
func searchText(c model.Client) string {
	var parts []string
	switch d := c.Data.(type) {
	case model.PersonData:
		parts = append(parts, d.FirstName, d.LastName, d.Email, d.Phone, d.Company)
	case model.CompanyData:
		parts = append(parts, d.CompanyName, d.ContactPerson, d.Email, d.Phone)
	}
	for _, n := range c.Notes {
		parts = append(parts, n.Content)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (d *DB) ListClients(ctx context.Context, q ClientQuery) ([]model.Client, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}

	where := []string{}
	args := []any{}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if q.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, string(q.Type))
	}

	query := `SELECT doc_json FROM clients`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at_unixms DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var c model.Client
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decode client row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) GetClient(ctx context.Context, id string) (model.Client, error) {
	return getClient(ctx, d.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getClient(ctx context.Context, q queryer, id string) (model.Client, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc_json FROM clients WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrNotFound
	}
	if err != nil {
		return model.Client{}, err
	}
	var c model.Client
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return model.Client{}, fmt.Errorf("decode client %s: %w", id, err)
	}
	return c, nil
}

// InsertClient stores a fully formed client; id and timestamps are the caller's.
func (d *DB) InsertClient(ctx context.Context, c model.Client) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("insert client: missing id")
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `INSERT INTO clients(id, type, doc_json, search_text, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.Type), string(doc), searchText(c), unixMS(c.CreatedAt), unixMS(c.UpdatedAt))
	return err
}

// UpdateClient applies fn to the stored client inside a transaction and persists the result.
func (d *DB) UpdateClient(ctx context.Context, id string, fn func(c *model.Client) error) (model.Client, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Client{}, err
	}
	defer func() { _ = tx.Rollback() }()

	c, err := getClient(ctx, tx, id)
	if err != nil {
		return model.Client{}, err
	}
	if err := fn(&c); err != nil {
		return model.Client{}, err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return model.Client{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE clients SET type = ?, doc_json = ?, search_text = ?, updated_at_unixms = ? WHERE id = ?`,
		string(c.Type), string(doc), searchText(c), unixMS(c.UpdatedAt), id); err != nil {
		return model.Client{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (d *DB) DeleteClient(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func unixMS(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
