package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shoplist/internal"
)

// CreateList stores an empty shopping list. emailID links it to the recipe
// email it was built from and may be nil.
func (d *DB) CreateList(name string, emailID *int) (internal.ShoppingList, error) {
	publicID := uuid.NewString()
	result, err := d.conn.Exec(`INSERT INTO shopping_lists (publicId, name, emailId) VALUES (?, ?, ?)`, publicID, name, emailID)
	if err != nil {
		return internal.ShoppingList{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.ShoppingList{}, err
	}
	return d.GetList(id)
}

func (d *DB) InsertListItems(listID int64, items []internal.ListItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO list_items (listId, lineNo, source, rawLine, quantity, item, matchStatus, confidence, matchReason, productId, candidatesJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		candidates := item.Candidates
		if candidates == nil {
			candidates = []internal.MatchCandidate{}
		}
		candidatesJSON, _ := json.Marshal(candidates)
		status := item.MatchStatus
		if status == "" {
			status = internal.MatchNotFound
		}
		reason := item.MatchReason
		if reason == "" {
			reason = internal.ReasonNone
		}
		if _, err := stmt.Exec(
			listID, item.LineNo, string(item.Source), item.RawLine, item.Quantity, item.Item,
			string(status), item.Confidence, string(reason), item.ProductID, string(candidatesJSON),
		); err != nil {
			return fmt.Errorf("insert list item %d: %w", item.LineNo, err)
		}
	}

	return tx.Commit()
}

const listSelect = `
SELECT l.id, l.publicId, l.name, l.emailId, l.createdAt,
       (SELECT COUNT(*) FROM list_items li WHERE li.listId = l.id)
FROM shopping_lists l`

func (d *DB) GetList(id int64) (internal.ShoppingList, error) {
	list, err := scanList(d.conn.QueryRow(listSelect+` WHERE l.id = ?`, id))
	if errors.Is(err, ErrNotFound) {
		return list, fmt.Errorf("list %d: %w", id, err)
	}
	return list, err
}

func (d *DB) GetListByPublicID(publicID string) (internal.ShoppingList, error) {
	list, err := scanList(d.conn.QueryRow(listSelect+` WHERE l.publicId = ?`, publicID))
	if errors.Is(err, ErrNotFound) {
		return list, fmt.Errorf("list %s: %w", publicID, err)
	}
	return list, err
}

// ListLists returns the newest lists first.
func (d *DB) ListLists(limit int) ([]internal.ShoppingList, error) {
	if limit <= 0 {
		limit = 100
	}
	return d.queryLists(listSelect+` ORDER BY l.id DESC LIMIT ?`, limit)
}

func (d *DB) ListListsForEmail(emailID int) ([]internal.ShoppingList, error) {
	return d.queryLists(listSelect+` WHERE l.emailId = ? ORDER BY l.id`, emailID)
}

func (d *DB) queryLists(query string, args ...any) ([]internal.ShoppingList, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ShoppingList{}
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, list)
	}
	return out, rows.Err()
}

// GetListItems returns the items of a list in source line order, joined with
// their catalog product.
func (d *DB) GetListItems(listID int64) ([]internal.ListItem, error) {
	rows, err := d.conn.Query(`
SELECT li.id, li.listId, li.lineNo, li.source, li.rawLine, li.quantity, li.item,
       li.matchStatus, li.confidence, li.matchReason, li.productId,
       p.name, p.aisle, p.category, li.candidatesJson
FROM list_items li
LEFT JOIN products p ON p.id = li.productId
WHERE li.listId = ?
ORDER BY li.lineNo ASC, li.id ASC
`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ListItem{}
	for rows.Next() {
		var item internal.ListItem
		var candidatesJSON string
		if err := rows.Scan(
			&item.ID, &item.ListID, &item.LineNo, &item.Source, &item.RawLine, &item.Quantity, &item.Item,
			&item.MatchStatus, &item.Confidence, &item.MatchReason, &item.ProductID,
			&item.ProductName, &item.Aisle, &item.Category, &candidatesJSON,
		); err != nil {
			return nil, err
		}

		_ = json.Unmarshal([]byte(candidatesJSON), &item.Candidates)
		if len(item.Candidates) > 1 {
			item.Candidate2Name = &item.Candidates[1].Name
			item.Candidate2Score = &item.Candidates[1].Score
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ClearEmailLists removes the lists previously built from an email so it can
// be processed again.
func (d *DB) ClearEmailLists(emailID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM list_items WHERE listId IN (SELECT id FROM shopping_lists WHERE emailId = ?)`, emailID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM shopping_lists WHERE emailId = ?`, emailID); err != nil {
		return err
	}
	return tx.Commit()
}

func scanList(s rowScanner) (internal.ShoppingList, error) {
	var list internal.ShoppingList
	var emailID sql.NullInt64
	err := s.Scan(&list.ID, &list.PublicID, &list.Name, &emailID, &list.CreatedAt, &list.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.ShoppingList{}, ErrNotFound
	}
	if err != nil {
		return internal.ShoppingList{}, err
	}
	if emailID.Valid {
		id := int(emailID.Int64)
		list.EmailID = &id
	}
	return list, nil
}
