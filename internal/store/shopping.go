package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/model"
)

type ShoppingStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db, now: utcNow}
}

// --- List methods ---

func scanList(sc scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := sc.Scan(&l.ID, &l.OwnerID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, owner_id, name, created_at`

func (s *ShoppingStore) CreateList(ownerID, name string) (*model.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	ok, err := ownerExists(s.db, ownerID)
	if err != nil {
		return nil, apperror.Persistence("check owner", err)
	}
	if !ok {
		return nil, apperror.NotFound("user", ownerID)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO shopping_lists (`+listCols+`) VALUES (?, ?, ?, ?)`,
		id, ownerID, name, s.now(),
	)
	if err != nil {
		return nil, apperror.Persistence("insert shopping list", err)
	}
	return s.GetList(id)
}

func (s *ShoppingStore) GetList(id string) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("shopping list", id)
	}
	if err != nil {
		return nil, apperror.Persistence("get shopping list", err)
	}
	return l, nil
}

// ListLists returns the owner's lists, newest first.
func (s *ShoppingStore) ListLists(ownerID string) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+listCols+` FROM shopping_lists WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, apperror.Persistence("list shopping lists", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, apperror.Persistence("scan shopping list", err)
		}
		lists = append(lists, *l)
	}
	return lists, apperror.Persistence("list shopping lists", rows.Err())
}

// DeleteList removes a list and, through the foreign key, its items.
func (s *ShoppingStore) DeleteList(id string) error {
	result, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return apperror.Persistence("delete shopping list", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return apperror.NotFound("shopping list", id)
	}
	return nil
}

// --- Item methods ---

func scanItem(sc scanner) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var bought int
	err := sc.Scan(&item.ID, &item.ListID, &item.Name, &item.Quantity, &item.Unit, &bought, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Bought = bought != 0
	return &item, nil
}

const itemCols = `id, list_id, name, quantity, unit, bought, created_at`

func validateItem(name string, quantity float64) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if quantity < 0 {
		return apperror.ValidationFailed("quantity", "quantity must not be negative")
	}
	return nil
}

func (s *ShoppingStore) AddItem(listID, name string, quantity float64, unit string) (*model.ShoppingListItem, error) {
	if err := validateItem(name, quantity); err != nil {
		return nil, err
	}
	if _, err := s.GetList(listID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO shopping_list_items (`+itemCols+`) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		id, listID, strings.TrimSpace(name), quantity, unit, s.now(),
	)
	if err != nil {
		return nil, apperror.Persistence("insert shopping item", err)
	}
	return s.GetItem(id)
}

func (s *ShoppingStore) GetItem(id string) (*model.ShoppingListItem, error) {
	return getItem(s.db, id)
}

func getItem(q querier, id string) (*model.ShoppingListItem, error) {
	row := q.QueryRow(`SELECT `+itemCols+` FROM shopping_list_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("shopping item", id)
	}
	if err != nil {
		return nil, apperror.Persistence("get shopping item", err)
	}
	return item, nil
}

// ItemOwner returns the owner of the list an item belongs to.
func (s *ShoppingStore) ItemOwner(itemID string) (string, error) {
	return itemOwner(s.db, itemID)
}

func itemOwner(q querier, itemID string) (string, error) {
	var owner string
	err := q.QueryRow(
		`SELECT l.owner_id FROM shopping_list_items i JOIN shopping_lists l ON l.id = i.list_id WHERE i.id = ?`,
		itemID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.NotFound("shopping item", itemID)
	}
	if err != nil {
		return "", apperror.Persistence("get item owner", err)
	}
	return owner, nil
}

// ListItems returns the items of a list ordered by name. Bought items are
// kept for history and only returned when includeBought is set.
func (s *ShoppingStore) ListItems(listID string, includeBought bool) ([]model.ShoppingListItem, error) {
	query := `SELECT ` + itemCols + ` FROM shopping_list_items WHERE list_id = ?`
	if !includeBought {
		query += ` AND bought = 0`
	}
	query += ` ORDER BY name COLLATE NOCASE ASC, rowid ASC`

	rows, err := s.db.Query(query, listID)
	if err != nil {
		return nil, apperror.Persistence("list shopping items", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, apperror.Persistence("scan shopping item", err)
		}
		items = append(items, *item)
	}
	return items, apperror.Persistence("list shopping items", rows.Err())
}

func (s *ShoppingStore) UpdateItem(id, name string, quantity float64, unit string) (*model.ShoppingListItem, error) {
	if err := validateItem(name, quantity); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`UPDATE shopping_list_items SET name = ?, quantity = ?, unit = ? WHERE id = ?`,
		strings.TrimSpace(name), quantity, unit, id,
	)
	if err != nil {
		return nil, apperror.Persistence("update shopping item", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("shopping item", id)
	}
	return s.GetItem(id)
}

func (s *ShoppingStore) DeleteItem(id string) error {
	result, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return apperror.Persistence("delete shopping item", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return apperror.NotFound("shopping item", id)
	}
	return nil
}

// ConvertItem turns a shopping-list item into a grocery owned by ownerID and
// marks the item bought, in one transaction. The grocery takes the item's
// name, quantity and unit, is purchased now and starts active.
func (s *ShoppingStore) ConvertItem(ownerID, itemID string, conv model.Conversion) (*model.Grocery, error) {
	if err := validatePrice(conv.Price); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperror.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	owner, err := itemOwner(tx, itemID)
	if err != nil {
		return nil, err
	}
	if owner != ownerID {
		return nil, apperror.NotFound("shopping item", itemID)
	}

	item, err := getItem(tx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Bought {
		return nil, apperror.Conflict("shopping item already bought")
	}

	now := s.now()
	groceryID, err := insertGrocery(tx, ownerID, model.GroceryInput{
		Name:          item.Name,
		PurchasedDate: now,
		ExpiryDate:    conv.ExpiryDate,
		Price:         conv.Price,
		Quantity:      item.Quantity,
		Unit:          item.Unit,
		Category:      conv.Category,
	}, now)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`UPDATE shopping_list_items SET bought = 1 WHERE id = ?`, itemID); err != nil {
		return nil, apperror.Persistence("mark item bought", err)
	}

	gs := &GroceryStore{q: tx, now: s.now}
	g, err := gs.GetByID(groceryID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Persistence("commit tx", err)
	}
	return g, nil
}
