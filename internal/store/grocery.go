package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/model"
)

// GroceryStore persists grocery records scoped by owner. A store returned by
// InTx is bound to one transaction; otherwise each call is its own statement.
type GroceryStore struct {
	db  *sql.DB
	q   querier
	now func() time.Time
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db, q: db, now: utcNow}
}

// InTx runs fn against a GroceryStore bound to a single transaction. The
// transaction commits only if fn returns nil. Nested calls reuse the
// enclosing transaction.
func (s *GroceryStore) InTx(fn func(tx *GroceryStore) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperror.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(&GroceryStore{q: tx, now: s.now}); err != nil {
		return err
	}
	return apperror.Persistence("commit tx", tx.Commit())
}

func scanGrocery(sc scanner) (*model.Grocery, error) {
	var g model.Grocery
	var price int64
	var wasted int
	var wastedDate sql.NullTime

	err := sc.Scan(
		&g.ID, &g.OwnerID, &g.Name, &g.Quantity, &g.Unit, &price, &g.Category,
		&g.PurchasedDate, &g.ExpiryDate, &wasted, &wastedDate, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Price = model.Money(price)
	g.IsWasted = wasted != 0
	if wastedDate.Valid {
		t := wastedDate.Time
		g.WastedDate = &t
	}
	return &g, nil
}

const groceryCols = `id, owner_id, name, quantity, unit, price_cents, category, purchased_date, expiry_date, is_wasted, wasted_date, created_at`

func validateGrocery(name string, quantity float64, price model.Money) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if quantity < 0 {
		return apperror.ValidationFailed("quantity", "quantity must not be negative")
	}
	return validatePrice(price)
}

func validatePrice(price model.Money) error {
	if price < 0 {
		return apperror.ValidationFailed("price", "price must not be negative")
	}
	if price > model.MaxPrice {
		return apperror.ValidationFailed("price", "price must be at most "+model.MaxPrice.String())
	}
	return nil
}

func (s *GroceryStore) GetByID(id string) (*model.Grocery, error) {
	row := s.q.QueryRow(`SELECT `+groceryCols+` FROM groceries WHERE id = ?`, id)
	g, err := scanGrocery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("grocery", id)
	}
	if err != nil {
		return nil, apperror.Persistence("get grocery", err)
	}
	return g, nil
}

// Create inserts a grocery owned by ownerID. A record created already wasted
// gets the current time as its wasted date.
func (s *GroceryStore) Create(ownerID string, in model.GroceryInput) (*model.Grocery, error) {
	if err := validateGrocery(in.Name, in.Quantity, in.Price); err != nil {
		return nil, err
	}

	ok, err := ownerExists(s.q, ownerID)
	if err != nil {
		return nil, apperror.Persistence("check owner", err)
	}
	if !ok {
		return nil, apperror.NotFound("user", ownerID)
	}

	id, err := insertGrocery(s.q, ownerID, in, s.now())
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func insertGrocery(q querier, ownerID string, in model.GroceryInput, now time.Time) (string, error) {
	id := uuid.NewString()
	var wastedDate sql.NullTime
	if in.IsWasted {
		wastedDate = sql.NullTime{Time: now, Valid: true}
	}

	_, err := q.Exec(
		`INSERT INTO groceries (`+groceryCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, strings.TrimSpace(in.Name), in.Quantity, in.Unit, int64(in.Price), in.Category,
		in.PurchasedDate.UTC(), in.ExpiryDate.UTC(), boolToInt(in.IsWasted), wastedDate, now,
	)
	if err != nil {
		return "", apperror.Persistence("insert grocery", err)
	}
	return id, nil
}

// Update overwrites the mutable fields of a grocery. Category and the wasted
// state are left as they are.
func (s *GroceryStore) Update(id string, in model.GroceryUpdate) (*model.Grocery, error) {
	if err := validateGrocery(in.Name, in.Quantity, in.Price); err != nil {
		return nil, err
	}

	result, err := s.q.Exec(
		`UPDATE groceries SET name = ?, expiry_date = ?, price_cents = ?, purchased_date = ?, quantity = ?, unit = ? WHERE id = ?`,
		strings.TrimSpace(in.Name), in.ExpiryDate.UTC(), int64(in.Price), in.PurchasedDate.UTC(), in.Quantity, in.Unit, id,
	)
	if err != nil {
		return nil, apperror.Persistence("update grocery", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("grocery", id)
	}
	return s.GetByID(id)
}

func (s *GroceryStore) Delete(id string) error {
	result, err := s.q.Exec(`DELETE FROM groceries WHERE id = ?`, id)
	if err != nil {
		return apperror.Persistence("delete grocery", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperror.Persistence("rows affected", err)
	}
	if n == 0 {
		return apperror.NotFound("grocery", id)
	}
	return nil
}

// MarkWasted flips an active grocery to wasted with the given wasted date and
// reports whether it did so. A grocery that is already wasted keeps its
// original wasted date and the call is a no-op.
func (s *GroceryStore) MarkWasted(id string, at time.Time) (bool, error) {
	result, err := s.q.Exec(
		`UPDATE groceries SET is_wasted = 1, wasted_date = ? WHERE id = ? AND is_wasted = 0`,
		at.UTC(), id,
	)
	if err != nil {
		return false, apperror.Persistence("mark wasted", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Persistence("rows affected", err)
	}
	if n > 0 {
		return true, nil
	}

	// Nothing changed: either already wasted or unknown.
	if _, err := s.GetByID(id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *GroceryStore) list(op, where, order string, args ...any) ([]model.Grocery, error) {
	rows, err := s.q.Query(`SELECT `+groceryCols+` FROM groceries WHERE `+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, apperror.Persistence(op, err)
	}
	defer rows.Close()

	var groceries []model.Grocery
	for rows.Next() {
		g, err := scanGrocery(rows)
		if err != nil {
			return nil, apperror.Persistence(fmt.Sprintf("%s: scan grocery", op), err)
		}
		groceries = append(groceries, *g)
	}
	return groceries, apperror.Persistence(op, rows.Err())
}

// ListByOwner returns every grocery of the owner in insertion order.
func (s *GroceryStore) ListByOwner(ownerID string) ([]model.Grocery, error) {
	return s.list("list groceries", `owner_id = ?`, `rowid ASC`, ownerID)
}

func (s *GroceryStore) ListActive(ownerID string) ([]model.Grocery, error) {
	return s.list("list active groceries", `owner_id = ? AND is_wasted = 0`, `expiry_date ASC, rowid ASC`, ownerID)
}

// ListWasted returns wasted groceries, most recently wasted first. Equal
// wasted dates keep insertion order.
func (s *GroceryStore) ListWasted(ownerID string) ([]model.Grocery, error) {
	return s.list("list wasted groceries", `owner_id = ? AND is_wasted = 1`, `wasted_date DESC, rowid ASC`, ownerID)
}

// ListSoonestExpiring returns up to limit groceries ordered by expiry date.
// Wasted groceries are included.
func (s *GroceryStore) ListSoonestExpiring(ownerID string, limit int) ([]model.Grocery, error) {
	if limit <= 0 {
		return []model.Grocery{}, nil
	}
	return s.list("list soonest expiring", `owner_id = ?`, `expiry_date ASC, rowid ASC LIMIT ?`, ownerID, limit)
}

// ListExpiringSoon returns active groceries whose expiry date falls before
// the given time, soonest first. Already expired items are included.
func (s *GroceryStore) ListExpiringSoon(ownerID string, before time.Time) ([]model.Grocery, error) {
	return s.list("list expiring soon", `owner_id = ? AND is_wasted = 0 AND expiry_date < ?`, `expiry_date ASC, rowid ASC`, ownerID, before.UTC())
}

// CountByOwner returns the number of active and wasted groceries.
func (s *GroceryStore) CountByOwner(ownerID string) (active, wasted int, err error) {
	err = s.q.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN is_wasted = 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN is_wasted = 1 THEN 1 ELSE 0 END), 0)
		 FROM groceries WHERE owner_id = ?`,
		ownerID,
	).Scan(&active, &wasted)
	if err != nil {
		return 0, 0, apperror.Persistence("count groceries", err)
	}
	return active, wasted, nil
}
