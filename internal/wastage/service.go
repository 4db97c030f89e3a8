// Package wastage moves expired groceries to the wasted state and aggregates
// what has been wasted over calendar periods.
package wastage

import (
	"errors"
	"fmt"
	"math"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/model"
	"github.com/dukerupert/pantry/internal/store"
)

type Service struct {
	groceries *store.GroceryStore
	loc       *time.Location
	logger    *slog.Logger
	locks     ownerLocks
}

// NewService builds a Service that evaluates calendar periods in loc. A nil
// loc means time.Local.
func NewService(groceries *store.GroceryStore, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		groceries: groceries,
		loc:       loc,
		logger:    logger.With("component", "wastage"),
	}
}

// SweepExpired marks every active grocery of the owner that expired before
// asOf as wasted on asOf, and returns how many it changed. The sweep commits
// as a whole or not at all.
func (s *Service) SweepExpired(ownerID string, asOf time.Time) (int, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var swept int
	err := s.groceries.InTx(func(tx *store.GroceryStore) error {
		active, err := tx.ListActive(ownerID)
		if err != nil {
			return err
		}
		for _, g := range active {
			if !g.ExpiryDate.Before(asOf) {
				continue
			}
			changed, err := tx.MarkWasted(g.ID, asOf)
			if err != nil {
				return fmt.Errorf("sweep %s: %w", g.ID, err)
			}
			if changed {
				swept++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		s.logger.Info("swept expired groceries", "owner", ownerID, "count", swept)
	}
	return swept, nil
}

// MarkWasted marks a single grocery wasted now. It is serialized with sweeps
// of the same owner.
func (s *Service) MarkWasted(ownerID, groceryID string, at time.Time) (bool, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()
	return s.groceries.MarkWasted(groceryID, at)
}

// Statistics counts wasted groceries overall, in asOf's month and in
// asOf's ISO week.
func (s *Service) Statistics(ownerID string, asOf time.Time) (model.WastageStats, error) {
	wasted, err := s.groceries.ListWasted(ownerID)
	if err != nil {
		return model.WastageStats{}, err
	}

	stats := model.WastageStats{Total: len(wasted)}
	for _, g := range wasted {
		if g.WastedDate == nil {
			continue
		}
		if InPeriod(*g.WastedDate, asOf, model.PeriodThisMonth, s.loc) {
			stats.ThisMonth++
		}
		if InPeriod(*g.WastedDate, asOf, model.PeriodThisWeek, s.loc) {
			stats.ThisWeek++
		}
	}
	return stats, nil
}

// Value sums the price of groceries wasted in the period around asOf.
func (s *Service) Value(ownerID string, period model.Period, asOf time.Time) (model.Money, error) {
	wasted, err := s.Wasted(ownerID, period, asOf)
	if err != nil {
		return 0, err
	}

	return sumPrices(wasted)
}

var errValueOverflow = errors.New("wasted value out of range")

func sumPrices(groceries []model.Grocery) (model.Money, error) {
	var total model.Money
	for _, g := range groceries {
		if g.Price < 0 || g.Price > math.MaxInt64-total {
			return 0, apperror.Persistence("sum wasted value", errValueOverflow)
		}
		total += g.Price
	}
	return total, nil
}

// Wasted lists groceries wasted in the period around asOf, most recent
// first.
func (s *Service) Wasted(ownerID string, period model.Period, asOf time.Time) ([]model.Grocery, error) {
	switch period {
	case model.PeriodThisWeek, model.PeriodThisMonth, model.PeriodThisYear, model.PeriodAllTime:
	default:
		return nil, apperror.ValidationFailed("period", fmt.Sprintf("unknown period %q", period))
	}

	wasted, err := s.groceries.ListWasted(ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Grocery, 0, len(wasted))
	for _, g := range wasted {
		if g.WastedDate != nil && InPeriod(*g.WastedDate, asOf, period, s.loc) {
			out = append(out, g)
		}
	}
	return out, nil
}

// ownerLocks hands out one mutex per owner. Entries are dropped once no
// caller holds or waits on them.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func (l *ownerLocks) lock(ownerID string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*ownerLock)
	}
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()
	return func() {
		ol.mu.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}
