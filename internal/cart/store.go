package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yulishop/storefront/internal/clientstore"
	"github.com/yulishop/storefront/internal/pricing"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/metrics"
	"github.com/yulishop/storefront/pkg/types"
)

// Summary is the cart view the pages render.
type Summary struct {
	Lines     []types.CartLine `json:"lines"`
	ItemCount int              `json:"itemCount"`
	Shipping  string           `json:"shippingMethod"`
	PromoCode string           `json:"promoCode,omitempty"`
	Totals    types.Totals     `json:"totals"`
}

// Store owns the cart lines. Every mutation re-reads the durable slot, applies
// the change and writes it back; there is no cross-process locking, so the
// last writer wins.
//
// writeMu serializes this store's read-modify-write cycles and may be held
// while the backend notifies other stores. mu only guards the view and is
// never held across a store call. A resync arriving mid-mutation only marks
// the view stale; the mutation re-reads the slot once its write is done.
type Store struct {
	slot    *clientstore.Slot[[]types.CartLine]
	engine  *pricing.Engine
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
	newID   func() string

	writeMu sync.Mutex

	mu          sync.Mutex
	view        []types.CartLine
	viewSeq     uint64
	writing     bool
	stale       bool
	unsubscribe func()
}

type Option func(*Store)

func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) { s.logg = logg }
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithIDGenerator overrides the line id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore loads the persisted cart and starts following external changes.
func NewStore(ctx context.Context, store clientstore.Store, engine *pricing.Engine, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("client store required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	s := &Store{
		engine: engine,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.slot = clientstore.NewSlot[[]types.CartLine](store, clientstore.KeyCart, s.logg)
	s.unsubscribe = s.slot.OnExternalChange(s.resync)
	s.Load(ctx)
	return s, nil
}

// Close stops following external changes.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Load reads the durable slot. Missing or malformed data yields an empty cart.
func (s *Store) Load(ctx context.Context) []types.CartLine {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	lines := s.read(ctx)
	s.setView(lines)
	return types.CloneLines(lines)
}

// Lines returns the in-memory view without touching the durable store.
func (s *Store) Lines() []types.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneLines(s.view)
}

// Summarize prices the in-memory view.
func (s *Store) Summarize(method enums.ShippingMethod, promoCode string) Summary {
	lines := s.Lines()
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	if !method.IsValid() {
		method = enums.ShippingMethodStandard
	}
	return Summary{
		Lines:     lines,
		ItemCount: count,
		Shipping:  method.String(),
		PromoCode: pricing.NormalizePromoCode(promoCode),
		Totals:    s.engine.Quote(lines, method, promoCode),
	}
}

// Add merges line into an existing line with the same sku, or appends it.
// The merged quantity never exceeds the line cap.
func (s *Store) Add(ctx context.Context, line types.CartLine) ([]types.CartLine, error) {
	line.SKU = strings.TrimSpace(line.SKU)
	if line.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if line.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if line.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if line.MaxQuantity < 0 {
		line.MaxQuantity = 0
	}

	return s.mutate(ctx, func(lines []types.CartLine) ([]types.CartLine, error) {
		for i := range lines {
			if lines[i].SKU != line.SKU {
				continue
			}
			if line.MaxQuantity > 0 {
				lines[i].MaxQuantity = line.MaxQuantity
			}
			lines[i].Quantity = lines[i].ClampQuantity(lines[i].Quantity + line.Quantity)
			return lines, nil
		}
		if strings.TrimSpace(line.ID) == "" {
			line.ID = s.newID()
		}
		line.Quantity = line.ClampQuantity(line.Quantity)
		return append(lines, line), nil
	})
}

// SetQuantity clamps q into [1, cap]. Use Remove to drop a line.
func (s *Store) SetQuantity(ctx context.Context, id string, q int) ([]types.CartLine, error) {
	return s.mutate(ctx, func(lines []types.CartLine) ([]types.CartLine, error) {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Quantity = lines[i].ClampQuantity(q)
				return lines, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").WithDetails(map[string]any{"id": id})
	})
}

// Remove drops the line with id. Unknown ids leave the cart unchanged.
func (s *Store) Remove(ctx context.Context, id string) ([]types.CartLine, error) {
	return s.mutate(ctx, func(lines []types.CartLine) ([]types.CartLine, error) {
		out := lines[:0]
		for _, line := range lines {
			if line.ID != id {
				out = append(out, line)
			}
		}
		return out, nil
	})
}

// Clear persists an empty cart.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, func([]types.CartLine) ([]types.CartLine, error) {
		return []types.CartLine{}, nil
	})
	return err
}

func (s *Store) mutate(ctx context.Context, fn func([]types.CartLine) ([]types.CartLine, error)) ([]types.CartLine, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.writing = true
	s.mu.Unlock()

	next, err := fn(s.read(ctx))
	if err == nil {
		if next == nil {
			next = []types.CartLine{}
		}
		err = s.slot.Save(ctx, next)
	}

	s.mu.Lock()
	s.writing = false
	stale := s.stale
	s.stale = false
	if err == nil && !stale {
		s.view = next
		s.viewSeq++
	}
	s.mu.Unlock()

	if stale {
		next = s.read(ctx)
		s.setView(next)
	}
	if err != nil {
		return nil, err
	}
	return types.CloneLines(next), nil
}

func (s *Store) setView(lines []types.CartLine) {
	s.mu.Lock()
	s.view = lines
	s.viewSeq++
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context) []types.CartLine {
	lines, ok := s.slot.Load(ctx)
	if !ok {
		return []types.CartLine{}
	}
	return sanitize(lines)
}

// resync refreshes the view after another writer changed the slot. A view
// set while the slot was being read is newer and is kept.
func (s *Store) resync(ctx context.Context, key clientstore.Key) {
	s.mu.Lock()
	if s.writing {
		s.stale = true
		s.mu.Unlock()
		s.metrics.IncResync(string(key))
		return
	}
	seq := s.viewSeq
	s.mu.Unlock()

	lines := s.read(ctx)

	s.mu.Lock()
	if s.viewSeq == seq {
		s.view = lines
		s.viewSeq++
	}
	s.mu.Unlock()

	s.metrics.IncResync(string(key))
	if s.logg != nil {
		s.logg.Debug(s.logg.WithStoreKey(ctx, string(key)), "cart resynced after external change")
	}
}

// sanitize drops lines another writer may have left invalid.
func sanitize(lines []types.CartLine) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.ID) == "" || line.UnitPriceCents < 0 {
			continue
		}
		if line.MaxQuantity < 0 {
			line.MaxQuantity = 0
		}
		line.Quantity = line.ClampQuantity(line.Quantity)
		out = append(out, line)
	}
	return out
}
