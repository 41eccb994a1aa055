package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/pkg/eventbus"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

const initialReputation = 100

// Registry holds the set of registered participants and their running trade
// statistics. Companies are created once and never deleted; their statistics
// are mutated only by the settlement path.
type Registry struct {
	mu        sync.RWMutex
	companies map[string]*model.Company
	logger    *zap.Logger
	bus       *eventbus.EventBus
	now       func() time.Time
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		companies: make(map[string]*model.Company),
		logger:    logger,
		now:       time.Now,
	}
}

// AttachBus wires domain event publication. May be left unset; registration
// events are then dropped.
func (r *Registry) AttachBus(bus *eventbus.EventBus) {
	r.bus = bus
}

// Register adds a new company and returns it. The id is derived from the
// name and the registration time; a collision, while practically
// unreachable, is rejected rather than overwritten. If email is empty, a
// contact address is derived from the company name.
func (r *Registry) Register(name, industry, country, email, settlementAddress string) (model.Company, error) {
	if strings.TrimSpace(name) == "" {
		return model.Company{}, fmt.Errorf("register: empty company name: %w", model.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := deriveID(name, r.now())
	if _, exists := r.companies[id]; exists {
		return model.Company{}, fmt.Errorf("register: company id %s: %w", id, model.ErrDuplicateRegistration)
	}

	if email == "" {
		email = defaultEmail(name)
	}

	c := &model.Company{
		ID:                id,
		Name:              name,
		Industry:          industry,
		Country:           country,
		Email:             email,
		SettlementAddress: settlementAddress,
		Verified:          true,
		CreditsOwned:      decimal.Zero,
		CreditsSold:       decimal.Zero,
		ReputationScore:   initialReputation,
		JoinedAt:          r.now().UTC(),
	}
	r.companies[id] = c

	r.logger.Info("registry.company_registered",
		zap.String("company_id", id),
		zap.String("name", name),
		zap.String("country", country),
	)
	if r.bus != nil {
		r.bus.Publish(model.CompanyRegisteredEvent{Company: *c})
	}

	return *c, nil
}

// Get returns the company with the given id.
func (r *Registry) Get(id string) (model.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[id]
	if !ok {
		return model.Company{}, fmt.Errorf("company %s: %w", id, model.ErrNotFound)
	}
	return *c, nil
}

// All returns a snapshot of every registered company.
func (r *Registry) All() []model.Company {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, *c)
	}
	return out
}

// Count returns the number of registered companies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.companies)
}

// CreditBuy adds bought credits to a company and bumps its trade count.
// Called only by the settlement recorder inside the engine's critical section.
func (r *Registry) CreditBuy(id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.companies[id]
	if !ok {
		return fmt.Errorf("credit buy: company %s: %w", id, model.ErrNotFound)
	}
	c.CreditsOwned = c.CreditsOwned.Add(amount)
	c.TotalTrades++
	return nil
}

// CreditSell adds sold credits to a company and bumps its trade count.
// Called only by the settlement recorder inside the engine's critical section.
func (r *Registry) CreditSell(id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.companies[id]
	if !ok {
		return fmt.Errorf("credit sell: company %s: %w", id, model.ErrNotFound)
	}
	c.CreditsSold = c.CreditsSold.Add(amount)
	c.TotalTrades++
	return nil
}

// ApplyTrade credits both sides of a settlement under one registry lock:
// either both companies are updated or neither is. Called only by the
// settlement recorder inside the engine's critical section.
func (r *Registry) ApplyTrade(buyerID, sellerID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buyer, ok := r.companies[buyerID]
	if !ok {
		return fmt.Errorf("apply trade: buyer %s: %w", buyerID, model.ErrNotFound)
	}
	seller, ok := r.companies[sellerID]
	if !ok {
		return fmt.Errorf("apply trade: seller %s: %w", sellerID, model.ErrNotFound)
	}

	buyer.CreditsOwned = buyer.CreditsOwned.Add(amount)
	buyer.TotalTrades++
	seller.CreditsSold = seller.CreditsSold.Add(amount)
	seller.TotalTrades++
	return nil
}

func deriveID(name string, now time.Time) string {
	sum := sha256.Sum256([]byte(name + strconv.FormatInt(now.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])[:12]
}

func defaultEmail(name string) string {
	return "contact@" + strings.ReplaceAll(strings.ToLower(name), " ", "") + ".com"
}
