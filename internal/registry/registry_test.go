package registry

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GreenChain-Markets/exchange/pkg/eventbus"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

func TestRegister(t *testing.T) {
	r := New(nil)

	c, err := r.Register("Nordic Steel", "steel", "SE", "", "0xabc123")
	require.NoError(t, err)

	assert.Len(t, c.ID, 12)
	assert.Equal(t, "contact@nordicsteel.com", c.Email)
	assert.Equal(t, initialReputation, c.ReputationScore)
	assert.True(t, c.Verified)
	assert.True(t, c.CreditsOwned.IsZero())
	assert.Equal(t, 0, c.TotalTrades)

	got, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestRegisterExplicitEmail(t *testing.T) {
	r := New(nil)

	c, err := r.Register("Acme Cement", "cement", "DE", "ops@acme.example", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.example", c.Email)
}

func TestRegisterEmptyName(t *testing.T) {
	r := New(nil)

	_, err := r.Register("  ", "steel", "SE", "", "0xabc")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestGetUnknown(t *testing.T) {
	r := New(nil)

	_, err := r.Get("no-such-id")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDuplicateIDRejected(t *testing.T) {
	r := New(nil)

	// Freeze the clock so the time-based id derivation collides.
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	_, err := r.Register("Collider Corp", "energy", "FR", "", "0x1")
	require.NoError(t, err)

	_, err = r.Register("Collider Corp", "energy", "FR", "", "0x1")
	assert.ErrorIs(t, err, model.ErrDuplicateRegistration)
}

func TestCreditBuySell(t *testing.T) {
	r := New(nil)

	buyer, err := r.Register("Buyer Inc", "auto", "US", "", "0xb")
	require.NoError(t, err)
	seller, err := r.Register("Seller Inc", "forestry", "BR", "", "0xs")
	require.NoError(t, err)

	require.NoError(t, r.CreditBuy(buyer.ID, decimal.NewFromFloat(100)))
	require.NoError(t, r.CreditSell(seller.ID, decimal.NewFromFloat(100)))

	b, _ := r.Get(buyer.ID)
	s, _ := r.Get(seller.ID)

	assert.True(t, b.CreditsOwned.Equal(decimal.NewFromFloat(100)))
	assert.True(t, b.CreditsSold.IsZero())
	assert.Equal(t, 1, b.TotalTrades)

	assert.True(t, s.CreditsSold.Equal(decimal.NewFromFloat(100)))
	assert.True(t, s.CreditsOwned.IsZero())
	assert.Equal(t, 1, s.TotalTrades)
}

func TestCreditUnknownCompany(t *testing.T) {
	r := New(nil)

	assert.ErrorIs(t, r.CreditBuy("missing", decimal.NewFromInt(1)), model.ErrNotFound)
	assert.ErrorIs(t, r.CreditSell("missing", decimal.NewFromInt(1)), model.ErrNotFound)
}

func TestAllAndCount(t *testing.T) {
	r := New(nil)
	_, err := r.Register("One", "a", "US", "", "0x1")
	require.NoError(t, err)
	_, err = r.Register("Two", "b", "US", "", "0x2")
	require.NoError(t, err)

	assert.Equal(t, 2, r.Count())
	assert.Len(t, r.All(), 2)
}

func TestRegisterPublishesEvent(t *testing.T) {
	bus := eventbus.New()
	events := make(chan model.CompanyRegisteredEvent, 1)
	bus.Subscribe(model.CompanyRegisteredEvent{}, func(event interface{}) {
		events <- event.(model.CompanyRegisteredEvent)
	})

	r := New(nil)
	r.AttachBus(bus)

	c, err := r.Register("Evented Co", "energy", "DE", "", "")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, c.ID, ev.Company.ID)
	case <-time.After(time.Second):
		t.Fatal("no registration event received")
	}
}
