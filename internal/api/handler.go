package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GreenChain-Markets/exchange/internal/ledger"
	"github.com/GreenChain-Markets/exchange/internal/market"
	"github.com/GreenChain-Markets/exchange/internal/registry"
	"github.com/GreenChain-Markets/exchange/internal/store"
	"github.com/GreenChain-Markets/exchange/pkg/model"
)

// Handler serves the marketplace HTTP API.
type Handler struct {
	logger   *zap.Logger
	engine   *market.Engine
	registry *registry.Registry
	ledger   *ledger.Ledger
	store    store.Store
}

// NewHandler creates a Handler. store is optional; aggregate queries then
// always hit the engine directly.
func NewHandler(logger *zap.Logger, engine *market.Engine, reg *registry.Registry, led *ledger.Ledger, st store.Store) *Handler {
	return &Handler{
		logger:   logger,
		engine:   engine,
		registry: reg,
		ledger:   led,
		store:    st,
	}
}

// statusFromErr maps domain sentinel errors to HTTP status codes.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateRegistration):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
}

// RegisterCompany handles participant registration.
func (h *Handler) RegisterCompany(c *fiber.Ctx) error {
	var req RegisterCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	company, err := h.registry.Register(req.Name, req.Industry, req.Country, req.Email, req.SettlementAddress)
	if err != nil {
		h.logger.Error("api.register_company.failed",
			zap.String("name", req.Name),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(company)
}

// ListCompanies returns every registered participant.
func (h *Handler) ListCompanies(c *fiber.Ctx) error {
	return c.JSON(h.registry.All())
}

// GetCompanyProfile returns a company with its transactions and listings.
func (h *Handler) GetCompanyProfile(c *fiber.Ctx) error {
	profile, err := h.engine.CompanyProfile(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(profile)
}

// CreateListing posts credits for sale.
func (h *Handler) CreateListing(c *fiber.Ctx) error {
	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	listing, err := h.engine.CreateListing(req.SellerID, req.Amount, req.PricePerUnit,
		req.Metadata, req.Location, req.Description)
	if err != nil {
		h.logger.Error("api.create_listing.failed",
			zap.String("seller_id", req.SellerID),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// ListActiveListings returns active listings, optionally filtered by
// max_price and min_amount query parameters.
func (h *Handler) ListActiveListings(c *fiber.Ctx) error {
	var filter model.ListingFilter
	if raw := c.Query("max_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid max_price"})
		}
		filter.MaxPrice = &v
	}
	if raw := c.Query("min_amount"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid min_amount"})
		}
		filter.MinAmount = &v
	}

	listings := h.engine.ActiveListings(&filter)
	if listings == nil {
		listings = []model.Listing{}
	}
	return c.JSON(listings)
}

// GetListing returns a single listing by id.
func (h *Handler) GetListing(c *fiber.Ctx) error {
	listing, err := h.engine.Listing(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(listing)
}

// RecordInquiry registers buyer interest and returns the seller contact.
func (h *Handler) RecordInquiry(c *fiber.Ctx) error {
	var req InquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	contact, err := h.engine.RecordInquiry(c.Params("id"), req.BuyerID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

// PlaceOrder creates a buy order and immediately attempts to match it. The
// order is returned in its terminal state; an UNMATCHED order is not an
// error at the transport level.
func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.engine.PlaceBuyOrder(req.BuyerID, req.Amount, req.MaxUnitPrice)
	if err != nil {
		h.logger.Error("api.place_order.failed",
			zap.String("buyer_id", req.BuyerID),
			zap.Error(err))
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetOrder returns a buy order by id.
func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.engine.Order(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(order)
}

// ListTransactions returns settled transactions, optionally filtered to one
// company via ?company_id=.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	txs := h.engine.TransactionHistory(c.Query("company_id"))
	if txs == nil {
		txs = []model.Transaction{}
	}
	return c.JSON(txs)
}

// GetStats serves the aggregate market snapshot. It prefers the cached
// projection and falls back to a live computation on a miss.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	if h.store != nil {
		cached, err := h.store.GetStats(c.Context())
		if err != nil {
			h.logger.Warn("api.stats.cache_read_failed", zap.Error(err))
		} else if cached != nil {
			return c.JSON(cached)
		}
	}
	return c.JSON(h.engine.Stats())
}

// GetChain returns the full ledger.
func (h *Handler) GetChain(c *fiber.Ctx) error {
	blocks := h.ledger.Blocks()
	return c.JSON(fiber.Map{
		"length": len(blocks),
		"blocks": blocks,
	})
}

// VerifyChain re-walks the hash links and reports integrity. A broken chain
// is a server-side emergency, not a client error.
func (h *Handler) VerifyChain(c *fiber.Ctx) error {
	if err := h.ledger.Verify(); err != nil {
		var integrity *ledger.ChainIntegrityError
		resp := fiber.Map{"valid": false, "error": err.Error()}
		if errors.As(err, &integrity) {
			resp["block_index"] = integrity.Index
		}
		h.logger.Error("api.chain_verify.integrity_failure", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(fiber.Map{"valid": true, "length": h.ledger.Len()})
}

// GetAuditLog returns one entry per ledger record.
func (h *Handler) GetAuditLog(c *fiber.Ctx) error {
	entries := h.engine.AuditLog()
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return c.JSON(entries)
}

// RecordVerification appends an external verification result to the ledger.
func (h *Handler) RecordVerification(c *fiber.Ctx) error {
	var req RecordVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	block, err := h.engine.RecordVerification(model.VerificationResult{
		Type:          req.Type,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Status:        req.Status,
		CarbonCredits: req.CarbonCredits,
		Details:       req.Details,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"block_index": block.Index,
		"block_hash":  ledger.BlockHash(block),
	})
}
