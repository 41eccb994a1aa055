package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GreenChain-Markets/exchange/internal/metrics"
	"github.com/GreenChain-Markets/exchange/internal/store"
)

// RegisterRoutes mounts the marketplace API, health check, and metrics
// endpoint. nc and st are optional; their health checks degrade gracefully
// when not wired.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, h *Handler) {
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Route().Path, strconv.Itoa(c.Response().StatusCode())).Inc()
		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"chain": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if !h.ledger.VerifyChain() {
			checks["chain"] = "integrity violated"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		if st != nil {
			checks["store"] = "ok"
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/companies", h.RegisterCompany)
	v1.Get("/companies", h.ListCompanies)
	v1.Get("/companies/:id", h.GetCompanyProfile)

	v1.Post("/listings", h.CreateListing)
	v1.Get("/listings", h.ListActiveListings)
	v1.Get("/listings/:id", h.GetListing)
	v1.Post("/listings/:id/inquiries", h.RecordInquiry)

	v1.Post("/orders", h.PlaceOrder)
	v1.Get("/orders/:id", h.GetOrder)

	v1.Get("/transactions", h.ListTransactions)
	v1.Get("/stats", h.GetStats)

	v1.Get("/chain", h.GetChain)
	v1.Get("/chain/verify", h.VerifyChain)
	v1.Get("/audit-log", h.GetAuditLog)
	v1.Post("/verifications", h.RecordVerification)
}
