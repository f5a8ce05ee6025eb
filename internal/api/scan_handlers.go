package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/vibecheck-lab/vibecheck/internal/services"
	"github.com/vibecheck-lab/vibecheck/internal/utils"
)

// scanTimeout bounds one full pipeline run, including the reasoning
// delegate and the attestation transaction.
const scanTimeout = 2 * time.Minute

type scanRequest struct {
	Address string `json:"address"`
}

// handleScan runs a blocking scan and returns the finished report.
func (s *APIServer) handleScan(c *fiber.Ctx) error {
	var req scanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if !utils.IsValidEthereumAddress(req.Address) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid token address",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), scanTimeout)
	defer cancel()

	report, err := s.scanService.Scan(ctx, req.Address, nil)
	if err != nil {
		if errors.Is(err, services.ErrNotContract) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "address is not a contract",
			})
		}
		s.log.Error().Err(err).Str("address", req.Address).Msg("scan failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "scan failed",
		})
	}

	return c.JSON(report)
}

// handleScanStream runs a scan and streams progress as server-sent events.
func (s *APIServer) handleScanStream(c *fiber.Ctx) error {
	address := c.Query("address")
	if !utils.IsValidEthereumAddress(address) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid token address",
		})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeEvent := func(event services.ProgressEvent) {
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			w.Flush()
		}

		// The request context dies with the handler, so the stream
		// runs under its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		// Scan emits the terminal complete or error event itself.
		if _, err := s.scanService.Scan(ctx, address, writeEvent); err != nil {
			s.log.Error().Err(err).Str("address", address).Msg("streamed scan failed")
		}
	}))

	return nil
}

// handleHistory returns the most recent scans across all tokens.
func (s *APIServer) handleHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}

	records, err := s.db.ListRecentScans(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list recent scans")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load scan history",
		})
	}

	return c.JSON(fiber.Map{"scans": records})
}

// handleTokenHistory returns past scans for one token address.
func (s *APIServer) handleTokenHistory(c *fiber.Ctx) error {
	address := c.Params("address")
	if !utils.IsValidEthereumAddress(address) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid token address",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}

	records, err := s.db.ListScansByToken(utils.NormalizeAddress(address), limit)
	if err != nil {
		s.log.Error().Err(err).Str("address", address).Msg("failed to list token scans")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load scan history",
		})
	}

	return c.JSON(fiber.Map{"scans": records})
}

// handleTotalScans returns the total number of persisted scans.
func (s *APIServer) handleTotalScans(c *fiber.Ctx) error {
	count, err := s.db.CountScans()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count scans")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count scans",
		})
	}

	return c.JSON(fiber.Map{"total": count})
}
