package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/service"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// DataHandler exposes backup export and restore import.
type DataHandler struct {
	transfer *service.TransferService
}

// NewDataHandler constructs handler.
func NewDataHandler(transfer *service.TransferService) *DataHandler {
	return &DataHandler{transfer: transfer}
}

// ExportJSON GET /data/export. Downloads the complete snapshot.
func (h *DataHandler) ExportJSON(c *fiber.Ctx) error {
	doc, err := h.transfer.ExportSnapshot()
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// ExportCSV GET /data/export/csv. Downloads the flat per-ticket report.
func (h *DataHandler) ExportCSV(c *fiber.Ctx) error {
	doc, err := h.transfer.ExportCSV()
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// Import POST /data/import. The body is the backup document; on success the
// entire snapshot is replaced.
func (h *DataHandler) Import(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return apperrors.NewValidationError("empty import document", nil)
	}
	snap, err := h.transfer.Import(c.UserContext(), body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"tickets":  len(snap.Tickets),
		"users":    len(snap.Users),
		"subjects": len(snap.Subjects),
	}})
}

func sendDocument(c *fiber.Ctx, doc service.ExportDocument) error {
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Send(doc.Body)
}
