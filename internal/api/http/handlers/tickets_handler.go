package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const importFormField = "file"

// TicketsHandler serves the ticket endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	importer *service.ImportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, importService *service.ImportService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, importer: importService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.UserContext(), c.Query("assignedToUserId"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Subject:     req.Subject,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Comment:     req.Comment,
	}
	if req.Status != nil {
		status, err := domain.ParseTicketStatus(*req.Status)
		if err != nil {
			return apperrors.NewInvalidArgument("invalid status", map[string]any{"status": *req.Status}, err)
		}
		input.Status = &status
	}

	ticket, err := h.tickets.UpdateTicket(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// GetHistory GET /api/tickets/:id/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	var changeType *domain.TicketChangeType
	if raw := c.Query("type"); raw != "" {
		parsed, err := domain.ParseChangeType(raw)
		if err != nil {
			return apperrors.NewInvalidArgument("invalid type", map[string]any{"type": raw}, err)
		}
		changeType = &parsed
	}

	entries, err := h.tickets.GetTicketHistory(c.UserContext(), c.Params("id"), changeType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// BulkImport POST /api/tickets/bulkimport.
func (h *TicketsHandler) BulkImport(c *fiber.Ctx) error {
	header, err := c.FormFile(importFormField)
	if err != nil {
		return apperrors.NewValidationError("multipart field \"file\" required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewIOFailure("failed to open import file", err)
	}
	defer file.Close()

	if _, err := h.importer.ImportTickets(c.UserContext(), header.Filename, file); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		CreatedBy:   ticket.CreatedByID,
		ModifiedBy:  ticket.ModifiedByID,
		AssignedTo:  ticket.AssigneeID,
		CreatedAt:   ticket.CreatedAt,
		ModifiedAt:  ticket.ModifiedAt,
		Status:      ticket.Status,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			Type:       entry.Type,
			UpdateDate: entry.UpdateDate,
			UpdatedBy:  entry.UpdatedByID,
			Text:       entry.Text,
		})
	}
	return resp
}
