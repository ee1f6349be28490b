package server

import (
	"net/http"

	invoicedomain "github.com/Origin-Inc/e-invoicing-backend/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Invoice
// @Description  Create a draft invoice with line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicedomain.CreateInvoiceRequest true "Create Invoice Request"
// @Success      201  {object}  invoicedomain.Response
// @Router       /api/v1/invoices [post]
func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// @Summary      List Invoices
// @Description  List invoices with status and client filters
// @Tags         invoices
// @Produce      json
// @Param        page        query  int     false  "Page"
// @Param        limit       query  int     false  "Limit"
// @Param        search      query  string  false  "Search"
// @Param        sort_by     query  string  false  "Sort By"
// @Param        sort_order  query  string  false  "Sort Order"
// @Param        status      query  string  false  "Status"
// @Param        client_id   query  string  false  "Client ID"
// @Success      200  {object}  invoicedomain.ListInvoiceResponse
// @Router       /api/v1/invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var req invoicedomain.ListInvoiceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Get Invoice
// @Description  Get invoice by ID with its client
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Response
// @Router       /api/v1/invoices/{id} [get]
func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Update Invoice
// @Description  Edit a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "Invoice ID"
// @Param        request  body  invoicedomain.UpdateInvoiceRequest true "Update Invoice Request"
// @Success      200  {object}  invoicedomain.Response
// @Router       /api/v1/invoices/{id} [patch]
func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.invoiceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Send Invoice
// @Description  Issue a draft invoice to its client
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Response
// @Router       /api/v1/invoices/{id}/send [post]
func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, resp, "invoice sent")
}

type cancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Cancel Invoice
// @Description  Cancel an invoice with no completed payments
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path  string  true   "Invoice ID"
// @Param        request  body  cancelInvoiceRequest false "Cancel Invoice Request"
// @Success      200  {object}  invoicedomain.Response
// @Router       /api/v1/invoices/{id}/cancel [post]
func (s *Server) CancelInvoice(c *gin.Context) {
	var req cancelInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, resp, "invoice cancelled")
}
