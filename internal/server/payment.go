package server

import (
	"net/http"

	paymentdomain "github.com/Origin-Inc/e-invoicing-backend/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Payment
// @Description  Record a payment against an invoice
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body paymentdomain.CreatePaymentRequest true "Create Payment Request"
// @Success      201  {object}  paymentdomain.Response
// @Router       /api/v1/payments [post]
func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// @Summary      List Payments
// @Description  List payments with invoice and status filters
// @Tags         payments
// @Produce      json
// @Param        page        query  int     false  "Page"
// @Param        limit       query  int     false  "Limit"
// @Param        search      query  string  false  "Search"
// @Param        sort_by     query  string  false  "Sort By"
// @Param        sort_order  query  string  false  "Sort Order"
// @Param        invoice_id  query  string  false  "Invoice ID"
// @Param        status      query  string  false  "Status"
// @Success      200  {object}  paymentdomain.ListPaymentResponse
// @Router       /api/v1/payments [get]
func (s *Server) ListPayments(c *gin.Context) {
	var req paymentdomain.ListPaymentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Get Payment
// @Description  Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  paymentdomain.Response
// @Router       /api/v1/payments/{id} [get]
func (s *Server) GetPayment(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Update Payment Status
// @Description  Move a payment through its lifecycle; completing applies settlement
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "Payment ID"
// @Param        request  body  paymentdomain.UpdateStatusRequest true "Update Status Request"
// @Success      200  {object}  paymentdomain.Response
// @Router       /api/v1/payments/{id}/status [patch]
func (s *Server) UpdatePaymentStatus(c *gin.Context) {
	var req paymentdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.paymentSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
