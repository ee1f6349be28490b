package server

import (
	"net/http"

	clientdomain "github.com/Origin-Inc/e-invoicing-backend/internal/client/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Client
// @Description  Create a new billable client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body clientdomain.CreateClientRequest true "Create Client Request"
// @Success      201  {object}  clientdomain.Response
// @Router       /api/v1/clients [post]
func (s *Server) CreateClient(c *gin.Context) {
	var req clientdomain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// @Summary      List Clients
// @Description  List clients with search, sort and pagination
// @Tags         clients
// @Produce      json
// @Param        page        query  int     false  "Page"
// @Param        limit       query  int     false  "Limit"
// @Param        search      query  string  false  "Search"
// @Param        sort_by     query  string  false  "Sort By"
// @Param        sort_order  query  string  false  "Sort Order"
// @Success      200  {object}  clientdomain.ListClientResponse
// @Router       /api/v1/clients [get]
func (s *Server) ListClients(c *gin.Context) {
	var req clientdomain.ListClientRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Get Client
// @Description  Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientdomain.Response
// @Router       /api/v1/clients/{id} [get]
func (s *Server) GetClient(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Update Client
// @Description  Partially update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "Client ID"
// @Param        request  body  clientdomain.UpdateClientRequest true "Update Client Request"
// @Success      200  {object}  clientdomain.Response
// @Router       /api/v1/clients/{id} [patch]
func (s *Server) UpdateClient(c *gin.Context) {
	var req clientdomain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.clientSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// @Summary      Delete Client
// @Description  Delete a client with no invoices
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  envelope
// @Router       /api/v1/clients/{id} [delete]
func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "client deleted")
}
