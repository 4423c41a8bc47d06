package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientconsole-backend/console-service/middleware"
	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/config"
	"clientconsole-backend/shared/database/models"
	"clientconsole-backend/shared/utils/query"
	"clientconsole-backend/shared/utils/validation"
)

// ClientHandler serves the client CRUD and logo endpoints
type ClientHandler struct {
	service *services.ClientService
}

// NewClientHandler creates a client handler
func NewClientHandler(service *services.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// GetClients lists clients with search, filters, and pagination
// @Summary List clients
// @Description Get a page of clients ordered by newest first, with optional search and exact status/category filters
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search across organization name, admin name, and admin email"
// @Param filters[status] query string false "Exact status filter" Enums(active, inactive, pending_verification)
// @Param filters[category] query string false "Exact business category filter"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 50)"
// @Success 200 {object} map[string]interface{} "Clients with pagination"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /clients [get]
func (h *ClientHandler) GetClients(c *gin.Context) {
	params := query.ParseQueryParams(c)

	opts := services.ListOptions{
		Search:   params.Search,
		Status:   models.ClientStatus(params.Filters["status"]),
		Category: params.Filters["category"],
		Page:     params.Page,
		PageSize: params.Limit,
	}

	result, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		if strings.Contains(err.Error(), "invalid status filter") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid status filter",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch clients",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Clients,
		"pagination": query.BuildPaginationResponse(opts.Page, opts.PageSize, result.TotalCount),
	})
}

// GetClient returns a single client by id
// @Summary Get client
// @Description Get a single client by its id
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{} "Client"
// @Failure 400 {object} map[string]string "Invalid client ID"
// @Failure 404 {object} map[string]string "Client not found"
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	client, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch client",
			"message": err.Error(),
		})
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}

// CreateClient creates a new client record
// @Summary Create client
// @Description Create a new client; the authenticated user is recorded as creator
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body services.CreateClientInput true "Client data"
// @Success 201 {object} map[string]interface{} "Created client"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var input services.CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.Create(c.Request.Context(), middleware.ActorID(c), input)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create client",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    client,
	})
}

// UpdateClient applies a partial update to a client
// @Summary Update client
// @Description Update a client; only provided fields change
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param client body services.UpdateClientInput true "Fields to update"
// @Success 200 {object} map[string]interface{} "Updated client"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	var input services.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.Update(c.Request.Context(), middleware.ActorID(c), id, input)
	if err != nil {
		h.writeMutationError(c, err, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}

// UpdateStatusRequest carries the new operational status
type UpdateStatusRequest struct {
	Status models.ClientStatus `json:"status" binding:"required"`
}

// UpdateClientStatus changes only the operational status of a client
// @Summary Update client status
// @Description Set a client's operational status
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{} "Status updated"
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Router /clients/{id}/status [patch]
func (h *ClientHandler) UpdateClientStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), middleware.ActorID(c), id, req.Status); err != nil {
		if strings.Contains(err.Error(), "invalid client status") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.writeMutationError(c, err, "Failed to update client status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client status updated",
	})
}

// UploadClientLogo stores a logo for the client's tenant and persists its URL
// @Summary Upload client logo
// @Description Upload a PNG or JPEG logo (max 5MB, min 512x512) for a client
// @Tags clients
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param logo formData file true "Logo file"
// @Success 200 {object} map[string]interface{} "Logo URL"
// @Failure 400 {object} map[string]string "Invalid file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Router /clients/{id}/logo [post]
func (h *ClientHandler) UploadClientLogo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	client, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch client",
			"message": err.Error(),
		})
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	logo, err := readLogoFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logoURL, err := h.service.UploadLogo(c.Request.Context(), client.TenantID, logo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Logo upload failed",
			"message": err.Error(),
		})
		return
	}

	if _, err := h.service.Update(c.Request.Context(), middleware.ActorID(c), id, services.UpdateClientInput{
		OrganizationLogoURL: &logoURL,
	}); err != nil {
		h.writeMutationError(c, err, "Failed to save logo URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"logo_url": logoURL},
	})
}

// DeleteClientLogo removes every stored logo file for the client's tenant
// @Summary Delete client logo
// @Description Remove all stored logo files for the client's tenant
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{} "Logo deleted"
// @Failure 404 {object} map[string]string "Client not found"
// @Router /clients/{id}/logo [delete]
func (h *ClientHandler) DeleteClientLogo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	client, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch client",
			"message": err.Error(),
		})
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	if err := h.service.DeleteLogo(c.Request.Context(), client.TenantID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete logo",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logo deleted",
	})
}

func (h *ClientHandler) writeMutationError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, services.ErrClientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   message,
			"message": err.Error(),
		})
	}
}

// readLogoFile extracts the multipart "logo" file into memory. Reads are
// capped slightly above the configured limit so the size validator can
// reject oversized files with its own message.
func readLogoFile(c *gin.Context) (*validation.LogoFile, error) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return nil, errors.New("logo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("could not read logo file")
	}
	defer file.Close()

	maxBytes := config.GetConfig().GetLogoMaxFileSizeBytes()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, errors.New("could not read logo file")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &validation.LogoFile{
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
