package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientconsole-backend/console-service/controllers"
	"clientconsole-backend/console-service/middleware"
	"clientconsole-backend/console-service/services"
	utils "clientconsole-backend/shared/utils/auth"
)

// sessionIdleTimeout is how long an untouched form session survives before
// the cleanup pass drops it
const sessionIdleTimeout = 30 * time.Minute

type formSession struct {
	controller *controllers.FormController
	actorID    uuid.UUID
	lastAccess time.Time
}

// FormSessionHandler owns the server-side form sessions. Each session wraps
// one form controller; a session id returned on open addresses it on every
// later call. Idle sessions are swept periodically.
type FormSessionHandler struct {
	service *services.ClientService
	hub     *services.Hub

	mutex    sync.Mutex
	sessions map[string]*formSession
}

// NewFormSessionHandler creates the handler and starts its cleanup loop
func NewFormSessionHandler(service *services.ClientService, hub *services.Hub) *FormSessionHandler {
	h := &FormSessionHandler{
		service:  service,
		hub:      hub,
		sessions: make(map[string]*formSession),
	}

	go h.cleanup()

	return h
}

// cleanup - drop sessions idle past the timeout
func (h *FormSessionHandler) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		h.mutex.Lock()
		now := time.Now()
		for id, session := range h.sessions {
			if now.Sub(session.lastAccess) > sessionIdleTimeout {
				session.controller.Close()
				delete(h.sessions, id)
				log.Printf("🗑️ Expired form session %s", id)
			}
		}
		h.mutex.Unlock()
	}
}

// touch fetches a session, refreshes its idle clock, and checks ownership
func (h *FormSessionHandler) touch(c *gin.Context) (*formSession, bool) {
	sessionID := c.Param("session")

	h.mutex.Lock()
	defer h.mutex.Unlock()

	session, exists := h.sessions[sessionID]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form session not found"})
		return nil, false
	}
	if session.actorID != middleware.ActorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Form session belongs to another user"})
		return nil, false
	}

	session.lastAccess = time.Now()
	return session, true
}

// OpenFormRequest optionally names an existing client to edit
type OpenFormRequest struct {
	ClientID *uuid.UUID `json:"client_id"`
}

// OpenForm starts a form session
// @Summary Open form session
// @Description Start a client form session; pass client_id to edit an existing client, omit it for a blank create form
// @Tags form
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenFormRequest false "Optional client to edit"
// @Success 201 {object} map[string]interface{} "Session id and form state"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /clients/form [post]
func (h *FormSessionHandler) OpenForm(c *gin.Context) {
	var req OpenFormRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	actorID := middleware.ActorID(c)
	controller := controllers.NewFormController(h.service, h.hub, actorID, req.ClientID)
	if req.ClientID != nil {
		controller.Load(c.Request.Context())
	}

	sessionID, err := utils.GenerateRandomToken(16)
	if err != nil {
		controller.Close()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create form session"})
		return
	}

	h.mutex.Lock()
	h.sessions[sessionID] = &formSession{
		controller: controller,
		actorID:    actorID,
		lastAccess: time.Now(),
	}
	h.mutex.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"session": sessionID,
			"form":    controller.Snapshot(),
		},
	})
}

// GetForm returns the current form state
// @Summary Get form state
// @Description Return the current state of a form session
// @Tags form
// @Produce json
// @Security BearerAuth
// @Param session path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Form state"
// @Failure 404 {object} map[string]string "Form session not found"
// @Router /clients/form/{session} [get]
func (h *FormSessionHandler) GetForm(c *gin.Context) {
	session, ok := h.touch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session.controller.Snapshot(),
	})
}

// FieldChangeRequest carries a single field edit
type FieldChangeRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// PatchForm applies a single field edit
// @Summary Edit form field
// @Description Update one form field; any validation error on that field clears immediately
// @Tags form
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session path string true "Session ID"
// @Param change body FieldChangeRequest true "Field edit"
// @Success 200 {object} map[string]interface{} "Form state"
// @Failure 400 {object} map[string]string "Unknown field"
// @Failure 404 {object} map[string]string "Form session not found"
// @Router /clients/form/{session} [patch]
func (h *FormSessionHandler) PatchForm(c *gin.Context) {
	session, ok := h.touch(c)
	if !ok {
		return
	}

	var req FieldChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.controller.HandleChange(req.Field, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session.controller.Snapshot(),
	})
}

// StageFormLogo stages a logo file on the form
// @Summary Stage form logo
// @Description Attach a logo file to the form session; it uploads only on submit
// @Tags form
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param session path string true "Session ID"
// @Param logo formData file true "Logo file"
// @Success 200 {object} map[string]interface{} "Form state"
// @Failure 400 {object} map[string]string "Invalid file"
// @Failure 404 {object} map[string]string "Form session not found"
// @Router /clients/form/{session}/logo [post]
func (h *FormSessionHandler) StageFormLogo(c *gin.Context) {
	session, ok := h.touch(c)
	if !ok {
		return
	}

	logo, err := readLogoFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session.controller.StageLogo(logo)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session.controller.Snapshot(),
	})
}

// SubmitForm validates and persists the form
// @Summary Submit form
// @Description Validate the form and persist it; field errors come back in the form state, a failed backend step lands under the submit error key
// @Tags form
// @Produce json
// @Security BearerAuth
// @Param session path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Form persisted"
// @Failure 404 {object} map[string]string "Form session not found"
// @Failure 422 {object} map[string]interface{} "Validation or submission failure"
// @Router /clients/form/{session}/submit [post]
func (h *FormSessionHandler) SubmitForm(c *gin.Context) {
	session, ok := h.touch(c)
	if !ok {
		return
	}

	submitted := session.controller.Submit(c.Request.Context())
	snapshot := session.controller.Snapshot()

	if !submitted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"data":    snapshot,
		})
		return
	}

	// The session is done once the form persists
	h.mutex.Lock()
	session.controller.Close()
	delete(h.sessions, c.Param("session"))
	h.mutex.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot,
	})
}

// CloseForm discards a form session
// @Summary Close form session
// @Description Discard a form session without submitting
// @Tags form
// @Produce json
// @Security BearerAuth
// @Param session path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Session closed"
// @Failure 404 {object} map[string]string "Form session not found"
// @Router /clients/form/{session} [delete]
func (h *FormSessionHandler) CloseForm(c *gin.Context) {
	session, ok := h.touch(c)
	if !ok {
		return
	}

	h.mutex.Lock()
	session.controller.Close()
	delete(h.sessions, c.Param("session"))
	h.mutex.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Form session closed",
	})
}
