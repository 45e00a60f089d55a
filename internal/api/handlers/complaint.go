package handlers

import (
	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	complaintService *services.ComplaintService
}

func NewComplaintHandler(complaintService *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

func (h *ComplaintHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.CreateComplaintInput
	if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Create(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(201, gin.H{
		"message":   "Complaint created successfully",
		"complaint": complaint,
	})
}

// List handles GET /complaints?status&category&page&limit
func (h *ComplaintHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var query services.ListComplaintsInput
	if err := c.ShouldBindQuery(&query); err != nil {
		c.Error(services.NewValidationError("Invalid query parameters"))
		return
	}

	page, err := h.complaintService.List(c.Request.Context(), actor, query)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, page)
}

func (h *ComplaintHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	complaint, err := h.complaintService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{"complaint": complaint})
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.UpdateStatusInput
	if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{
		"message":   "Complaint status updated successfully",
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) Assign(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.AssignInput
	if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{
		"message":   "Complaint assigned successfully",
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.complaintService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{"message": "Complaint deleted successfully"})
}
