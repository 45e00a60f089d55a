package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and headers around the file part
const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// Upload handles multipart uploads with the image in the "photo" field
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	// Ownership is settled before the body is read so that an oversized
	// upload from the wrong caller still gets 403/404
	if err := h.attachmentService.AuthorizeUpload(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	maxBytes := h.attachmentService.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	fh, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg := fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20)
			c.Error(services.NewValidationError(msg, services.FieldError{Field: "photo", Message: msg}))
			return
		}
		fh = nil
	}

	attachment, err := h.attachmentService.Upload(c.Request.Context(), actor, c.Param("id"), fh)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(201, gin.H{
		"message":    "File uploaded successfully",
		"attachment": attachment,
	})
}

func (h *AttachmentHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.ListAttachments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{"attachments": attachments})
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteAttachment(c.Request.Context(), actor, c.Param("attachmentId")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(200, gin.H{"message": "Attachment deleted successfully"})
}
