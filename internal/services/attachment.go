package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"time"

	"brotodesk/internal/models"
	"brotodesk/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMaxUploadBytes int64 = 5 << 20

const onlyImagesMessage = "Only image files are allowed (JPEG, PNG, GIF, WebP)"

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// declaredImageTypes is what a client may claim in the part's Content-Type.
// application/octet-stream is what clients send when they do not know.
var declaredImageTypes = append([]string{"image/jpg", "application/octet-stream"}, allowedImageTypes...)

type AttachmentService struct {
	db       *gorm.DB
	files    storage.FileStore
	maxBytes int64
}

func NewAttachmentService(db *gorm.DB, files storage.FileStore, maxBytes int64) *AttachmentService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &AttachmentService{db: db, files: files, maxBytes: maxBytes}
}

func (s *AttachmentService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores an image for a complaint. Only the complaint's author may
// upload. The declared content type must be an image (or unknown) and the
// sniffed type must be an image too; the sniffed type is what gets stored.
func (s *AttachmentService) Upload(ctx context.Context, actor Actor, complaintID string, fh *multipart.FileHeader) (*models.Attachment, error) {
	db := s.db.WithContext(ctx)

	complaint, err := uploadTarget(db, actor, complaintID)
	if err != nil {
		return nil, err
	}

	if fh == nil {
		return nil, uploadError("No file uploaded")
	}
	if fh.Size > s.maxBytes {
		return nil, uploadError(fmt.Sprintf("File too large. Maximum size is %dMB", s.maxBytes>>20))
	}

	if declared := fh.Header.Get("Content-Type"); declared != "" && !mimetype.EqualsAny(declared, declaredImageTypes...) {
		return nil, uploadError(onlyImagesMessage)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, Internal(err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, Internal(err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, uploadError(onlyImagesMessage)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, Internal(err)
	}

	key := fmt.Sprintf("complaint-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], mtype.Extension())
	if err := s.files.Put(ctx, key, mtype.String(), file); err != nil {
		return nil, Internal(err)
	}

	attachment := &models.Attachment{
		ComplaintID: complaint.ID,
		FileName:    fh.Filename,
		FileKey:     key,
		MimeType:    mtype.String(),
		FileSize:    fh.Size,
	}
	if err := db.Create(attachment).Error; err != nil {
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			log.Printf("[attachments] failed to remove orphaned file %s: %v", key, rmErr)
		}
		return nil, Internal(err)
	}

	attachment.URL = s.files.URL(key)
	return attachment, nil
}

// AuthorizeUpload reports whether actor may attach files to the complaint,
// so callers can reject a request before reading its body.
func (s *AttachmentService) AuthorizeUpload(ctx context.Context, actor Actor, complaintID string) error {
	_, err := uploadTarget(s.db.WithContext(ctx), actor, complaintID)
	return err
}

func uploadTarget(db *gorm.DB, actor Actor, complaintID string) (*models.Complaint, error) {
	complaint, err := findComplaint(db, complaintID)
	if err != nil {
		return nil, wrap(err)
	}
	if complaint.StudentID != actor.ID {
		return nil, ErrAccessDenied
	}
	return complaint, nil
}

// ListAttachments returns a complaint's attachments, newest first. Visibility
// follows the complaint itself.
func (s *AttachmentService) ListAttachments(ctx context.Context, actor Actor, complaintID string) ([]models.Attachment, error) {
	db := s.db.WithContext(ctx)

	complaint, err := findComplaint(db, complaintID)
	if err != nil {
		return nil, wrap(err)
	}
	if !actor.IsAdmin() && complaint.StudentID != actor.ID {
		return nil, ErrAccessDenied
	}

	attachments := []models.Attachment{}
	if err := db.Where("complaint_id = ?", complaint.ID).Order("created_at DESC").Find(&attachments).Error; err != nil {
		return nil, Internal(err)
	}
	for i := range attachments {
		attachments[i].URL = s.files.URL(attachments[i].FileKey)
	}
	return attachments, nil
}

// DeleteAttachment removes the stored file and then the row. Only the
// complaint's author may delete.
func (s *AttachmentService) DeleteAttachment(ctx context.Context, actor Actor, attachmentID string) error {
	db := s.db.WithContext(ctx)

	var attachment models.Attachment
	if err := db.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return Internal(err)
	}

	complaint, err := findComplaint(db, attachment.ComplaintID)
	if err != nil {
		return wrap(err)
	}
	if complaint.StudentID != actor.ID {
		return ErrAccessDenied
	}

	if err := s.files.Remove(ctx, attachment.FileKey); err != nil {
		log.Printf("[attachments] failed to remove file %s: %v", attachment.FileKey, err)
	}

	if err := db.Delete(&attachment).Error; err != nil {
		return Internal(err)
	}
	return nil
}

func uploadError(message string) error {
	return NewValidationError(message, FieldError{Field: "photo", Message: message})
}
