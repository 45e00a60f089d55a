package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"brotodesk/internal/events"
	"brotodesk/internal/models"
	"brotodesk/internal/storage"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type CreateComplaintInput struct {
	Title       string `json:"title" validate:"min=5"`
	Description string `json:"description" validate:"min=10"`
	Category    string `json:"category" validate:"oneof=HOSTEL PLACEMENT MENTOR SYSTEM_ISSUE INFRASTRUCTURE ACADEMICS OTHER"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

type ListComplaintsInput struct {
	Status   string `form:"status" json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED REOPENED CLOSED"`
	Category string `form:"category" json:"category" validate:"omitempty,oneof=HOSTEL PLACEMENT MENTOR SYSTEM_ISSUE INFRASTRUCTURE ACADEMICS OTHER"`
	Page     int    `form:"page" json:"page"`
	Limit    int    `form:"limit" json:"limit"`
}

type UpdateStatusInput struct {
	Status        string  `json:"status" validate:"oneof=PENDING IN_PROGRESS RESOLVED REOPENED CLOSED"`
	AdminResponse *string `json:"adminResponse"`
}

type AssignInput struct {
	AdminID string `json:"adminId" validate:"required"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ComplaintPage struct {
	Complaints []models.Complaint `json:"complaints"`
	Pagination Pagination         `json:"pagination"`
}

type ComplaintService struct {
	db     *gorm.DB
	files  storage.FileStore
	events events.Publisher
	strict bool
}

// NewComplaintService builds the lifecycle service. With strict set, status
// updates must follow the transition table in CanTransition.
func NewComplaintService(db *gorm.DB, files storage.FileStore, pub events.Publisher, strict bool) *ComplaintService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ComplaintService{db: db, files: files, events: pub, strict: strict}
}

// Create files a complaint for the caller and notifies every admin
func (s *ComplaintService) Create(ctx context.Context, actor Actor, in CreateComplaintInput) (*models.Complaint, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		Title:       in.Title,
		Description: in.Description,
		Category:    models.Category(in.Category),
		Priority:    models.Priority(in.Priority),
		StudentID:   actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(complaint).Error; err != nil {
			return err
		}

		admins, err := adminIDs(tx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			return nil
		}

		payload, _ := json.Marshal(map[string]string{"complaintId": complaint.ID})
		notes := make([]models.Notification, 0, len(admins))
		for _, id := range admins {
			notes = append(notes, models.Notification{
				UserID:  id,
				Type:    models.NotificationNewComplaint,
				Message: "New complaint: " + complaint.Title,
				Payload: datatypes.JSON(payload),
			})
		}
		return tx.CreateInBatches(notes, 100).Error
	})
	if err != nil {
		return nil, wrap(err)
	}

	created, err := s.load(s.db.WithContext(ctx), complaint.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.Event{
		Type:        events.ComplaintCreated,
		ComplaintID: created.ID,
		ActorID:     actor.ID,
		Status:      string(created.Status),
	})
	return created, nil
}

// List returns one page of complaints, newest first. Students only ever see
// their own complaints.
func (s *ComplaintService) List(ctx context.Context, actor Actor, in ListComplaintsInput) (*ComplaintPage, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	query := s.db.WithContext(ctx).Model(&models.Complaint{})
	if !actor.IsAdmin() {
		query = query.Where("student_id = ?", actor.ID)
	}
	if in.Status != "" {
		query = query.Where("status = ?", in.Status)
	}
	if in.Category != "" {
		query = query.Where("category = ?", in.Category)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Internal(err)
	}

	complaints := make([]models.Complaint, 0, limit)
	err := withDetails(query.Session(&gorm.Session{})).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, Internal(err)
	}
	for i := range complaints {
		s.decorate(&complaints[i])
	}

	return &ComplaintPage{
		Complaints: complaints,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// Get fetches one complaint. A student may only read their own.
func (s *ComplaintService) Get(ctx context.Context, actor Actor, id string) (*models.Complaint, error) {
	complaint, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && complaint.StudentID != actor.ID {
		return nil, ErrAccessDenied
	}
	return complaint, nil
}

// UpdateStatus changes the status, notifies the author and writes an audit
// row, all in one transaction.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor Actor, id string, in UpdateStatusInput) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	status := models.Status(in.Status)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complaint, err := findComplaint(tx, id)
		if err != nil {
			return err
		}
		if s.strict && !CanTransition(complaint.Status, status) {
			return NewValidationError(
				fmt.Sprintf("Cannot change status from %s to %s", complaint.Status, status),
				FieldError{Field: "status", Message: "Transition not allowed"},
			)
		}

		updates := map[string]any{"status": status}
		if in.AdminResponse != nil {
			updates["admin_response"] = *in.AdminResponse
		}
		if status == models.StatusResolved {
			updates["resolved_at"] = time.Now()
		}
		if err := tx.Model(complaint).Updates(updates).Error; err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]string{"complaintId": complaint.ID, "status": string(status)})
		note := &models.Notification{
			UserID:  complaint.StudentID,
			Type:    models.NotificationComplaintUpdate,
			Message: fmt.Sprintf("Your complaint %q status changed to %s", complaint.Title, status),
			Payload: datatypes.JSON(payload),
		}
		if err := tx.Create(note).Error; err != nil {
			return err
		}

		return recordAudit(tx, actor, models.AuditUpdateComplaintStatus, complaint.ID, map[string]any{
			"status":        status,
			"adminResponse": in.AdminResponse,
		})
	})
	if err != nil {
		return nil, wrap(err)
	}

	updated, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.Event{
		Type:        events.ComplaintStatusUpdated,
		ComplaintID: updated.ID,
		ActorID:     actor.ID,
		Status:      string(updated.Status),
	})
	return updated, nil
}

// Assign hands the complaint to an admin. The target must hold ADMIN or SUPERADMIN.
func (s *ComplaintService) Assign(ctx context.Context, actor Actor, id string, in AssignInput) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complaint, err := findComplaint(tx, id)
		if err != nil {
			return err
		}

		var assignee models.User
		if err := tx.First(&assignee, "id = ?", in.AdminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidAssignee()
			}
			return err
		}
		if !assignee.Role.IsAdmin() {
			return invalidAssignee()
		}

		if err := tx.Model(complaint).Update("assigned_admin_id", assignee.ID).Error; err != nil {
			return err
		}
		return recordAudit(tx, actor, models.AuditAssignComplaint, complaint.ID, map[string]any{
			"adminId": assignee.ID,
		})
	})
	if err != nil {
		return nil, wrap(err)
	}

	updated, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.Event{
		Type:        events.ComplaintAssigned,
		ComplaintID: updated.ID,
		ActorID:     actor.ID,
		AssigneeID:  in.AdminID,
	})
	return updated, nil
}

func invalidAssignee() error {
	return NewValidationError("Assigned user must be an admin",
		FieldError{Field: "adminId", Message: "Assigned user must be an admin"})
}

// Delete removes the complaint and its attachments. Stored files are removed
// after the rows are gone; a failed file removal is only logged.
func (s *ComplaintService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}

	var attachments []models.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complaint, err := findComplaint(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", complaint.ID).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", complaint.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Complaint{}, "id = ?", complaint.ID).Error; err != nil {
			return err
		}
		return recordAudit(tx, actor, models.AuditDeleteComplaint, complaint.ID, map[string]any{
			"title":       complaint.Title,
			"attachments": len(attachments),
		})
	})
	if err != nil {
		return wrap(err)
	}

	for _, a := range attachments {
		if err := s.files.Remove(ctx, a.FileKey); err != nil {
			log.Printf("[complaints] failed to remove file %s of complaint %s: %v", a.FileKey, id, err)
		}
	}

	publish(ctx, s.events, events.Event{
		Type:        events.ComplaintDeleted,
		ComplaintID: id,
		ActorID:     actor.ID,
	})
	return nil
}

func (s *ComplaintService) load(db *gorm.DB, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := withDetails(db).First(&complaint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, Internal(err)
	}
	s.decorate(&complaint)
	return &complaint, nil
}

func (s *ComplaintService) decorate(c *models.Complaint) {
	if c.Attachments == nil {
		c.Attachments = []models.Attachment{}
	}
	for i := range c.Attachments {
		c.Attachments[i].URL = s.files.URL(c.Attachments[i].FileKey)
	}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Student").
		Preload("AssignedAdmin", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
}

func findComplaint(db *gorm.DB, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := db.First(&complaint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}
	return &complaint, nil
}
