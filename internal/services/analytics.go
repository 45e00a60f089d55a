package services

import (
	"context"

	"brotodesk/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int64           `json:"count"`
}

type Summary struct {
	TotalComplaints      int64           `json:"totalComplaints"`
	PendingComplaints    int64           `json:"pendingComplaints"`
	InProgressComplaints int64           `json:"inProgressComplaints"`
	ResolvedComplaints   int64           `json:"resolvedComplaints"`
	ComplaintsByCategory []CategoryCount `json:"complaintsByCategory"`
}

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Summary counts complaints overall, per primary status and per observed
// category. The queries are independent and run concurrently.
func (s *AnalyticsService) Summary(ctx context.Context, actor Actor) (*Summary, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}

	g, ctx := errgroup.WithContext(ctx)
	out := &Summary{ComplaintsByCategory: []CategoryCount{}}

	count := func(dst *int64, status models.Status) {
		g.Go(func() error {
			q := s.db.WithContext(ctx).Model(&models.Complaint{})
			if status != "" {
				q = q.Where("status = ?", status)
			}
			return q.Count(dst).Error
		})
	}
	count(&out.TotalComplaints, "")
	count(&out.PendingComplaints, models.StatusPending)
	count(&out.InProgressComplaints, models.StatusInProgress)
	count(&out.ResolvedComplaints, models.StatusResolved)

	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Complaint{}).
			Select("category, COUNT(*) AS count").
			Group("category").
			Order("category").
			Scan(&out.ComplaintsByCategory).Error
	})

	if err := g.Wait(); err != nil {
		return nil, Internal(err)
	}
	if out.ComplaintsByCategory == nil {
		out.ComplaintsByCategory = []CategoryCount{}
	}
	return out, nil
}
