package services_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"

	"brotodesk/internal/config"
	"brotodesk/internal/events"
	"brotodesk/internal/models"
	"brotodesk/internal/services"
	"brotodesk/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// pngBytes is a PNG signature followed by an IHDR chunk, enough for sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

type harness struct {
	cfg           *config.Config
	db            *gorm.DB
	files         *storage.DiskStore
	events        *events.Recorder
	auth          *services.AuthService
	complaints    *services.ComplaintService
	attachments   *services.AttachmentService
	notifications *services.NotificationService
	analytics     *services.AnalyticsService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "test.db")},
		},
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-testing-only",
			ExpiresIn: "24h",
			Issuer:    "brotodesk-test",
		},
		Security: config.SecurityConfig{BcryptCost: 4},
		DefaultUser: config.DefaultUserConfig{
			Name:     "Admin User",
			Email:    "admin@brototype.com",
			Password: "admin123",
			Role:     "ADMIN",
		},
	}

	db, err := models.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() { models.Close(db) })

	files, err := storage.NewDiskStore(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	rec := &events.Recorder{}
	return &harness{
		cfg:           cfg,
		db:            db,
		files:         files,
		events:        rec,
		auth:          services.NewAuthService(db, cfg),
		complaints:    services.NewComplaintService(db, files, rec, false),
		attachments:   services.NewAttachmentService(db, files, services.DefaultMaxUploadBytes),
		notifications: services.NewNotificationService(db),
		analytics:     services.NewAnalyticsService(db),
	}
}

func (h *harness) register(t *testing.T, name, email string, role models.Role) services.Actor {
	t.Helper()
	user, err := h.auth.Register(context.Background(), services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return services.Actor{ID: user.ID, Email: user.Email, Role: user.Role, IPAddress: "127.0.0.1", UserAgent: "go-test"}
}

func (h *harness) createComplaint(t *testing.T, actor services.Actor, title string, category models.Category) *models.Complaint {
	t.Helper()
	c, err := h.complaints.Create(context.Background(), actor, services.CreateComplaintInput{
		Title:       title,
		Description: "Something needs attention as soon as possible.",
		Category:    string(category),
	})
	require.NoError(t, err)
	return c
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	return fileHeaderAs(t, name, "application/octet-stream", content)
}

// fileHeaderAs builds a "photo" part that declares contentType
func fileHeaderAs(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["photo"][0]
}

func requireKind(t *testing.T, err error, kind services.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, services.KindOf(err), err.Error())
}
