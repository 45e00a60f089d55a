package models_test

import (
	"path/filepath"
	"testing"

	"brotodesk/internal/config"
	"brotodesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestBeforeCreateGeneratesUUIDs(t *testing.T) {
	user := &models.User{Name: "Ann"}
	require.NoError(t, user.BeforeCreate(nil))
	_, err := uuid.Parse(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)

	complaint := &models.Complaint{}
	require.NoError(t, complaint.BeforeCreate(nil))
	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, models.PriorityMedium, complaint.Priority)
	assert.Equal(t, models.StatusPending, complaint.Status)
}

func TestBeforeCreatePreservesExistingID(t *testing.T) {
	existing := uuid.NewString()
	n := &models.Notification{ID: existing}
	require.NoError(t, n.BeforeCreate(nil))
	assert.Equal(t, existing, n.ID)
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, models.RoleAdmin.IsAdmin())
	assert.True(t, models.RoleSuperAdmin.IsAdmin())
	assert.False(t, models.RoleStudent.IsAdmin())
	assert.False(t, models.Role("GUEST").Valid())
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "models.db")},
		},
	}

	db, err := models.Open(cfg)
	require.NoError(t, err)
	defer models.Close(db)

	require.NoError(t, models.Migrate(db))
	for _, table := range []string{"users", "complaints", "attachments", "notifications", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestComplaintUserRelationsAreBelongsTo(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "relations.db")},
		},
	}
	db, err := models.Open(cfg)
	require.NoError(t, err)
	defer models.Close(db)
	require.NoError(t, models.Migrate(db))

	stmt := &gorm.Statement{DB: db}
	require.NoError(t, stmt.Parse(&models.Complaint{}))

	for field, fk := range map[string]string{"Student": "student_id", "AssignedAdmin": "assigned_admin_id"} {
		rel, ok := stmt.Schema.Relationships.Relations[field]
		require.True(t, ok, field)
		assert.Equal(t, schema.BelongsTo, rel.Type, field)
		require.Len(t, rel.References, 1)
		assert.Equal(t, fk, rel.References[0].ForeignKey.DBName)
		assert.Equal(t, "id", rel.References[0].PrimaryKey.DBName)
		assert.True(t, db.Migrator().HasConstraint(&models.Complaint{}, field), field)
	}

	assert.True(t, db.Migrator().HasColumn(&models.User{}, "student_number"))
	assert.False(t, db.Migrator().HasColumn(&models.User{}, "student_id"))
}

func TestOpenRejectsUnknownDatabase(t *testing.T) {
	_, err := models.Open(&config.Config{Database: config.DatabaseConfig{Type: "oracle"}})
	assert.ErrorContains(t, err, "unsupported database type")
}
