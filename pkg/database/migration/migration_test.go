package migration

import (
	"strings"
	"testing"

	"github.com/latoulicious/holocron/pkg/database/models"
	"github.com/stretchr/testify/assert"
)

// TestAppLogModelStructure checks the fields the logging system relies on
func TestAppLogModelStructure(t *testing.T) {
	log := models.AppLog{}

	log.Component = "swapi"
	log.RequestID = "req-123"
	log.Path = "/character/1"

	assert.Equal(t, "swapi", log.Component)
	assert.Equal(t, "req-123", log.RequestID)
	assert.Equal(t, "/character/1", log.Path)
	assert.Equal(t, "app_logs", log.TableName())
}

func TestMigrationHelperTableName(t *testing.T) {
	helper := AppLogMigration{}
	assert.Equal(t, "app_logs", helper.TableName())
}

// Every index created must be dropped by the rollback
func TestLogIndexesHaveRollback(t *testing.T) {
	assert.Len(t, LogIndexNames, len(LogIndexStatements))
	for i, name := range LogIndexNames {
		assert.True(t, strings.Contains(LogIndexStatements[i], name), "statement %d should create %s", i, name)
		assert.True(t, strings.Contains(LogIndexStatements[i], "IF NOT EXISTS"), "index creation should be idempotent")
	}
}
