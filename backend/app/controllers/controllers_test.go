package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mirage/backend/app/models"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:ctrltest%d?mode=memory&cache=shared", testDBSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Machine{},
		&models.MachineHistory{},
		&models.HistoryTimeline{},
		&models.Webhook{},
		&models.MachineUpdate{},
		&models.Survey{},
		&models.SurveyInterface{},
		&models.SurveyLocalUser{},
		&models.SurveyDrive{},
		&models.SurveyProcess{},
		&models.SurveyPort{},
	))
	return gdb
}

// identify stamps the check-in headers for a fully-described agent.
func identify(r *http.Request) {
	r.Header.Set(HeaderMachineName, "ws-1")
	r.Header.Set(HeaderMachineFQDN, "ws-1.corp.local")
	r.Header.Set(HeaderMachineIP, "10.0.0.5")
	r.Header.Set(HeaderCurrentUser, "alice")
}
