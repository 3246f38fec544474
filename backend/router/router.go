package router

import (
	"net/http"

	"mirage/backend/app/controllers"
	"mirage/backend/app/middleware"
)

func NewRouter(
	authCtrl *controllers.AuthController,
	adminCtrl *controllers.AdminController,
	resultsCtrl *controllers.ResultsController,
	updatesCtrl *controllers.UpdatesController,
	surveyCtrl *controllers.SurveyController,
	machinesCtrl *controllers.MachinesController,
	webhooksCtrl *controllers.WebhooksController,
	mw *middleware.Auth,
) http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("/login", authCtrl.Login)

	// agent check-in endpoints: identified by headers, not tokens
	mux.HandleFunc("/api/client/results", resultsCtrl.Post)
	mux.HandleFunc("/api/client/updates", updatesCtrl.Fetch)
	mux.HandleFunc("/api/client/survey", surveyCtrl.Post)

	// operator endpoints
	mux.Handle("/api/machines", mw.RequireAuth(http.HandlerFunc(machinesCtrl.List)))
	mux.Handle("/api/machines/detail", mw.RequireAuth(http.HandlerFunc(machinesCtrl.Get)))
	mux.Handle("/api/machines/online", mw.RequireAuth(http.HandlerFunc(machinesCtrl.Online)))
	mux.Handle("/api/surveys/latest", mw.RequireAuth(http.HandlerFunc(surveyCtrl.Latest)))

	// admin-only
	mux.Handle("/admin/users", mw.RequireAdmin(http.HandlerFunc(adminCtrl.CreateUser)))
	mux.Handle("/api/webhooks", mw.RequireAdmin(http.HandlerFunc(webhooksCtrl.Handle)))
	mux.Handle("/api/webhooks/test", mw.RequireAdmin(http.HandlerFunc(webhooksCtrl.Test)))
	mux.Handle("/api/webhooks/test/timeline", mw.RequireAdmin(http.HandlerFunc(webhooksCtrl.TestTimeline)))
	mux.Handle("/api/machineupdates", mw.RequireAdmin(http.HandlerFunc(updatesCtrl.Handle)))

	return mux
}
