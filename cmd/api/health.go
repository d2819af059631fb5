package main

import (
	"net/http"
)

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service status, environment and version.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}

	status := http.StatusOK
	if err := app.store.Ping(r.Context()); err != nil {
		app.logger.Errorw("health check failed", "error", err.Error())
		data["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if err := writeJSON(w, status, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
