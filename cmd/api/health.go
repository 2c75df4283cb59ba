package main

import (
	"net/http"

	"bulkwala/internal/degrade"
)

type healthStatus struct {
	Status       string          `json:"status"`
	Env          string          `json:"env"`
	Version      string          `json:"version"`
	Capabilities map[string]bool `json:"capabilities"`
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports the environment and which optional capabilities are configured
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	healthStatus
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	caps := map[string]bool{}
	for _, c := range []degrade.Capability{degrade.Database, degrade.Email, degrade.SMS, degrade.Images, degrade.Payments} {
		caps[string(c)] = app.exec.Configured(c)
	}

	data := healthStatus{
		Status:       "ok",
		Env:          app.config.Env,
		Version:      app.config.Version,
		Capabilities: caps,
	}

	if err := app.jsonResponse(w, http.StatusOK, data, "Server is healthy"); err != nil {
		app.internalServerError(w, r, err)
	}
}
