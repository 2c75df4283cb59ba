package main

import (
	"net/http"

	"bulkwala/internal/domain/offers"
)

const offerNotConfigured = "Database not configured"

// startOfferHandler godoc
//
//	@Summary		Start a 15 minute flash offer
//	@Description	Replaces any existing offer. Responds with an inactive offer when the offer store is unavailable.
//	@Tags			offers
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		offers.StartRequest	true	"Discount settings"
//	@Success		200		{object}	offers.Offer
//	@Failure		400		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/offers/start [post]
func (app *application) startOfferHandler(w http.ResponseWriter, r *http.Request) {
	var payload offers.StartRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	out := app.offers.Start(r.Context(), payload)

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:           "Flash offer started",
		Degraded:     "Offer service unavailable",
		Unconfigured: offerNotConfigured,
	})
}

// getActiveOfferHandler godoc
//
//	@Summary		Get the active flash offer
//	@Description	Returns {"isActive": false} when there is no live offer
//	@Tags			offers
//	@Produce		json
//	@Success		200	{object}	offers.Offer
//	@Router			/offers/active [get]
func (app *application) getActiveOfferHandler(w http.ResponseWriter, r *http.Request) {
	out := app.offers.Active(r.Context())

	ok := "Active offer"
	if out.Value == nil || !out.Value.IsActive {
		ok = "No active offer"
	}

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:           ok,
		Degraded:     "No active offer",
		Unconfigured: offerNotConfigured,
	})
}

// deleteOfferHandler godoc
//
//	@Summary	Delete the flash offer
//	@Tags		offers
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/offers [delete]
func (app *application) deleteOfferHandler(w http.ResponseWriter, r *http.Request) {
	out := app.offers.Delete(r.Context())

	writeOutcome(app, w, r, out, http.StatusOK, messages{
		OK:           "Offer deleted successfully",
		Degraded:     "Offer service unavailable",
		Unconfigured: offerNotConfigured,
	})
}
