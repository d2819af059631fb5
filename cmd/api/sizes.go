package main

import "net/http"

type CreateSizePayload struct {
	SizeName string `json:"sizeName" validate:"required,max=50"`
}

func (app *application) listSizesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.catalog.ListSizes(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, list)
}

// createSizeHandler godoc
//
//	@Summary	Create a size
//	@Tags		sizes
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateSizePayload	true	"Size"
//	@Success	201		{object}	sizes.Size
//	@Failure	400		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/sizes/add [post]
func (app *application) createSizeHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSizePayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	size, err := app.catalog.CreateSize(r.Context(), payload.SizeName)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("size", "create")
	app.respond(w, r, http.StatusCreated, size)
}

func (app *application) deleteSizeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.catalog.DeleteSize(r.Context(), id); err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("size", "delete")
	app.respondMessage(w, r, "Size deleted successfully")
}
