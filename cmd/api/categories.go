package main

import (
	"net/http"

	"storefront/internal/catalog"
)

type CreateTopCategoryPayload struct {
	Name         string   `json:"name" validate:"required,max=100"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

type UpdateTopCategoryPayload struct {
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

type CreateParentCategoryPayload struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Top          *string  `json:"top" validate:"omitempty,max=100"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

type UpdateParentCategoryPayload struct {
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	Top          *string  `json:"top" validate:"omitempty,max=100"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

type CreateChildCategoryPayload struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Parents      nameList `json:"parents" swaggertype:"array,string"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

type UpdateChildCategoryPayload struct {
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	Parents      nameList `json:"parents" swaggertype:"array,string"`
	IsActive     flexBool `json:"isActive" swaggertype:"boolean"`
	ShowInNavbar flexBool `json:"showInNavbar" swaggertype:"boolean"`
}

// decodePayload reads and validates a JSON body, writing the 400 itself.
func (app *application) decodePayload(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := readJSON(w, r, payload); err != nil {
		app.badRequestResponse(w, r, err)
		return false
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return false
	}
	return true
}

func (app *application) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := readIDParam(r, name)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return 0, false
	}
	return id, true
}

func (app *application) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) respondMessage(w http.ResponseWriter, r *http.Request, message string) {
	app.respond(w, r, http.StatusOK, map[string]string{"message": message})
}

// ------------------------------------
// Top categories
// ------------------------------------

// listTopCategoriesHandler godoc
//
//	@Summary	List top categories
//	@Tags		topcategories
//	@Produce	json
//	@Success	200	{array}		catalog.TopCategoryDetail
//	@Failure	500	{object}	error
//	@Router		/topcategories [get]
func (app *application) listTopCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.catalog.ListTopCategories(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, list)
}

func (app *application) getTopCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	top, err := app.catalog.GetTopCategory(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, top)
}

func (app *application) listTopCategoryParentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	parents, err := app.catalog.ListTopParents(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, parents)
}

// createTopCategoryHandler godoc
//
//	@Summary	Create a top category
//	@Tags		topcategories
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateTopCategoryPayload	true	"Top category"
//	@Success	201		{object}	categories.TopCategory
//	@Failure	400		{object}	error
//	@Security	ApiKeyAuth
//	@Router		/topcategories/add [post]
func (app *application) createTopCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTopCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	top, err := app.catalog.CreateTopCategory(r.Context(), catalog.TopInput{
		Name:         payload.Name,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("topcategory", "create")
	app.respond(w, r, http.StatusCreated, top)
}

func (app *application) updateTopCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	var payload UpdateTopCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	top, err := app.catalog.UpdateTopCategory(r.Context(), id, catalog.TopUpdate{
		Name:         payload.Name,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("topcategory", "update")
	app.respond(w, r, http.StatusOK, top)
}

func (app *application) deleteTopCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.catalog.DeleteTopCategory(r.Context(), id); err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("topcategory", "delete")
	app.respondMessage(w, r, "Top category deleted successfully")
}

// ------------------------------------
// Parent categories
// ------------------------------------

// listParentCategoriesHandler godoc
//
//	@Summary	List parent categories with their children
//	@Tags		parentcategories
//	@Produce	json
//	@Success	200	{array}		catalog.ParentCategoryDetail
//	@Failure	500	{object}	error
//	@Router		/parentcategories [get]
func (app *application) listParentCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.catalog.ListParentCategories(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, list)
}

func (app *application) getParentCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	parent, err := app.catalog.GetParentCategory(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, parent)
}

func (app *application) listParentCategoryChildrenHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	children, err := app.catalog.ListParentChildren(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, children)
}

// createParentCategoryHandler godoc
//
//	@Summary		Create a parent category
//	@Description	top is the name of an existing top category.
//	@Tags			parentcategories
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateParentCategoryPayload	true	"Parent category"
//	@Success		201		{object}	categories.ParentCategory
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error	"top category not found"
//	@Security		ApiKeyAuth
//	@Router			/parentcategories/add [post]
func (app *application) createParentCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateParentCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	in := catalog.ParentInput{
		Name:         payload.Name,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	}
	if payload.Top != nil {
		in.Top = *payload.Top
	}

	parent, err := app.catalog.CreateParentCategory(r.Context(), in)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("parentcategory", "create")
	app.respond(w, r, http.StatusCreated, parent)
}

func (app *application) updateParentCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	var payload UpdateParentCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	parent, err := app.catalog.UpdateParentCategory(r.Context(), id, catalog.ParentUpdate{
		Name:         payload.Name,
		Top:          payload.Top,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("parentcategory", "update")
	app.respond(w, r, http.StatusOK, parent)
}

// deleteParentCategoryHandler godoc
//
//	@Summary		Delete a parent category
//	@Description	Unlinks the parent from every child category. Children are kept.
//	@Tags			parentcategories
//	@Produce		json
//	@Param			id	path		int	true	"Parent category ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/parentcategories/{id} [delete]
func (app *application) deleteParentCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.catalog.DeleteParentCategory(r.Context(), id); err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("parentcategory", "delete")
	app.respondMessage(w, r, "Parent category deleted successfully")
}

// ------------------------------------
// Child categories
// ------------------------------------

func (app *application) listChildCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.catalog.ListChildCategories(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, list)
}

func (app *application) getChildCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	child, err := app.catalog.GetChildCategory(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.respond(w, r, http.StatusOK, child)
}

// createChildCategoryHandler godoc
//
//	@Summary		Create a child category
//	@Description	parents holds one or more parent category names. The name must be unique under that exact set of parents.
//	@Tags			childcategories
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateChildCategoryPayload	true	"Child category"
//	@Success		201		{object}	catalog.ChildCategoryDetail
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error	"parent category not found"
//	@Security		ApiKeyAuth
//	@Router			/childcategories/add [post]
func (app *application) createChildCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateChildCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	child, err := app.catalog.CreateChildCategory(r.Context(), catalog.ChildInput{
		Name:         payload.Name,
		Parents:      payload.Parents,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("childcategory", "create")
	app.respond(w, r, http.StatusCreated, child)
}

func (app *application) updateChildCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	var payload UpdateChildCategoryPayload
	if !app.decodePayload(w, r, &payload) {
		return
	}

	child, err := app.catalog.UpdateChildCategory(r.Context(), id, catalog.ChildUpdate{
		Name:         payload.Name,
		Parents:      payload.Parents,
		IsActive:     payload.IsActive.Ptr(),
		ShowInNavbar: payload.ShowInNavbar.Ptr(),
	})
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("childcategory", "update")
	app.respond(w, r, http.StatusOK, child)
}

func (app *application) deleteChildCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.catalog.DeleteChildCategory(r.Context(), id); err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.metrics.CatalogChanged("childcategory", "delete")
	app.respondMessage(w, r, "Child category deleted successfully")
}
