package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/drishyamitra/photobackend/services"
)

type PersonHandler struct {
	PersonService *services.PersonService
}

func NewPersonHandler(personService *services.PersonService) *PersonHandler {
	return &PersonHandler{PersonService: personService}
}

// List returns every person in the user's library that has at least one face.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	people, err := h.PersonService.ListPeople(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

// Photos lists the photos containing the person.
func (h *PersonHandler) Photos(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	personID, err := parseUintParam(r, "personID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid person ID")
		return
	}

	photos, err := h.PersonService.PersonPhotos(personID, user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

type renamePersonPayload struct {
	Name string `json:"name"`
}

// Rename changes a person's display name.
func (h *PersonHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	personID, err := parseUintParam(r, "personID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid person ID")
		return
	}

	var payload renamePersonPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload")
		return
	}

	if err := h.PersonService.Rename(personID, user.ID, payload.Name); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a person; their faces revert to unknown.
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	personID, err := parseUintParam(r, "personID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid person ID")
		return
	}

	if err := h.PersonService.DeletePerson(personID, user.ID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
