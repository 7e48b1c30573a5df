package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/drishyamitra/photobackend/services"
)

type FaceHandler struct {
	PhotoService  *services.PhotoService
	PersonService *services.PersonService
}

func NewFaceHandler(photoService *services.PhotoService, personService *services.PersonService) *FaceHandler {
	return &FaceHandler{PhotoService: photoService, PersonService: personService}
}

// ListByPhoto returns the faces detected on a photo, with person links.
func (h *FaceHandler) ListByPhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	photoID, err := parseUintParam(r, "photoID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid photo ID")
		return
	}

	photo, err := h.PhotoService.Get(photoID, user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo.Faces)
}

type assignFacePayload struct {
	Name string `json:"name"`
}

// AssignPerson links a face to the named person, creating the person when new.
func (h *FaceHandler) AssignPerson(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	faceID, err := parseUintParam(r, "faceID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid face ID")
		return
	}

	var payload assignFacePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload")
		return
	}

	person, err := h.PersonService.AssignFace(faceID, user.ID, payload.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// UnassignPerson removes the face's person link; the person is cleaned up if
// this was their last face.
func (h *FaceHandler) UnassignPerson(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	faceID, err := parseUintParam(r, "faceID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "invalid face ID")
		return
	}

	if err := h.PersonService.UnassignFace(faceID, user.ID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
