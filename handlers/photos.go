package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/drishyamitra/photobackend/media"
	"github.com/drishyamitra/photobackend/repository"
	"github.com/drishyamitra/photobackend/services"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 64 << 20 // 64 MiB

type PhotoHandler struct {
	PhotoService       *services.PhotoService
	RecognitionService *services.RecognitionService
	DuplicateService   *services.DuplicateService
	Store              media.Store
}

func NewPhotoHandler(
	photoService *services.PhotoService,
	recognitionService *services.RecognitionService,
	duplicateService *services.DuplicateService,
	store media.Store,
) *PhotoHandler {
	return &PhotoHandler{
		PhotoService:       photoService,
		RecognitionService: recognitionService,
		DuplicateService:   duplicateService,
		Store:              store,
	}
}

// UploadResponse is the upload endpoint's response body.
type UploadResponse struct {
	*services.UploadResult
	Recognition *services.ProcessResult `json:"recognition,omitempty"`
}

// Upload accepts a multipart photo upload and runs the face pipeline
// synchronously before responding.
//
// Form fields: "file" (required), "tags" (comma separated, optional) and
// "face_names" (optional JSON object mapping detection index to person name).
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "missing 'file' form field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "failed to read upload: "+err.Error())
		return
	}

	var tags []string
	if raw := strings.TrimSpace(r.FormValue("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	var faceNames map[int]string
	if raw := strings.TrimSpace(r.FormValue("face_names")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &faceNames); err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "invalid 'face_names' payload: "+err.Error())
			return
		}
	}

	result, err := h.PhotoService.Upload(user.ID, header.Filename, data, tags)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	recognition, err := h.RecognitionService.ProcessNewPhoto(result.Photo, data, faceNames)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// reload so the response carries faces and tags
	photo, err := h.PhotoService.Get(result.Photo.ID, user.ID)
	if err == nil {
		result.Photo = photo
	}

	writeJSON(w, http.StatusCreated, UploadResponse{UploadResult: result, Recognition: recognition})
}

// List returns the user's photos, filtered by query parameters.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	opts := repository.PhotoListOptions{
		FavoritesOnly:  r.URL.Query().Get("favorites") == "true",
		DuplicatesOnly: r.URL.Query().Get("duplicates") == "true",
		Tag:            r.URL.Query().Get("tag"),
		Search:         r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			opts.Offset = offset
		}
	}
	if raw := r.URL.Query().Get("person_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			personID := uint(id)
			opts.PersonID = &personID
		}
	}

	photos, err := h.PhotoService.List(user.ID, opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Get returns a single photo with faces and tags.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	photoID, err := parseUintParam(r, "photoID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	photo, err := h.PhotoService.Get(photoID, user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// ServeFile streams the stored photo file.
func (h *PhotoHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	photoID, err := parseUintParam(r, "photoID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	photo, err := h.PhotoService.Get(photoID, user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	relPath := services.StoragePath(photo)
	if r.URL.Query().Get("thumbnail") == "true" && photo.ThumbnailPath != nil {
		relPath = *photo.ThumbnailPath
	}

	file, info, err := h.Store.Get(relPath)
	if err != nil {
		WriteAPIError(w, http.StatusNotFound, "not_found", "stored file is missing")
		return
	}
	defer file.Close()

	if photo.MimeType != nil {
		w.Header().Set("Content-Type", *photo.MimeType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	_, _ = io.Copy(w, file)
}

// Delete removes a single photo.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	photoID, err := parseUintParam(r, "photoID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	if err := h.PhotoService.Delete(photoID, user.ID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type batchDeletePayload struct {
	PhotoIDs []uint `json:"photo_ids"`
}

// DeleteBatch removes multiple photos in one request.
func (h *PhotoHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var payload batchDeletePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload")
		return
	}
	if len(payload.PhotoIDs) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "photo_ids must not be empty")
		return
	}

	if err := h.PhotoService.DeleteBatch(payload.PhotoIDs, user.ID); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag on a photo.
func (h *PhotoHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	photoID, err := parseUintParam(r, "photoID")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	favorite, err := h.PhotoService.ToggleFavorite(photoID, user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": favorite})
}

// ListTags returns the distinct tags in the user's library.
func (h *PhotoHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	tags, err := h.PhotoService.ListTags(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// ListDuplicates returns the duplicate groups in the user's library.
func (h *PhotoHandler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	groups, err := h.DuplicateService.GroupDuplicates(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// StageDuplicatePurge returns the keep-oldest cleanup plan without deleting.
func (h *PhotoHandler) StageDuplicatePurge(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	plan, err := h.DuplicateService.StagePurge(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Stats returns the library statistics for the user.
func (h *PhotoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r)
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	stats, err := h.PhotoService.Stats(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
