package services

import (
	"fmt"
	"log"
	"time"

	"github.com/drishyamitra/photobackend/media"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/recognition"
	"github.com/drishyamitra/photobackend/repository"
)

// RecognitionService runs the face pipeline for a photo: detect, persist the
// face rows, extract embeddings and resolve identities. Processing happens
// synchronously in the request that uploads the photo.
//
// Detection and extraction failures are absorbed: a photo whose faces cannot
// be analyzed is still a perfectly good photo, it just gains no face rows or
// identities.
type RecognitionService struct {
	faceRepo      repository.FaceRepositoryInterface
	personService *PersonService
	detector      media.Detector
	embedder      media.Embedder
	matcher       *recognition.Matcher
}

// NewRecognitionService creates a new recognition service
func NewRecognitionService(
	faceRepo repository.FaceRepositoryInterface,
	personService *PersonService,
	detector media.Detector,
	embedder media.Embedder,
	matcher *recognition.Matcher,
) *RecognitionService {
	return &RecognitionService{
		faceRepo:      faceRepo,
		personService: personService,
		detector:      detector,
		embedder:      embedder,
		matcher:       matcher,
	}
}

// ProcessResult summarizes one pipeline run.
type ProcessResult struct {
	FacesDetected int    `json:"faces_detected"`
	AutoMatched   int    `json:"auto_matched"`
	FaceIDs       []uint `json:"face_ids,omitempty"`
}

// ProcessNewPhoto runs detection and identity resolution over a freshly
// uploaded photo. manualNames maps a detection index (in detector output
// order) to a person name supplied by the uploader; manual names are applied
// after the automatic pass has resolved the whole photo, so they win over the
// automatic match for their face without changing how the other faces resolve.
func (s *RecognitionService) ProcessNewPhoto(photo *models.Photo, imageBytes []byte, manualNames map[int]string) (*ProcessResult, error) {
	result := &ProcessResult{}

	detections, err := s.detector.DetectFaces(imageBytes)
	if err != nil {
		log.Printf("recognition: detection failed for photo %d: %v", photo.ID, err)
		return result, nil
	}

	// detection index -> face ID; invalid detections leave gaps
	faceByIndex := make(map[int]uint, len(detections))

	for idx, det := range detections {
		if !det.Box.Valid() {
			log.Printf("recognition: skipping invalid detection %d on photo %d", idx, photo.ID)
			continue
		}

		now := time.Now().Unix()
		confidence := det.Confidence
		face := &models.Face{
			PhotoID:    photo.ID,
			X:          det.Box.X,
			Y:          det.Box.Y,
			Width:      det.Box.Width,
			Height:     det.Box.Height,
			Confidence: &confidence,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.faceRepo.Create(face); err != nil {
			return result, fmt.Errorf("failed to create face record for photo %d: %w", photo.ID, err)
		}
		result.FacesDetected++
		result.FaceIDs = append(result.FaceIDs, face.ID)
		faceByIndex[idx] = face.ID

		embedding := s.extractEmbedding(face, imageBytes, det.Box)
		if embedding == nil {
			continue
		}
		personID, err := s.matcher.FindMatch(embedding, s.embedder.ModelName(), photo.UserID)
		if err != nil {
			log.Printf("recognition: match lookup for face %d failed: %v", face.ID, err)
			continue
		}
		if personID != nil {
			if err := s.faceRepo.TagFace(face.ID, *personID); err != nil {
				log.Printf("recognition: failed to tag face %d with person %d: %v", face.ID, *personID, err)
				continue
			}
			result.AutoMatched++
		}
	}

	// Manual overrides run last. AssignFace reassigns the face and cleans up
	// the auto-matched person if the override stranded it.
	for idx, name := range manualNames {
		if name == "" {
			continue
		}
		faceID, ok := faceByIndex[idx]
		if !ok {
			continue
		}
		if _, err := s.personService.AssignFace(faceID, photo.UserID, name); err != nil {
			log.Printf("recognition: manual assignment of face %d failed: %v", faceID, err)
		}
	}

	return result, nil
}

// extractEmbedding runs the embedder and persists the vector. Any failure is
// logged and leaves the face without an embedding.
func (s *RecognitionService) extractEmbedding(face *models.Face, imageBytes []byte, box media.BoundingBox) []float32 {
	embedding, err := s.embedder.ExtractEmbedding(imageBytes, box)
	if err != nil {
		log.Printf("recognition: embedding extraction for face %d failed: %v", face.ID, err)
		return nil
	}
	if len(embedding) == 0 {
		return nil
	}
	if err := s.faceRepo.SetEmbedding(face.ID, embedding, s.embedder.ModelName()); err != nil {
		log.Printf("recognition: failed to store embedding of face %d: %v", face.ID, err)
		return nil
	}
	return embedding
}

// AnalyzeFaces reruns the pipeline for an existing photo without manual
// overrides.
func (s *RecognitionService) AnalyzeFaces(photo *models.Photo, imageBytes []byte) (*ProcessResult, error) {
	return s.ProcessNewPhoto(photo, imageBytes, nil)
}

// MatchEmbedding exposes the identity matcher directly. Returns nil when no
// stored identity reaches the similarity threshold.
func (s *RecognitionService) MatchEmbedding(userID uint, embedding []float32) (*uint, error) {
	return s.matcher.FindMatch(embedding, s.embedder.ModelName(), userID)
}
