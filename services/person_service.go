package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/repository"
	"gorm.io/gorm"
)

// PersonService provides high-level operations on the person registry. A
// person exists only while at least one face references it; every operation
// that can strand a person runs the orphan cleanup afterwards.
type PersonService struct {
	personRepo repository.PersonRepositoryInterface
	faceRepo   repository.FaceRepositoryInterface
	photoRepo  repository.PhotoRepositoryInterface
}

// NewPersonService creates a new person service
func NewPersonService(
	personRepo repository.PersonRepositoryInterface,
	faceRepo repository.FaceRepositoryInterface,
	photoRepo repository.PhotoRepositoryInterface,
) *PersonService {
	return &PersonService{
		personRepo: personRepo,
		faceRepo:   faceRepo,
		photoRepo:  photoRepo,
	}
}

// PersonSummary is a person plus the aggregate counts the listing endpoints
// return.
type PersonSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	FaceCount int64  `json:"face_count"`
	// AvatarPath is the stored avatar; AvatarPhotoID falls back to the first
	// photo containing the person when no avatar was set.
	AvatarPath    *string `json:"avatar_path,omitempty"`
	AvatarPhotoID *uint   `json:"avatar_photo_id,omitempty"`
}

// FindOrCreate returns the user's person with the given name, creating it if
// absent. Names are trimmed; an empty result is rejected.
func (s *PersonService) FindOrCreate(userID uint, name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("person name must not be empty: %w", apperr.ErrInvalidInput)
	}
	person, err := s.personRepo.FindOrCreate(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create person '%s': %w", name, err)
	}
	return person, nil
}

// AssignFace links a face to the named person, creating the person on first
// use. When the face was previously linked to someone else, the prior person
// is cleaned up if the reassignment left them with no faces.
func (s *PersonService) AssignFace(faceID, userID uint, name string) (*models.Person, error) {
	face, err := s.faceRepo.GetByIDForUser(faceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("face %d: %w", faceID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load face %d: %w", faceID, err)
	}

	person, err := s.FindOrCreate(userID, name)
	if err != nil {
		return nil, err
	}

	priorPersonID := face.PersonID
	if err := s.faceRepo.TagFace(faceID, person.ID); err != nil {
		return nil, fmt.Errorf("failed to tag face %d with person %d: %w", faceID, person.ID, err)
	}

	if priorPersonID != nil && *priorPersonID != person.ID {
		if _, err := s.CleanupIfOrphan(*priorPersonID); err != nil {
			log.Printf("person: cleanup after reassigning face %d failed: %v", faceID, err)
		}
	}
	return person, nil
}

// UnassignFace removes the face's person link and cleans up the person if no
// other faces reference them.
func (s *PersonService) UnassignFace(faceID, userID uint) error {
	face, err := s.faceRepo.GetByIDForUser(faceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("face %d: %w", faceID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to load face %d: %w", faceID, err)
	}
	if face.PersonID == nil {
		return nil
	}
	priorPersonID := *face.PersonID

	if err := s.faceRepo.UntagFace(faceID); err != nil {
		return fmt.Errorf("failed to untag face %d: %w", faceID, err)
	}
	if _, err := s.CleanupIfOrphan(priorPersonID); err != nil {
		log.Printf("person: cleanup after untagging face %d failed: %v", faceID, err)
	}
	return nil
}

// Rename changes a person's display name inside the user's scope.
func (s *PersonService) Rename(personID, userID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("person name must not be empty: %w", apperr.ErrInvalidInput)
	}
	if err := s.personRepo.Rename(personID, userID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("person %d: %w", personID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to rename person %d: %w", personID, err)
	}
	return nil
}

// DeletePerson unlinks every face referencing the person and removes the
// person record. The faces themselves survive as unknown faces.
func (s *PersonService) DeletePerson(personID, userID uint) error {
	if _, err := s.personRepo.GetByIDForUser(personID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("person %d: %w", personID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to load person %d: %w", personID, err)
	}
	if err := s.faceRepo.UnlinkPerson(personID); err != nil {
		return fmt.Errorf("failed to unlink faces of person %d: %w", personID, err)
	}
	if err := s.personRepo.Delete(personID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to delete person %d: %w", personID, err)
	}
	return nil
}

// CleanupIfOrphan deletes the person when no faces reference them anymore.
// Returns whether the person was removed.
func (s *PersonService) CleanupIfOrphan(personID uint) (bool, error) {
	count, err := s.faceRepo.CountByPersonID(personID)
	if err != nil {
		return false, fmt.Errorf("failed to count faces of person %d: %w", personID, err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.personRepo.Delete(personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to delete orphaned person %d: %w", personID, err)
	}
	log.Printf("person: removed orphaned person %d", personID)
	return true, nil
}

// CleanupOrphans runs the orphan check once per unique person ID. Batch photo
// deletion collects the affected IDs and calls this a single time.
func (s *PersonService) CleanupOrphans(personIDs []uint) {
	seen := make(map[uint]bool, len(personIDs))
	for _, id := range personIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.CleanupIfOrphan(id); err != nil {
			log.Printf("person: orphan cleanup for person %d failed: %v", id, err)
		}
	}
}

// ListPeople returns every person in the user's scope that still has at least
// one face, with face counts.
func (s *PersonService) ListPeople(userID uint) ([]PersonSummary, error) {
	people, err := s.personRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people for user %d: %w", userID, err)
	}

	summaries := make([]PersonSummary, 0, len(people))
	for _, person := range people {
		count, err := s.faceRepo.CountByPersonID(person.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count faces of person %d: %w", person.ID, err)
		}
		if count == 0 {
			continue
		}
		summary := PersonSummary{
			ID:         person.ID,
			Name:       person.Name,
			FaceCount:  count,
			AvatarPath: person.AvatarPath,
		}
		if summary.AvatarPath == nil {
			photoIDs, err := s.faceRepo.ListPhotoIDsByPersonID(person.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list photos of person %d: %w", person.ID, err)
			}
			if len(photoIDs) > 0 {
				summary.AvatarPhotoID = &photoIDs[0]
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// PersonPhotos lists the photos containing at least one face of the person.
func (s *PersonService) PersonPhotos(personID, userID uint) ([]models.Photo, error) {
	if _, err := s.personRepo.GetByIDForUser(personID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("person %d: %w", personID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load person %d: %w", personID, err)
	}
	photos, err := s.photoRepo.List(userID, repository.PhotoListOptions{PersonID: &personID})
	if err != nil {
		return nil, fmt.Errorf("failed to list photos of person %d: %w", personID, err)
	}
	return photos, nil
}

// FindByName resolves a person by display name inside the user's scope.
func (s *PersonService) FindByName(userID uint, name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	people, err := s.personRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people for user %d: %w", userID, err)
	}
	for i := range people {
		if strings.EqualFold(people[i].Name, name) {
			return &people[i], nil
		}
	}
	return nil, fmt.Errorf("person '%s': %w", name, apperr.ErrNotFound)
}
