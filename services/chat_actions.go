package services

import (
	"fmt"
	"strings"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/repository"
)

// ActionType identifies a chat-driven library operation. The set is closed;
// anything else is rejected before touching the library.
type ActionType string

const (
	ActionSearchPhotos     ActionType = "SEARCH_PHOTOS"
	ActionShowRecent       ActionType = "SHOW_RECENT"
	ActionShowFavorites    ActionType = "SHOW_FAVORITES"
	ActionDeletePhotos     ActionType = "DELETE_PHOTOS"
	ActionShowDuplicates   ActionType = "SHOW_DUPLICATES"
	ActionDeleteDuplicates ActionType = "DELETE_DUPLICATES"
	ActionShowStats        ActionType = "SHOW_STATS"
	ActionShowPersons      ActionType = "SHOW_PERSONS"
	ActionShowPersonPhotos ActionType = "SHOW_PERSON_PHOTOS"
	ActionCountPhotos      ActionType = "COUNT_PHOTOS"
	ActionShowUnknownFaces ActionType = "SHOW_UNKNOWN_FACES"
)

const recentLimit = 20

// ChatRequest is one action invocation. Destructive actions stage first and
// execute only when Confirmed is set on the follow-up request.
type ChatRequest struct {
	Action     ActionType `json:"action"`
	Query      string     `json:"query,omitempty"`
	PersonName string     `json:"person_name,omitempty"`
	PhotoIDs   []uint     `json:"photo_ids,omitempty"`
	Confirmed  bool       `json:"confirmed,omitempty"`
}

// ChatResponse is the uniform result envelope for every action.
type ChatResponse struct {
	Action               ActionType       `json:"action"`
	Message              string           `json:"message"`
	Photos               []models.Photo   `json:"photos,omitempty"`
	People               []PersonSummary  `json:"people,omitempty"`
	Groups               []DuplicateGroup `json:"groups,omitempty"`
	Stats                *LibraryStats    `json:"stats,omitempty"`
	Count                *int64           `json:"count,omitempty"`
	PendingDeleteIDs     []uint           `json:"pending_delete_ids,omitempty"`
	RequiresConfirmation bool             `json:"requires_confirmation,omitempty"`
}

// ChatService dispatches chat actions onto the library services.
type ChatService struct {
	photoService     *PhotoService
	personService    *PersonService
	duplicateService *DuplicateService
	faceRepo         repository.FaceRepositoryInterface
}

// NewChatService creates a new chat service
func NewChatService(
	photoService *PhotoService,
	personService *PersonService,
	duplicateService *DuplicateService,
	faceRepo repository.FaceRepositoryInterface,
) *ChatService {
	return &ChatService{
		photoService:     photoService,
		personService:    personService,
		duplicateService: duplicateService,
		faceRepo:         faceRepo,
	}
}

// Execute runs one action inside the user's scope.
func (s *ChatService) Execute(userID uint, req ChatRequest) (*ChatResponse, error) {
	switch req.Action {
	case ActionSearchPhotos:
		return s.searchPhotos(userID, req.Query)
	case ActionShowRecent:
		return s.showRecent(userID)
	case ActionShowFavorites:
		return s.showFavorites(userID)
	case ActionDeletePhotos:
		return s.deletePhotos(userID, req)
	case ActionShowDuplicates:
		return s.showDuplicates(userID)
	case ActionDeleteDuplicates:
		return s.deleteDuplicates(userID, req)
	case ActionShowStats:
		return s.showStats(userID)
	case ActionShowPersons:
		return s.showPersons(userID)
	case ActionShowPersonPhotos:
		return s.showPersonPhotos(userID, req.PersonName)
	case ActionCountPhotos:
		return s.countPhotos(userID, req.Query)
	case ActionShowUnknownFaces:
		return s.showUnknownFaces(userID)
	default:
		return nil, fmt.Errorf("unknown action '%s': %w", req.Action, apperr.ErrInvalidInput)
	}
}

func (s *ChatService) searchPhotos(userID uint, query string) (*ChatResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty: %w", apperr.ErrInvalidInput)
	}

	opts := repository.PhotoListOptions{Search: query}
	// searching for duplicates is a filter, not a text match
	switch strings.ToLower(query) {
	case "duplicate", "duplicates":
		opts = repository.PhotoListOptions{DuplicatesOnly: true}
	}

	photos, err := s.photoService.List(userID, opts)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionSearchPhotos,
		Message: fmt.Sprintf("Found %d photos matching '%s'", len(photos), query),
		Photos:  photos,
	}, nil
}

func (s *ChatService) showRecent(userID uint) (*ChatResponse, error) {
	photos, err := s.photoService.List(userID, repository.PhotoListOptions{Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowRecent,
		Message: fmt.Sprintf("Your %d most recent photos", len(photos)),
		Photos:  photos,
	}, nil
}

func (s *ChatService) showFavorites(userID uint) (*ChatResponse, error) {
	photos, err := s.photoService.List(userID, repository.PhotoListOptions{FavoritesOnly: true})
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowFavorites,
		Message: fmt.Sprintf("You have %d favorite photos", len(photos)),
		Photos:  photos,
	}, nil
}

func (s *ChatService) deletePhotos(userID uint, req ChatRequest) (*ChatResponse, error) {
	if len(req.PhotoIDs) == 0 {
		return nil, fmt.Errorf("no photos selected for deletion: %w", apperr.ErrInvalidInput)
	}

	if !req.Confirmed {
		return &ChatResponse{
			Action:               ActionDeletePhotos,
			Message:              fmt.Sprintf("This will permanently delete %d photos. Confirm to proceed.", len(req.PhotoIDs)),
			PendingDeleteIDs:     req.PhotoIDs,
			RequiresConfirmation: true,
		}, nil
	}

	if err := s.photoService.DeleteBatch(req.PhotoIDs, userID); err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionDeletePhotos,
		Message: fmt.Sprintf("Deleted %d photos", len(req.PhotoIDs)),
	}, nil
}

func (s *ChatService) showDuplicates(userID uint) (*ChatResponse, error) {
	groups, err := s.duplicateService.GroupDuplicates(userID)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowDuplicates,
		Message: fmt.Sprintf("Found %d duplicate groups", len(groups)),
		Groups:  groups,
	}, nil
}

func (s *ChatService) deleteDuplicates(userID uint, req ChatRequest) (*ChatResponse, error) {
	if !req.Confirmed {
		plan, err := s.duplicateService.StagePurge(userID)
		if err != nil {
			return nil, err
		}
		if len(plan.DeleteIDs) == 0 {
			return &ChatResponse{
				Action:  ActionDeleteDuplicates,
				Message: "No duplicates to clean up",
			}, nil
		}
		return &ChatResponse{
			Action:               ActionDeleteDuplicates,
			Message:              fmt.Sprintf("This will delete %d duplicates across %d groups, keeping the oldest copy of each. Confirm to proceed.", len(plan.DeleteIDs), plan.Groups),
			PendingDeleteIDs:     plan.DeleteIDs,
			RequiresConfirmation: true,
		}, nil
	}

	if len(req.PhotoIDs) == 0 {
		return nil, fmt.Errorf("confirmed duplicate cleanup carries no photo IDs: %w", apperr.ErrInvalidInput)
	}
	if err := s.photoService.DeleteBatch(req.PhotoIDs, userID); err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionDeleteDuplicates,
		Message: fmt.Sprintf("Deleted %d duplicate photos", len(req.PhotoIDs)),
	}, nil
}

func (s *ChatService) showStats(userID uint) (*ChatResponse, error) {
	stats, err := s.photoService.Stats(userID)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowStats,
		Message: fmt.Sprintf("%d photos, %d favorites, %d people", stats.TotalPhotos, stats.FavoriteCount, stats.PersonCount),
		Stats:   stats,
	}, nil
}

func (s *ChatService) showPersons(userID uint) (*ChatResponse, error) {
	people, err := s.personService.ListPeople(userID)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowPersons,
		Message: fmt.Sprintf("You have %d people in your library", len(people)),
		People:  people,
	}, nil
}

func (s *ChatService) showPersonPhotos(userID uint, personName string) (*ChatResponse, error) {
	if strings.TrimSpace(personName) == "" {
		return nil, fmt.Errorf("person name must not be empty: %w", apperr.ErrInvalidInput)
	}
	person, err := s.personService.FindByName(userID, personName)
	if err != nil {
		return nil, err
	}
	photos, err := s.personService.PersonPhotos(person.ID, userID)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionShowPersonPhotos,
		Message: fmt.Sprintf("Found %d photos of %s", len(photos), person.Name),
		Photos:  photos,
	}, nil
}

func (s *ChatService) countPhotos(userID uint, query string) (*ChatResponse, error) {
	opts := repository.PhotoListOptions{}
	if strings.TrimSpace(query) != "" {
		opts.Search = strings.TrimSpace(query)
	}
	count, err := s.photoService.Count(userID, opts)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Action:  ActionCountPhotos,
		Message: fmt.Sprintf("You have %d photos", count),
		Count:   &count,
	}, nil
}

func (s *ChatService) showUnknownFaces(userID uint) (*ChatResponse, error) {
	count, err := s.faceRepo.CountUnknownByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unknown faces for user %d: %w", userID, err)
	}
	return &ChatResponse{
		Action:  ActionShowUnknownFaces,
		Message: fmt.Sprintf("You have %d unidentified faces", count),
		Count:   &count,
	}, nil
}
