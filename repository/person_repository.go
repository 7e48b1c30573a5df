package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drishyamitra/photobackend/models"
)

// PersonRepository handles database operations for Person entities
type PersonRepository struct {
	DB *gorm.DB
}

// Ensure PersonRepository implements PersonRepositoryInterface
var _ PersonRepositoryInterface = (*PersonRepository)(nil)

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// FindOrCreate returns the person with the exact name in the user's scope,
// creating it if absent. The insert rides on the unique (user_id, name) index
// with ON CONFLICT DO NOTHING, so two concurrent callers for the same new
// name cannot produce duplicate rows.
func (r *PersonRepository) FindOrCreate(userID uint, name string) (*models.Person, error) {
	person := models.Person{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&person).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create person '%s' for user %d: %w", name, userID, err)
	}

	if person.ID == 0 {
		// conflict: the row already existed, fetch it
		if err := r.DB.Where("user_id = ? AND name = ?", userID, name).First(&person).Error; err != nil {
			return nil, fmt.Errorf("failed to load existing person '%s' for user %d: %w", name, userID, err)
		}
	}
	return &person, nil
}

// GetByID retrieves a person by their ID
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// GetByIDForUser retrieves a person by ID within the user's scope
func (r *PersonRepository) GetByIDForUser(id, userID uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d for user %d: %w", id, userID, err)
	}
	return &person, nil
}

// ListByUser retrieves all persons in the user's scope ordered by name
func (r *PersonRepository) ListByUser(userID uint) ([]models.Person, error) {
	var persons []models.Person
	err := r.DB.Where("user_id = ?", userID).Order("name ASC").Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list persons for user %d: %w", userID, err)
	}
	return persons, nil
}

// Rename updates a person's display name within the user's scope
func (r *PersonRepository) Rename(personID, userID uint, name string) error {
	result := r.DB.Model(&models.Person{}).
		Where("id = ? AND user_id = ?", personID, userID).
		Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("failed to rename person ID %d: %w", personID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a person by their ID
func (r *PersonRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
