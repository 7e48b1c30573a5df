package models

import "time"

// Person represents a named person identified across a user's photos.
// It corresponds to the 'persons' table.
//
// Faces point at a Person rather than being owned by it; "this person's faces"
// is always a query. A person with zero referencing faces must not persist:
// the service layer deletes persons whose face count drops to zero right after
// any unlink or photo deletion.
type Person struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_persons_user_name" json:"user_id"`
	Name       string    `gorm:"not null;size:120;uniqueIndex:idx_persons_user_name" json:"name"`
	AvatarPath *string   `gorm:"size:512" json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Faces []Face `gorm:"foreignKey:PersonID;constraint:OnDelete:SET NULL" json:"faces,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "persons"
}
