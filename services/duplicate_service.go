package services

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/drishyamitra/photobackend/database"
	"github.com/drishyamitra/photobackend/models"
	"github.com/drishyamitra/photobackend/repository"
)

// DuplicateService detects exact duplicates by content hash. Two photos are
// duplicates only when their MD5 digests are byte-for-byte equal; visually
// similar files never group.
type DuplicateService struct {
	photoRepo repository.PhotoRepositoryInterface
	sqlDB     *sql.DB
}

// NewDuplicateService creates a new duplicate service. sqlDB is the raw
// connection used for the aggregate hash query.
func NewDuplicateService(photoRepo repository.PhotoRepositoryInterface, sqlDB *sql.DB) *DuplicateService {
	return &DuplicateService{photoRepo: photoRepo, sqlDB: sqlDB}
}

// DuplicateGroup is a set of photos sharing one content hash, ordered by
// upload time ascending so the first element is the original.
type DuplicateGroup struct {
	Hash   string         `json:"hash"`
	Photos []models.Photo `json:"photos"`
}

// PurgePlan stages a duplicate cleanup: the oldest photo of every group is
// kept, the rest are listed for deletion. Nothing is deleted until the caller
// confirms.
type PurgePlan struct {
	Groups    int    `json:"groups"`
	DeleteIDs []uint `json:"delete_ids"`
}

// ContentHash streams the reader through MD5 and returns the hex digest.
func ContentHash(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the MD5 hex digest of a byte slice.
func HashBytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// GroupDuplicates returns every duplicate group in the user's scope. Groups
// always contain at least two photos.
func (s *DuplicateService) GroupDuplicates(userID uint) ([]DuplicateGroup, error) {
	hashes, err := database.DuplicateHashes(s.sqlDB, userID)
	if err != nil {
		return nil, err
	}

	groups := make([]DuplicateGroup, 0, len(hashes))
	for _, hash := range hashes {
		photos, err := s.photoRepo.ListByHash(userID, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to list photos for hash %s: %w", hash, err)
		}
		if len(photos) < 2 {
			// raced with a delete between the aggregate query and the fetch
			continue
		}
		groups = append(groups, DuplicateGroup{Hash: hash, Photos: photos})
	}
	return groups, nil
}

// CheckAgainstLibrary returns the user's photos already carrying the given
// content hash. Used at upload time to warn before a duplicate lands.
func (s *DuplicateService) CheckAgainstLibrary(userID uint, hash string) ([]models.Photo, error) {
	if hash == "" {
		return nil, nil
	}
	photos, err := s.photoRepo.ListByHash(userID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check hash %s against library: %w", hash, err)
	}
	return photos, nil
}

// StagePurge builds the keep-oldest cleanup plan over all duplicate groups.
func (s *DuplicateService) StagePurge(userID uint) (*PurgePlan, error) {
	groups, err := s.GroupDuplicates(userID)
	if err != nil {
		return nil, err
	}

	plan := &PurgePlan{Groups: len(groups)}
	for _, group := range groups {
		// photos arrive upload-time ascending; index 0 is the keeper
		for _, photo := range group.Photos[1:] {
			plan.DeleteIDs = append(plan.DeleteIDs, photo.ID)
		}
	}
	return plan, nil
}
