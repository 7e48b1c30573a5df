package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// DuplicateHashes returns every content hash that appears on more than one
// photo inside the user's scope. NULL hashes (legacy rows uploaded before
// hashing existed) never group.
func DuplicateHashes(db *sql.DB, userID uint) ([]string, error) {
	queryBuilder := sq.Select("file_hash").
		From("photos").
		Where(sq.Eq{"user_id": userID}).
		Where("file_hash IS NOT NULL").
		GroupBy("file_hash").
		Having("COUNT(*) > 1")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build duplicate hash query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate hashes for user %d: %w", userID, err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate hash: %w", err)
		}
		hashes = append(hashes, hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate hashes: %w", err)
	}
	return hashes, nil
}
