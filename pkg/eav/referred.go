package eav

import (
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ReferredEntries returns the active entries whose latest values refer to the
// given entry, name-ascending, plus the total number of referring values.
// maxCount <= 0 means no cap.
func (s *Store) ReferredEntries(entryID uint, maxCount int) ([]model.Entry, int, error) {
	var total int64
	err := s.db.Raw(`
		SELECT COUNT(*)
		FROM attribute_values av
		JOIN attributes a ON a.id = av.parent_attr_id AND a.is_active
		JOIN entries e ON e.id = a.parent_entry_id AND e.is_active
		WHERE av.referral_id = ? AND av.is_latest AND NOT av.is_array_parent AND e.id <> ?
	`, entryID, entryID).Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT DISTINCT e.*
		FROM attribute_values av
		JOIN attributes a ON a.id = av.parent_attr_id AND a.is_active
		JOIN entries e ON e.id = a.parent_entry_id AND e.is_active
		WHERE av.referral_id = ? AND av.is_latest AND NOT av.is_array_parent AND e.id <> ?
		ORDER BY e.name, e.id
	`
	args := []interface{}{entryID, entryID}
	if maxCount > 0 {
		query += ` LIMIT ?`
		args = append(args, maxCount)
	}

	var entries []model.Entry
	if err := s.db.Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, int(total), nil
}

// IsReferred reports whether any other entry's latest value refers to the
// entry.
func (s *Store) IsReferred(entryID uint) (bool, error) {
	_, total, err := s.ReferredEntries(entryID, 1)
	return total > 0, err
}
