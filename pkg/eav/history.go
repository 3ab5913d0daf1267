package eav

import (
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// HistoryEntry pairs a version with the version written just before it.
type HistoryEntry struct {
	Value    *model.AttributeValue
	Previous *model.AttributeValue
}

// GetHistory returns version pairs newest-first. Pagination is offset-based
// so a restarted walk never depends on server-side cursor state; a concurrent
// writer can shift pages, so a version may be skipped or seen twice across
// page boundaries.
func (s *Store) GetHistory(attr *model.Attribute, limit, offset int) ([]HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	// One extra row supplies the Previous of the last entry on the page.
	var rows []model.AttributeValue
	err := s.db.Where("parent_attr_id = ? AND parent_value_id IS NULL", attr.ID).
		Order("id desc").Limit(limit + 1).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	count := len(rows)
	if count > limit {
		count = limit
	}

	entries := make([]HistoryEntry, 0, count)
	for i := 0; i < count; i++ {
		entry := HistoryEntry{Value: &rows[i]}
		if i+1 < len(rows) {
			entry.Previous = &rows[i+1]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
