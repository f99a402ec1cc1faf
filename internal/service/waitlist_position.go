package service

import (
	"sort"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// WaitlistPosition returns the 1-based rank of entry among the entries of its
// section, ordered by (createdAt, sequence). Entries of other sections are ignored.
func WaitlistPosition(entry models.WaitlistEntry, all []models.WaitlistEntry) int {
	position := 0
	for _, e := range all {
		if e.SectionID != entry.SectionID {
			continue
		}
		if !entry.Before(e) {
			position++
		}
	}
	return position
}

// OrderWaitlist sorts a single section's entries into queue order and annotates
// each with its position.
func OrderWaitlist(entries []models.WaitlistEntry) []models.RankedWaitlistEntry {
	sorted := make([]models.WaitlistEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	ranked := make([]models.RankedWaitlistEntry, 0, len(sorted))
	for i, entry := range sorted {
		ranked = append(ranked, models.RankedWaitlistEntry{WaitlistEntry: entry, Position: i + 1})
	}
	return ranked
}
