package names

import (
	"fmt"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// Name item ids in the report name table.
const (
	displayNameItem   = 0
	canonicalNameItem = 1
)

type nameKey struct {
	domainID  int
	speciesID int
}

// Resolver looks up the canonical and display name of a report species. It
// never fails: a missing display name is synthesized from the species id and
// a missing canonical name falls back to the display name.
type Resolver struct {
	records map[nameKey]map[int]string
}

// NewResolver indexes the report name rows. When the source carries
// duplicate rows for the same key the first one wins.
func NewResolver(records []models.ReportNameRecord) *Resolver {
	indexed := make(map[nameKey]map[int]string)
	for _, record := range records {
		key := nameKey{domainID: record.DomainID, speciesID: record.SpeciesID}
		items, ok := indexed[key]
		if !ok {
			items = make(map[int]string)
			indexed[key] = items
		}
		if _, exists := items[record.NameItemID]; !exists {
			items[record.NameItemID] = record.Name
		}
	}
	return &Resolver{records: indexed}
}

// Resolve returns the canonical and display name for a (domain, species)
// pair.
func (r *Resolver) Resolve(domainID, speciesID int) (canonical, display string) {
	items := r.records[nameKey{domainID: domainID, speciesID: speciesID}]

	display, ok := items[displayNameItem]
	if !ok {
		display = fmt.Sprintf("UNKNOWN_%d", speciesID)
	}
	canonical, ok = items[canonicalNameItem]
	if !ok {
		canonical = display
	}
	return canonical, display
}
