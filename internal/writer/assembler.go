package writer

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/internal/names"
	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// Assembler joins the validated hierarchy, the resolved country codes and
// the report names into the three output tables. Every table gets a fixed
// sort order so the output never depends on the order rows arrived from the
// source.
type Assembler struct {
	Folders      map[int]models.Folder
	Valid        map[int]bool
	FolderCodes  map[int]string
	SpeciesCodes map[int]string
	Names        *names.Resolver
	Logger       *logrus.Logger
}

// BuildFolderRows builds the folder hierarchy table, one row per valid
// folder, ascending by id. Names are carried verbatim, whitespace included.
func (a *Assembler) BuildFolderRows() []models.FolderRow {
	ids := make([]int, 0, len(a.Valid))
	for id := range a.Valid {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := make([]models.FolderRow, 0, len(ids))
	for _, id := range ids {
		folder := a.Folders[id]
		rows = append(rows, models.FolderRow{
			ID:          folder.ID,
			Name:        folder.Name,
			ParentID:    folder.ParentID,
			ItemType:    folder.ItemType,
			CountryCode: a.FolderCodes[id],
		})
	}
	a.Logger.Debugf("Assembled %d folder rows", len(rows))
	return rows
}

// admissibleLinks filters the raw links down to valid folders and real
// species ids, sorted ascending by (folder id, species id).
func (a *Assembler) admissibleLinks(links []models.FolderSpeciesLink) []models.FolderSpeciesLink {
	admissible := make([]models.FolderSpeciesLink, 0, len(links))
	for _, link := range links {
		if !a.Valid[link.FolderID] || link.SpeciesID == models.NoReportSpeciesID {
			continue
		}
		admissible = append(admissible, link)
	}
	sort.Slice(admissible, func(i, j int) bool {
		if admissible[i].FolderID != admissible[j].FolderID {
			return admissible[i].FolderID < admissible[j].FolderID
		}
		return admissible[i].SpeciesID < admissible[j].SpeciesID
	})
	return admissible
}

// BuildLinkRows builds the folder-report table. The country code on each row
// is the owning folder's resolved code, not the final per-species value.
func (a *Assembler) BuildLinkRows(links []models.FolderSpeciesLink) []models.FolderReportRow {
	admissible := a.admissibleLinks(links)
	rows := make([]models.FolderReportRow, 0, len(admissible))
	for _, link := range admissible {
		canonical, display := a.Names.Resolve(link.DomainID, link.SpeciesID)
		rows = append(rows, models.FolderReportRow{
			FolderID:      link.FolderID,
			FolderName:    a.Folders[link.FolderID].Name,
			SpeciesID:     link.SpeciesID,
			CanonicalName: canonical,
			DisplayName:   display,
			CountryCode:   a.FolderCodes[link.FolderID],
		})
	}
	a.Logger.Debugf("Assembled %d folder-report rows", len(rows))
	return rows
}

// BuildSpeciesRows builds the report species table, one row per distinct
// species referenced by an admissible link, ascending by species id. Names
// are resolved with the domain of the first link that referenced the
// species, in the same order the country tracker saw them.
func (a *Assembler) BuildSpeciesRows(links []models.FolderSpeciesLink) []models.ReportSpeciesRow {
	admissible := a.admissibleLinks(links)

	domainOf := make(map[int]int)
	var speciesIDs []int
	for _, link := range admissible {
		if _, seen := domainOf[link.SpeciesID]; !seen {
			domainOf[link.SpeciesID] = link.DomainID
			speciesIDs = append(speciesIDs, link.SpeciesID)
		}
	}
	sort.Ints(speciesIDs)

	rows := make([]models.ReportSpeciesRow, 0, len(speciesIDs))
	for _, speciesID := range speciesIDs {
		canonical, display := a.Names.Resolve(domainOf[speciesID], speciesID)
		rows = append(rows, models.ReportSpeciesRow{
			SpeciesID:     speciesID,
			CanonicalName: canonical,
			DisplayName:   display,
			CountryCode:   a.SpeciesCodes[speciesID],
			InUse:         1,
		})
	}
	a.Logger.Debugf("Assembled %d report species rows", len(rows))
	return rows
}
