package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// SampleGenerator produces a synthetic folder hierarchy for offline dry
// runs. The generated data deliberately includes the defects the validator
// has to absorb on real archives: an excluded item type subtree, an orphaned
// folder and a parent-chain cycle. The same seed always yields the same
// rows.
type SampleGenerator struct {
	Faker       faker.Faker
	FolderCount int
	Logger      *logrus.Logger

	nextID      int
	nextSpecies int
}

// NewSampleGenerator creates a seeded generator targeting roughly
// folderCount folders.
func NewSampleGenerator(seed int64, folderCount int, logger *logrus.Logger) *SampleGenerator {
	if folderCount < 10 {
		folderCount = 10
	}
	return &SampleGenerator{
		Faker:       faker.NewWithSeed(rand.NewSource(seed)),
		FolderCount: folderCount,
		Logger:      logger,
		nextID:      1,
		nextSpecies: 100,
	}
}

// Generate produces the three synthetic row sets.
func (sg *SampleGenerator) Generate() ([]models.Folder, []models.FolderSpeciesLink, []models.ReportNameRecord) {
	var folders []models.Folder
	var links []models.FolderSpeciesLink
	var nameRecords []models.ReportNameRecord

	countryNames := []string{" SG", "HK ", " MY ", "th"}
	departmentsPerCountry := sg.FolderCount / (len(countryNames) + 1)
	if departmentsPerCountry < 1 {
		departmentsPerCountry = 1
	}

	root := sg.newFolder("Customer Reports", models.RootParentID, 1)
	folders = append(folders, root)

	for _, countryName := range countryNames {
		country := sg.newFolder(countryName, root.ID, 1)
		folders = append(folders, country)

		for i := 0; i < departmentsPerCountry; i++ {
			department := sg.newFolder(sg.Faker.Company().Name(), country.ID, 1)
			folders = append(folders, department)

			reportCount := sg.Faker.IntBetween(1, 3)
			for j := 0; j < reportCount; j++ {
				speciesID := sg.newSpeciesID()
				links = append(links, models.FolderSpeciesLink{
					FolderID:  department.ID,
					DomainID:  1,
					SpeciesID: speciesID,
				})
				nameRecords = append(nameRecords, sg.nameRecordsFor(speciesID)...)
			}
		}
	}

	// A report species shared across two country subtrees, so auto-detect
	// runs exercise the conflict precedence rule.
	if len(folders) > 4 {
		shared := sg.newSpeciesID()
		first := folders[2]
		second := folders[len(folders)-1]
		links = append(links,
			models.FolderSpeciesLink{FolderID: first.ID, DomainID: 1, SpeciesID: shared},
			models.FolderSpeciesLink{FolderID: second.ID, DomainID: 1, SpeciesID: shared},
		)
		nameRecords = append(nameRecords, sg.nameRecordsFor(shared)...)
	}

	// Sentinel species id 0 must be filtered out downstream.
	links = append(links, models.FolderSpeciesLink{
		FolderID:  root.ID,
		DomainID:  1,
		SpeciesID: models.NoReportSpeciesID,
	})

	folders = append(folders, sg.defectFolders(root.ID)...)

	sg.Logger.Infof("Generated sample data: %d folders, %d links, %d name records",
		len(folders), len(links), len(nameRecords))
	return folders, links, nameRecords
}

// newFolder allocates the next folder id.
func (sg *SampleGenerator) newFolder(name string, parentID, itemType int) models.Folder {
	folder := models.Folder{
		ID:       sg.nextID,
		Name:     name,
		ParentID: parentID,
		ItemType: itemType,
	}
	sg.nextID++
	return folder
}

// newSpeciesID allocates the next report species id.
func (sg *SampleGenerator) newSpeciesID() int {
	id := sg.nextSpecies
	sg.nextSpecies++
	return id
}

// nameRecordsFor builds the name rows for one species. Every species gets a
// display name; roughly half also get a distinct canonical name, leaving the
// rest to exercise the fallback rule.
func (sg *SampleGenerator) nameRecordsFor(speciesID int) []models.ReportNameRecord {
	display := fmt.Sprintf("%s Report", sg.Faker.Company().Name())
	records := []models.ReportNameRecord{
		{DomainID: 1, SpeciesID: speciesID, NameItemID: 0, Name: display},
	}
	if speciesID%2 == 0 {
		canonical := strings.ToUpper(strings.ReplaceAll(display, " ", "_"))
		records = append(records, models.ReportNameRecord{
			DomainID: 1, SpeciesID: speciesID, NameItemID: 1, Name: canonical,
		})
	}
	return records
}

// defectFolders builds the corrupted rows: an excluded item type with a
// child, an orphan, and a two-folder parent cycle.
func (sg *SampleGenerator) defectFolders(rootID int) []models.Folder {
	typeExcluded := sg.newFolder("Archived "+sg.Faker.Company().Name(), rootID, models.ExcludedItemType)
	typeExcludedChild := sg.newFolder(sg.Faker.Company().Name(), typeExcluded.ID, 1)

	orphan := sg.newFolder(sg.Faker.Company().Name(), sg.nextID+1000000, 1)

	cycleA := sg.newFolder(sg.Faker.Company().Name(), sg.nextID+1, 1)
	cycleB := sg.newFolder(sg.Faker.Company().Name(), cycleA.ID, 1)

	return []models.Folder{typeExcluded, typeExcludedChild, orphan, cycleA, cycleB}
}
