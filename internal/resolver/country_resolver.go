package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// AutoDetectMode is the country-code mode sentinel that derives codes from
// folder names instead of applying one configured code.
const AutoDetectMode = "auto"

// DefaultCountryCode is assigned to root folders whose name is not a
// recognized country code, and inherited downward from there.
const DefaultCountryCode = "SG"

// DefaultKnownCodes is the production list of recognized 2-letter codes,
// used only in auto-detect mode.
var DefaultKnownCodes = []string{
	"SG", "HK", "MY", "CN", "TW", "TH", "ID", "IN",
	"JP", "KR", "PH", "VN", "AU", "NZ", "GB", "US",
}

// CountryResolver assigns a country code to every valid folder and tracks
// the per-report-species code across folder links. One resolver owns the
// whole working set of a single run; concurrent runs use separate instances.
type CountryResolver struct {
	Mode         string
	KnownCodes   map[string]bool
	FolderCodes  map[int]string
	SpeciesCodes map[int]string
	Conflicts    []models.ConflictEntry
	Logger       *logrus.Logger
}

// NewCountryResolver creates a resolver for the given mode. Mode is either
// the auto-detect sentinel or a literal 2-letter code, case-insensitive.
func NewCountryResolver(mode string, knownCodes []string, logger *logrus.Logger) (*CountryResolver, error) {
	normalized := strings.ToUpper(strings.TrimSpace(mode))
	if strings.EqualFold(mode, AutoDetectMode) {
		normalized = AutoDetectMode
	} else if len(normalized) != 2 {
		return nil, fmt.Errorf("country code mode must be %q or a 2-letter code, got %q", AutoDetectMode, mode)
	}

	if len(knownCodes) == 0 {
		knownCodes = DefaultKnownCodes
	}
	known := make(map[string]bool, len(knownCodes))
	for _, code := range knownCodes {
		known[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	return &CountryResolver{
		Mode:         normalized,
		KnownCodes:   known,
		FolderCodes:  make(map[int]string),
		SpeciesCodes: make(map[int]string),
		Logger:       logger,
	}, nil
}

// AssignFolderCodes resolves the country code of every valid folder. In
// fixed mode every folder gets the configured code. In auto-detect mode
// folders are processed top-down, root-first, so a folder's inherited code
// is always resolved before its children are visited.
func (cr *CountryResolver) AssignFolderCodes(folders map[int]models.Folder, valid map[int]bool) {
	if cr.Mode != AutoDetectMode {
		for id := range valid {
			cr.FolderCodes[id] = cr.Mode
		}
		return
	}

	children := make(map[int][]int)
	var roots []int
	for id := range valid {
		folder := folders[id]
		if folder.ParentID == models.RootParentID {
			roots = append(roots, id)
		} else {
			children[folder.ParentID] = append(children[folder.ParentID], id)
		}
	}
	sort.Ints(roots)
	for parent := range children {
		sort.Ints(children[parent])
	}

	queue := make([]int, 0, len(valid))
	for _, root := range roots {
		cr.FolderCodes[root] = cr.detectCode(folders[root].Name, DefaultCountryCode)
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		inherited := cr.FolderCodes[parent]
		for _, child := range children[parent] {
			cr.FolderCodes[child] = cr.detectCode(folders[child].Name, inherited)
			queue = append(queue, child)
		}
	}
}

// detectCode returns the folder's own country code when its trimmed name is
// a recognized 2-letter code, otherwise the inherited code. The length check
// runs strictly after trimming: a name like " SG" must still match.
func (cr *CountryResolver) detectCode(name, inherited string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) != 2 {
		return inherited
	}
	upper := strings.ToUpper(trimmed)
	if cr.KnownCodes[upper] {
		return upper
	}
	return inherited
}

// TrackSpecies derives the per-species country code from the folder links.
// Links are processed in ascending (folder id, species id) order; the
// precedence rule is order-dependent, so that order is part of the contract:
// a non-default code always replaces the default, a default candidate never
// disputes an explicit code, and the first non-default code wins over all
// later non-default ones, with each later disagreement logged as a conflict
// instead of overwriting.
func (cr *CountryResolver) TrackSpecies(links []models.FolderSpeciesLink, valid map[int]bool) {
	admissible := make([]models.FolderSpeciesLink, 0, len(links))
	for _, link := range links {
		if !valid[link.FolderID] || link.SpeciesID == models.NoReportSpeciesID {
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

	for _, link := range admissible {
		candidate := cr.FolderCodes[link.FolderID]
		existing, ok := cr.SpeciesCodes[link.SpeciesID]
		switch {
		case !ok:
			cr.SpeciesCodes[link.SpeciesID] = candidate
		case existing == candidate:
			// no-op
		case existing == DefaultCountryCode:
			cr.SpeciesCodes[link.SpeciesID] = candidate
		case candidate == DefaultCountryCode:
			// The default never displaces or disputes an explicit code.
		default:
			cr.Logger.Warningf("Country code conflict for report species %d: keeping %s, rejecting %s (folder %d)",
				link.SpeciesID, existing, candidate, link.FolderID)
			cr.Conflicts = append(cr.Conflicts, models.ConflictEntry{
				SpeciesID: link.SpeciesID,
				Existing:  existing,
				Rejected:  candidate,
			})
		}
	}
}
