package hierarchy

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourbasic/graph"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// folderState is the three-valued classification used during parent-chain
// walks. In-progress markers never survive a walk: every chain member is
// rewritten to a terminal state before the walk returns.
type folderState uint8

const (
	stateUnvisited folderState = iota
	stateInProgress
	stateValid
	stateExcluded
)

// exclusionReason records why a folder was excluded. Descendants of an
// excluded folder inherit the ancestor's reason.
type exclusionReason uint8

const (
	reasonNone exclusionReason = iota
	reasonItemType
	reasonOrphan
	reasonCycle
)

// Validator classifies every folder of a run as valid or excluded. The
// source table is a flat self-referencing list with no acyclicity guarantee,
// so cycles, orphans and excluded item types are normal data-quality
// conditions here, not errors.
type Validator struct {
	Folders map[int]models.Folder
	Stats   models.HierarchyStats
	Logger  *logrus.Logger

	ids     []int
	states  map[int]folderState
	reasons map[int]exclusionReason
}

// NewValidator creates a validator over an immutable folder snapshot.
// Duplicate ids keep the first row seen, matching the source's primary key
// expectation.
func NewValidator(folders []models.Folder, logger *logrus.Logger) *Validator {
	byID := make(map[int]models.Folder, len(folders))
	ids := make([]int, 0, len(folders))
	for _, f := range folders {
		if _, exists := byID[f.ID]; exists {
			logger.Warningf("Duplicate folder id %d, keeping first occurrence", f.ID)
			continue
		}
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}
	sort.Ints(ids)

	return &Validator{
		Folders: byID,
		Logger:  logger,
		ids:     ids,
		states:  make(map[int]folderState, len(byID)),
		reasons: make(map[int]exclusionReason, len(byID)),
	}
}

// Validate classifies every folder and returns the set of valid folder ids.
// Classification is memoized across walks, so the total cost stays linear in
// the number of folders.
func (v *Validator) Validate() map[int]bool {
	for _, id := range v.ids {
		v.resolve(id)
	}

	v.Stats = models.HierarchyStats{Total: len(v.ids)}
	valid := make(map[int]bool)
	for _, id := range v.ids {
		if v.states[id] == stateValid {
			valid[id] = true
			v.Stats.Valid++
			continue
		}
		v.Stats.Excluded++
		switch v.reasons[id] {
		case reasonItemType:
			v.Stats.TypeExcluded++
		case reasonOrphan:
			v.Stats.Orphans++
		case reasonCycle:
			v.Stats.Cycles++
		}
	}

	if v.Stats.Excluded > 0 {
		v.Logger.Infof("Excluded %d of %d folders (%d item type, %d orphaned, %d cyclic)",
			v.Stats.Excluded, v.Stats.Total, v.Stats.TypeExcluded, v.Stats.Orphans, v.Stats.Cycles)
	}

	return valid
}

// resolve walks the parent chain of one folder iteratively. The walk stops
// valid at a root, and stops excluded on an excluded item type, a missing
// parent, a revisit of an in-progress id, or an already-excluded ancestor.
// Every id pushed on the chain adopts the terminal result.
func (v *Validator) resolve(id int) folderState {
	var chain []int
	var result folderState
	reason := reasonNone
	cur := id

walk:
	for {
		folder, ok := v.Folders[cur]
		if !ok {
			v.Logger.Debugf("Folder %d excluded: parent chain reaches missing folder %d", id, cur)
			result, reason = stateExcluded, reasonOrphan
			break walk
		}

		switch v.states[cur] {
		case stateValid:
			result = stateValid
			break walk
		case stateExcluded:
			result, reason = stateExcluded, v.reasons[cur]
			break walk
		case stateInProgress:
			v.Logger.Debugf("Folder %d excluded: parent chain cycles at folder %d", id, cur)
			result, reason = stateExcluded, reasonCycle
			break walk
		}

		if folder.ItemType == models.ExcludedItemType {
			v.states[cur] = stateExcluded
			v.reasons[cur] = reasonItemType
			result, reason = stateExcluded, reasonItemType
			break walk
		}
		if folder.ParentID == models.RootParentID {
			v.states[cur] = stateValid
			result = stateValid
			break walk
		}

		v.states[cur] = stateInProgress
		chain = append(chain, cur)
		cur = folder.ParentID
	}

	for _, member := range chain {
		v.states[member] = result
		if result == stateExcluded {
			v.reasons[member] = reason
		}
	}

	return result
}

// SortedValidIDs returns the valid folder ids in ascending order.
func (v *Validator) SortedValidIDs() []int {
	var ids []int
	for _, id := range v.ids {
		if v.states[id] == stateValid {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsValid reports whether a folder id was classified valid.
func (v *Validator) IsValid(id int) bool {
	return v.states[id] == stateValid
}

// CycleGroups returns the groups of folder ids involved in parent-chain
// cycles, for the analysis report. Each group is sorted ascending, and
// groups are ordered by their smallest member.
func (v *Validator) CycleGroups() [][]int {
	indexOf := make(map[int]int, len(v.ids))
	for i, id := range v.ids {
		indexOf[id] = i
	}

	g := graph.New(len(v.ids))
	for i, id := range v.ids {
		parent := v.Folders[id].ParentID
		if parent == models.RootParentID || parent == id {
			continue
		}
		if j, ok := indexOf[parent]; ok {
			g.Add(i, j)
		}
	}

	var groups [][]int
	for _, component := range graph.StrongComponents(g) {
		// A single folder is a cycle only if it is its own parent.
		if len(component) == 1 {
			id := v.ids[component[0]]
			if v.Folders[id].ParentID != id {
				continue
			}
		}
		group := make([]int, 0, len(component))
		for _, idx := range component {
			group = append(group, v.ids[idx])
		}
		sort.Ints(group)
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
