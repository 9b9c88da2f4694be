package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/pkg/forest"
)

// buildItemForest rebuilds the stored evaluation hierarchy of one course,
// ordering siblings by sibling_index.
func buildItemForest(items []models.EvaluationItemRecord) (*forest.Forest[models.EvaluationItemRecord], error) {
	var roots []models.EvaluationItemRecord
	children := make(map[int64][]models.EvaluationItemRecord)
	known := make(map[int64]struct{}, len(items))
	for _, item := range items {
		known[item.ID] = struct{}{}
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		children[*item.ParentID] = append(children[*item.ParentID], item)
	}
	for parent := range children {
		if _, ok := known[parent]; !ok {
			return nil, fmt.Errorf("evaluation item parent %d not found", parent)
		}
	}

	bySibling := func(list []models.EvaluationItemRecord) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].SiblingIndex < list[j].SiblingIndex })
	}
	bySibling(roots)

	f := forest.New[models.EvaluationItemRecord]()
	var attach func(parent forest.Handle, id int64) error
	attach = func(parent forest.Handle, id int64) error {
		list := children[id]
		bySibling(list)
		for _, child := range list {
			h, err := f.AppendChild(parent, child)
			if err != nil {
				return err
			}
			if err := attach(h, child.ID); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		h := f.CreateRoot(root)
		if err := attach(h, root.ID); err != nil {
			return nil, err
		}
	}
	if f.Len() != len(items) {
		return nil, fmt.Errorf("evaluation hierarchy has a cycle: %d of %d items reachable", f.Len(), len(items))
	}
	return f, nil
}

// evaluationsFromForest converts a stored hierarchy to the nested view. The
// returned ids are indexed by leaf index. Nodes below component depth are
// ignored.
func evaluationsFromForest(f *forest.Forest[models.EvaluationItemRecord]) ([]models.Evaluation, []int64, error) {
	var (
		evaluations []models.Evaluation
		leafIDs     []int64
	)
	for ei, root := range f.Roots() {
		ev, err := f.Value(root)
		if err != nil {
			return nil, nil, err
		}
		evaluation := models.Evaluation{Index: ei, Name: ev.Name}
		sections, err := f.Children(root)
		if err != nil {
			return nil, nil, err
		}
		for si, sh := range sections {
			sv, err := f.Value(sh)
			if err != nil {
				return nil, nil, err
			}
			section := models.Section{Index: si, Name: sv.Name}
			leaves, err := f.Children(sh)
			if err != nil {
				return nil, nil, err
			}
			for _, lh := range leaves {
				lv, err := f.Value(lh)
				if err != nil {
					return nil, nil, err
				}
				section.Components = append(section.Components, models.Component{
					Index:   len(leafIDs),
					Column:  -1,
					Name:    lv.Name,
					ScaleID: lv.ScaleID,
					Formula: lv.Formula,
				})
				leafIDs = append(leafIDs, lv.ID)
			}
			evaluation.Sections = append(evaluation.Sections, section)
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations, leafIDs, nil
}
