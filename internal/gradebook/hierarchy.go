// Package gradebook decodes teacher gradebook sheets into courses, evaluation
// hierarchies and per-student grade vectors.
package gradebook

import (
	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/pkg/forest"
)

// Hierarchy is the evaluation → section → component tree of one course.
type Hierarchy struct {
	items   *forest.Forest[models.EvaluationItem]
	leaves  []forest.Handle
	columns []int
}

// NewHierarchy returns an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{items: forest.New[models.EvaluationItem]()}
}

// AddEvaluation appends a top-level evaluation.
func (h *Hierarchy) AddEvaluation(name string) forest.Handle {
	index := uint32(len(h.items.Roots()))
	return h.items.CreateRoot(models.EvaluationItem{LocalIndex: index, Name: name, Column: -1})
}

// AddSection appends a section under an evaluation.
func (h *Hierarchy) AddSection(evaluation forest.Handle, name string) (forest.Handle, error) {
	index, err := h.nextIndex(evaluation)
	if err != nil {
		return forest.Handle{}, err
	}
	return h.items.AppendChild(evaluation, models.EvaluationItem{LocalIndex: index, Name: name, Column: -1})
}

// AddComponent appends a leaf under a section and assigns it the next leaf index.
func (h *Hierarchy) AddComponent(section forest.Handle, item models.EvaluationItem) (forest.Handle, error) {
	index, err := h.nextIndex(section)
	if err != nil {
		return forest.Handle{}, err
	}
	item.LocalIndex = index
	if err := item.Validate(true); err != nil {
		return forest.Handle{}, err
	}
	leaf, err := h.items.AppendChild(section, item)
	if err != nil {
		return forest.Handle{}, err
	}
	h.leaves = append(h.leaves, leaf)
	h.columns = append(h.columns, item.Column)
	return leaf, nil
}

// LeafCount is the number of registered leaf components.
func (h *Hierarchy) LeafCount() int { return len(h.leaves) }

// Columns maps leaf index to source column.
func (h *Hierarchy) Columns() []int {
	out := make([]int, len(h.columns))
	copy(out, h.columns)
	return out
}

// Evaluations materializes the ordered nested view of the tree.
func (h *Hierarchy) Evaluations() []models.Evaluation {
	leafIndex := make(map[forest.Handle]int, len(h.leaves))
	for i, l := range h.leaves {
		leafIndex[l] = i
	}

	var out []models.Evaluation
	for _, root := range h.items.Roots() {
		ev, _ := h.items.Value(root)
		evaluation := models.Evaluation{Index: int(ev.LocalIndex), Name: ev.Name}
		sections, _ := h.items.Children(root)
		for _, sh := range sections {
			sv, _ := h.items.Value(sh)
			section := models.Section{Index: int(sv.LocalIndex), Name: sv.Name}
			leaves, _ := h.items.Children(sh)
			for _, lh := range leaves {
				lv, _ := h.items.Value(lh)
				section.Components = append(section.Components, models.Component{
					Index:   leafIndex[lh],
					Column:  lv.Column,
					Name:    lv.Name,
					ScaleID: lv.ScaleID,
					Formula: lv.Formula,
				})
			}
			evaluation.Sections = append(evaluation.Sections, section)
		}
		out = append(out, evaluation)
	}
	return out
}

func (h *Hierarchy) nextIndex(parent forest.Handle) (uint32, error) {
	children, err := h.items.Children(parent)
	if err != nil {
		return 0, err
	}
	return uint32(len(children)), nil
}
