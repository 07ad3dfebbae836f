package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/likesync/internal/tasks"
)

var _ list.Item = changeItem{}

// changeItem is one pending playlist write shown in the delta view.
type changeItem struct {
	id     string
	add    bool
	detail string
}

func (i changeItem) FilterValue() string { return i.detail }

func (i changeItem) Title() string {
	if i.add {
		return styles.add.Render("+ " + i.detail)
	}
	return styles.remove.Render("- " + i.detail)
}

func (i changeItem) Description() string {
	if i.add {
		return fmt.Sprintf("add • %s", i.id)
	}
	return fmt.Sprintf("remove • %s", i.id)
}

// changeItems lists additions first, then removals, each in id order.
func changeItems(plan *tasks.SyncPlan) []list.Item {
	items := make([]list.Item, 0, len(plan.Delta.ToAdd)+len(plan.Delta.ToRemove))
	for _, id := range plan.Delta.ToAdd {
		items = append(items, changeItem{id: id, add: true, detail: plan.Describe(id)})
	}
	for _, id := range plan.Delta.ToRemove {
		items = append(items, changeItem{id: id, detail: plan.Describe(id)})
	}
	return items
}
