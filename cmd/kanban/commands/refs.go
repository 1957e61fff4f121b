package commands

import (
	"fmt"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/resolver"
)

func (a *app) column(ref string) (string, error) {
	id, err := resolver.Column(a.editor.Board(), ref)
	if err != nil {
		return "", a.refError("column", ref, err)
	}
	return id, nil
}

func (a *app) item(ref string) (itemID, columnID string, err error) {
	itemID, columnID, err = resolver.Item(a.editor.Board(), ref)
	if err != nil {
		return "", "", a.refError("item", ref, err)
	}
	return itemID, columnID, nil
}

func (a *app) refError(kind, ref string, err error) error {
	if resolver.IsAmbiguousError(err) {
		fmt.Fprintln(a.out.Err, resolver.FormatAmbiguousError(err.(*resolver.AmbiguousError)))
		return fmt.Errorf("ambiguous short ID")
	}
	if resolver.IsNotFoundError(err) {
		return a.out.Error(
			fmt.Sprintf("%s '%s' not found", kind, ref),
			fmt.Sprintf("No %s matches that position or id.", kind),
			[]string{"List the board:\n  kanban show"},
		)
	}
	return a.out.Error(fmt.Sprintf("invalid %s reference", kind), err.Error(), nil)
}
