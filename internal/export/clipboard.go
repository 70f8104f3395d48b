package export

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/travisdwitt/erdling/internal/model"
)

// Yank copies a textual description of the given objects to the
// system clipboard.
func Yank(objects []model.Object) error {
	if len(objects) == 0 {
		return fmt.Errorf("nothing selected")
	}
	return clipboard.WriteAll(YankText(objects))
}

// YankText renders objects as paste-friendly text: one header line per
// object, tables followed by their indented column rows.
func YankText(objects []model.Object) string {
	var b strings.Builder
	for _, obj := range objects {
		fmt.Fprintf(&b, "%s %s\n", obj.Kind(), obj.DisplayName())
		if tbl, ok := obj.(*model.Table); ok {
			for _, col := range tbl.Columns {
				fmt.Fprintf(&b, "  %s\n", col.RowText())
			}
		}
	}
	return b.String()
}
