package table

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/xuri/excelize/v2"
)

// FromSpreadsheet reads the rows of the first sheet of an .xlsx file.
func FromSpreadsheet(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.E(core.KindNotFound, "opening spreadsheet", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.E(core.KindDecodeFailure, "opening spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.Errorf(core.KindDecodeFailure, "spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.E(core.KindDecodeFailure, fmt.Sprintf("reading sheet %q", sheets[0]), err)
	}
	return rows, nil
}
