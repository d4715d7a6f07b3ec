package trial

import (
	"io"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// History is the epoch level log of a trial, one row per epoch. Rows are
// streamed as tab separated values to an optional writer as they are added.
type History struct {
	Table *etable.Table
	file  io.Writer
}

// NewHistory returns an empty History that also writes to w when w is not
// nil.
func NewHistory(w io.Writer) *History {
	dt := &etable.Table{}
	dt.SetMetaData("name", "History")
	dt.SetMetaData("desc", "epoch level validation accuracy")
	dt.SetMetaData("precision", "6")
	sch := etable.Schema{
		{"Epoch", etensor.INT64, nil, nil},
		{"ValAcc", etensor.FLOAT64, nil, nil},
		{"Best", etensor.FLOAT64, nil, nil},
		{"Saved", etensor.INT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
	return &History{Table: dt, file: w}
}

// Add appends the results of one epoch.
func (h *History) Add(epoch int, valAcc, best float64, saved bool) error {
	dt := h.Table
	row := dt.Rows
	dt.SetNumRows(row + 1)
	dt.SetCellFloat("Epoch", row, float64(epoch))
	dt.SetCellFloat("ValAcc", row, valAcc)
	dt.SetCellFloat("Best", row, best)
	var flag float64
	if saved {
		flag = 1
	}
	dt.SetCellFloat("Saved", row, flag)

	if h.file == nil {
		return nil
	}
	if row == 0 {
		if _, err := dt.WriteCSVHeaders(h.file, etable.Tab); err != nil {
			return err
		}
	}
	return dt.WriteCSVRow(h.file, row, etable.Tab)
}

// Len returns the number of recorded epochs.
func (h *History) Len() int {
	return h.Table.Rows
}

// ValAcc returns the validation accuracy recorded for row.
func (h *History) ValAcc(row int) float64 {
	return h.Table.CellFloat("ValAcc", row)
}
