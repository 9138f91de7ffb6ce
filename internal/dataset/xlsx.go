package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// sheet is one table rendered as rows of cell values
type sheet struct {
	name   string
	header []string
	rows   int
	row    func(i int) []interface{}
}

// WriteXLSX writes all tables of a dataset into one workbook, one sheet per table
func WriteXLSX(w io.Writer, ds *core.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		{
			name:   "sensors",
			header: SensorColumns,
			rows:   len(ds.Sensors),
			row: func(i int) []interface{} {
				r := ds.Sensors[i]
				return []interface{}{
					formatTime(r.Timestamp), r.SensorID,
					cellFloat(r.Temperature), cellFloat(r.Humidity),
					cellInt(r.CO2), cellInt(r.LightLevel), r.Zone,
				}
			},
		},
		{
			name:   "energy",
			header: EnergyColumns,
			rows:   len(ds.Energy),
			row: func(i int) []interface{} {
				r := ds.Energy[i]
				return []interface{}{formatTime(r.Timestamp), r.ElectricityKWh, r.HeatingGcal, r.TotalPowerKW}
			},
		},
		{
			name:   "equipment",
			header: EquipmentColumns,
			rows:   len(ds.Equipment),
			row: func(i int) []interface{} {
				r := ds.Equipment[i]
				return []interface{}{
					formatTime(r.Timestamp), string(r.HVACStatus), string(r.LightingStatus),
					string(r.VentilationStatus), r.EquipmentLoad,
				}
			},
		},
		{
			name:   "anomalies",
			header: AnomalyColumns,
			rows:   len(ds.Anomalies),
			row: func(i int) []interface{} {
				a := ds.Anomalies[i]
				return []interface{}{
					a.Row, formatTime(a.Timestamp), a.SensorID, string(a.Channel),
					cellFloat(a.Before), cellFloat(a.After),
				}
			},
		},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		index, err := f.NewSheet(s.name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set %s header style: %w", s.name, err)
	}

	for i := 0; i < s.rows; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := s.row(i)
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(s.name, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(s.name, "B", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellFloat leaves missing values as empty cells
func cellFloat(v core.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Value
}

func cellInt(v core.NullInt) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Value
}
