package cmd

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/studx/homefeed/internal/model"
)

var heading = color.New(color.Bold, color.FgCyan)

var offerHeaders = []string{"ID", "UNIVERSITY", "STUDENTS", "LEVEL", "NATIVE", "TARGET"}

// renderOffers prints offers as a borderless table.
func renderOffers(w io.Writer, offers []model.ExchangeOffer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(offerHeaders)

	rows := make([][]string, 0, len(offers))
	for _, o := range offers {
		rows = append(rows, []string{
			o.ID,
			o.University,
			strconv.Itoa(o.QuantityStudents),
			string(o.AcademicLevel),
			o.NativeLanguage,
			o.TargetLanguage,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
