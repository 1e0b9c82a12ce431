package cli

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mgpai22/leviosa/internal/subtitle"
)

// renders the cues that would be written, numbered the same way
func renderSegmentTable(segments []subtitle.Segment) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Text"})

	for _, cue := range subtitle.Cues(segments) {
		start, _ := subtitle.FormatTimestamp(cue.Start)
		end, _ := subtitle.FormatTimestamp(cue.End)
		tw.AppendRow(table.Row{strconv.Itoa(cue.Index), start, end, cue.Text})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: 60},
	})
	return tw.Render()
}
