package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/scw/internal/capture"
)

// DisplaysCmd lists the attached displays and the target references to
// use with the stream command.
type DisplaysCmd struct{}

// Run executes the displays command.
func (c *DisplaysCmd) Run(globals *Globals) error {
	infos := capture.ListDisplays()
	if len(infos) == 0 {
		return outputErrorCommon(globals, "NO_DISPLAYS", "no active displays found")
	}

	if globals.Format == "ndjson" {
		for i, info := range infos {
			fmt.Fprintf(globals.Stdout,
				`{"type":"display","schemaVersion":1,"target":"display:%d","title":"%s","width":%d,"height":%d,"x":%d,"y":%d}`+"\n",
				i, info.Title, info.Width, info.Height, info.X, info.Y)
		}
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("TARGET", "TITLE", "SIZE", "ORIGIN")
	for i, info := range infos {
		table.Append([]string{
			fmt.Sprintf("display:%d", i),
			info.Title,
			fmt.Sprintf("%dx%d", info.Width, info.Height),
			fmt.Sprintf("%d,%d", info.X, info.Y),
		})
	}
	return table.Render()
}
