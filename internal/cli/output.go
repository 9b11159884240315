package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

// logJSONCmd prints v as indented JSON. Colour output goes through prettyjson,
// which sorts object keys; plain output keeps the encoded key order.
func logJSONCmd(cmd *cobra.Command, v interface{}) error {
	if color.NoColor {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
		return err
	}
	m, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pj, err := prettyjson.NewFormatter().Format(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pj)
	return err
}

func logErrorCmd(cmd *cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "error: ")
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", color.RedString(err.Error()))
}

func logOKCmd(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("ok:"), fmt.Sprintf(format, args...))
}
