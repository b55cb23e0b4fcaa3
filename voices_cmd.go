package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrator/internal/queue"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List supported narration languages and their voices",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tVOICE\tLOCALE")
		for _, v := range queue.Voices() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Language, v.Voice.Name, v.Voice.Locale)
		}
		return w.Flush()
	},
}
