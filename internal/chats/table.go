package chats

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// FormatTable renders chats as an aligned text table.
func FormatTable(w io.Writer, chats []Chat) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tUNREAD")
	for _, c := range chats {
		unread := "-"
		if c.Unread > 0 {
			unread = fmt.Sprintf("%d", c.Unread)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, unread)
	}
	return tw.Flush()
}
