package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonoton/go-uorb"
)

// printStatus writes one row per node.
func printStatus(w io.Writer, nodes []uorb.NodeStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tINST\tQUEUE\tGEN\tPUBS\tSUBS\tLOST")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			n.Topic, n.Instance, n.QueueSize, n.Generation, n.Advertisers, n.Subscribers, n.Lost)
	}
	tw.Flush()
}
