package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/vietddude/netswitch/internal/registry"
)

func printStatus(ctx context.Context, reg *registry.Registry) {
	st := reg.Status(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NETWORK\tPROVIDER\tPREFERRED\tCHAIN\tHEIGHT\tENDPOINT")

	height := fmt.Sprintf("%d", st.Height)
	if st.HeightError != "" {
		height = "unavailable"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		st.Network, st.Provider, st.Preferred, st.ChainID, height, st.BaseURL)
	_ = w.Flush()
}
