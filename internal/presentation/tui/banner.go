package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                           _",
	" ___ _ __   ___  ___| |_ _ __ _   _ _ __ ___",
	"/ __| '_ \\ / _ \\/ __| __| '__| | | | '_ ` _ \\",
	"\\__ \\ |_) |  __/ (__| |_| |  | |_| | | | | | |",
	"|___/ .__/ \\___|\\___|\\__|_|   \\__,_|_| |_| |_|",
	"    |_|",
}

// PrintBanner writes the ASCII banner, one gradient color per line.
func PrintBanner(w io.Writer, g domain.Gradient) {
	out := termenv.NewOutput(w)

	// An invalid gradient prints the banner uncolored.
	colors, _ := Sample(g.Colors, len(bannerLines))

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		s := out.String(line)
		if colors != nil {
			s = s.Foreground(out.Color(colors[i].Hex()))
		}
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
}
