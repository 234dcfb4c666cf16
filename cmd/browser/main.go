// Command browser is the tinybrowser CLI: it loads one URL into a new tab
// and opens a window showing the rendered page (§6 "CLI").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tinybrowser/pkg/browser"
	"tinybrowser/pkg/text"
	"tinybrowser/pkg/window"
)

func main() {
	var (
		singleThreaded             bool
		disableCompositing         bool
		disableGPU                 bool
		showCompositedLayerBorders bool
		ttfPath                    string
	)

	root := &cobra.Command{
		Use:   "browser [url]",
		Short: "A toy two-threaded browser engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := browser.Config{
				SingleThreaded:             singleThreaded,
				DisableCompositing:         disableCompositing,
				DisableGPU:                 disableGPU,
				ShowCompositedLayerBorders: showCompositedLayerBorders,
			}
			fonts := text.NewService(ttfPath)

			b := browser.New(config, fonts, nil)
			win := window.New(b)
			b.SetWindow(win)

			b.NewTab(args[0])
			stop := b.ScheduleAnimationFrame()
			defer stop()

			win.Run()
			return nil
		},
	}

	root.Flags().BoolVar(&singleThreaded, "single_threaded", false, "run the tab's task runner synchronously")
	root.Flags().BoolVar(&disableCompositing, "disable_compositing", false, "disable the incremental composited-only update path")
	root.Flags().BoolVar(&disableGPU, "disable_gpu", false, "accepted for parity; this engine never uses a GPU surface")
	root.Flags().BoolVar(&showCompositedLayerBorders, "show_composited_layer_borders", false, "draw a border around each composited layer")
	root.Flags().StringVar(&ttfPath, "font", "", "path to a TTF file to use for text, falling back to a fixed bitmap face")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
