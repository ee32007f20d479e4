package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/render"
	"github.com/soochol/flowboard/internal/services"
	"github.com/soochol/flowboard/internal/viewport"
)

func renderCmd() *cobra.Command {
	var (
		thumbnail bool
		width     float64
		height    float64
		zoom      float64
	)
	cmd := &cobra.Command{
		Use:   "render <workflow.yaml>",
		Short: "Render a workflow file as SVG on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := services.ReadDefinition(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if thumbnail {
				_, err = fmt.Fprintln(out, render.Thumbnail(wf, width, height))
				return err
			}
			opts := canvas.DefaultOptions()
			opts.ViewportWidth, opts.ViewportHeight = width, height
			c, err := canvas.New(wf, opts, nil)
			if err != nil {
				return err
			}
			if zoom != 1 {
				c.ChangeViewport(func(v *viewport.Viewport) { v.SetZoom(zoom, v.Center()) })
			}
			_, err = fmt.Fprintln(out, render.SVG(c.Snapshot()))
			return err
		},
	}
	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "Render a fit-to-content thumbnail instead of the canvas view")
	cmd.Flags().Float64Var(&width, "width", 1280, "Output width in pixels")
	cmd.Flags().Float64Var(&height, "height", 800, "Output height in pixels")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "Canvas zoom, clamped to the supported range")
	return cmd
}
