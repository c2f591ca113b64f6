package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/canvas"
)

type applyFlags struct {
	output    string
	presets   []string
	filters   []string
	rotate    float64
	flip      string
	circle    bool
	crop      string
	imageOnly bool
}

func newApplyCmd(g *globals) *cobra.Command {
	var af applyFlags
	cmd := &cobra.Command{
		Use:   "apply INPUT",
		Short: "Apply filters and presets to an image file",
		Long: `Apply loads INPUT onto a canvas and runs, in order: filters, presets,
rotation, flip, circle crop and rectangle crop. The canvas (or with
--image-only just the visible image) is written as PNG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			reg, err := registry(cfg)
			if err != nil {
				return err
			}
			opts, err := editorOptions(cfg, reg)
			if err != nil {
				return err
			}
			ed, err := ggedit.NewEditor(opts...)
			if err != nil {
				return err
			}
			if af.output == "" {
				af.output = ed.ExportName()
			}
			if err := runApply(ed, args[0], af); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", af.output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&af.output, "output", "o", "", "output PNG (default from config)")
	f.StringArrayVarP(&af.presets, "preset", "p", nil, "preset name, repeatable")
	f.StringArrayVarP(&af.filters, "filter", "f", nil, "basic filter ("+strings.Join(ggedit.FilterKinds(), ", ")+"), repeatable")
	f.Float64Var(&af.rotate, "rotate", 0, "rotate by degrees")
	f.StringVar(&af.flip, "flip", "", "flip horizontal or vertical")
	f.BoolVar(&af.circle, "circle", false, "clip to a centered circle")
	f.StringVar(&af.crop, "crop", "", "crop to canvas rectangle x,y,w,h")
	f.BoolVar(&af.imageOnly, "image-only", false, "export only the visible image instead of the canvas")
	return cmd
}

func runApply(ed *ggedit.Editor, input string, af applyFlags) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	err = ed.Load(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	for _, kind := range af.filters {
		if err := ed.ApplyFilter(kind); err != nil {
			return err
		}
	}
	for _, name := range af.presets {
		if err := ed.ApplyPreset(name); err != nil {
			return err
		}
	}
	if af.rotate != 0 {
		if err := ed.Rotate(af.rotate); err != nil {
			return err
		}
	}
	if af.flip != "" {
		axis, err := ggedit.ParseAxis(af.flip)
		if err != nil {
			return err
		}
		if err := ed.Flip(axis); err != nil {
			return err
		}
	}
	if af.circle {
		if err := ed.CircleCrop(); err != nil {
			return err
		}
	}
	if af.crop != "" {
		r, err := parseRect(af.crop)
		if err != nil {
			return err
		}
		if err := cropTo(ed, r); err != nil {
			return err
		}
	}

	out, err := os.Create(af.output)
	if err != nil {
		return err
	}
	export := ed.Export
	if af.imageOnly {
		export = ed.ExportImage
	}
	if err := export(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// cropTo drives the crop gesture from one corner of r to the other.
func cropTo(ed *ggedit.Editor, r canvas.Rect) error {
	if _, err := ed.StartCrop(); err != nil {
		return err
	}
	ed.PointerDown(r.X, r.Y)
	_, applied, err := ed.PointerUp(r.X+r.W, r.Y+r.H)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: empty crop rectangle", ggedit.ErrInvalidArgument)
	}
	return nil
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (canvas.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return canvas.Rect{}, fmt.Errorf("%w: crop %q: want x,y,w,h", ggedit.ErrInvalidArgument, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return canvas.Rect{}, fmt.Errorf("%w: crop %q: %v", ggedit.ErrInvalidArgument, s, err)
		}
		v[i] = f
	}
	return canvas.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
