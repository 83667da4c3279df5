package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
)

var classifyOpts struct {
	trigger string
	popup   string
	side    string
}

var classifyCmd = &cobra.Command{
	Use:   "classify X Y",
	Short: "Classify a pointer position against a trigger and popout",
	Long: `Classify a pointer position the way the submenu close poll does.

Rectangles are given as x1,y1,x2,y2 in screen coordinates. The result is
one of inside, bridge or outside. Tolerances come from the [submenu]
section of the config file.

Example:
  kiwimenu classify 205 120 --trigger 0,100,200,130 --popup 210,90,460,400`,
	Args: cobra.ExactArgs(2),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyOpts.trigger, "trigger", "",
		"Trigger rectangle as x1,y1,x2,y2")
	classifyCmd.Flags().StringVar(&classifyOpts.popup, "popup", "",
		"Popout rectangle as x1,y1,x2,y2")
	classifyCmd.Flags().StringVar(&classifyOpts.side, "side", "",
		"Popout side (right, left, auto; default: submenu side)")
	_ = classifyCmd.MarkFlagRequired("trigger")
	_ = classifyCmd.MarkFlagRequired("popup")
}

// parseRect parses "x1,y1,x2,y2".
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: want x1,y1,x2,y2", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: %w", s, err)
		}
		v[i] = f
	}
	return geometry.Rect{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func parsePoint(xs, ys string) (geometry.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	p, err := parsePoint(args[0], args[1])
	if err != nil {
		return err
	}
	trigger, err := parseRect(classifyOpts.trigger)
	if err != nil {
		return err
	}
	popup, err := parseRect(classifyOpts.popup)
	if err != nil {
		return err
	}

	tol := getConfig().Tolerance()
	if classifyOpts.side != "" {
		tol.Side = geometry.ParseSide(strings.ToLower(classifyOpts.side))
	}

	state := geometry.Classify(p, &trigger, &popup, tol)
	logger.Debug("classified pointer", "point", p, "trigger", trigger, "popup", popup, "side", tol.Side)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), state)
	return err
}
