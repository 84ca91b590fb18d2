package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/ha1tch/hsm-toolkit/pkg/diagram"
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/scene"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

func newNewCommand(g *globals) *cobra.Command {
	var name string
	var children int

	cmd := &cobra.Command{
		Use:   "new <output>",
		Short: "Create a diagram with one root state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if children < 0 {
				return fmt.Errorf("--children must not be negative")
			}
			d := diagram.New(diagram.WithName(name), diagram.WithLogger(g.log))
			root, err := d.AddNode(tree.None, name, geom.Pt(0, 0))
			if err != nil {
				return err
			}
			for i := 0; i < children; i++ {
				if _, err := d.AddChild(root); err != nil {
					return err
				}
				// Each child is placed below the previous one's laid-out size.
				d.Layout()
			}
			settle(d)
			if err := saveDiagram(args[0], d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "Machine", "name of the diagram and its root state")
	cmd.Flags().IntVarP(&children, "children", "c", 0, "number of default child states to add to the root")
	return cmd
}

func newInfoCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info <input>",
		Short: "Show diagram information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0], diagram.WithLogger(g.log))
			if err != nil {
				return err
			}
			s := scene.FromDiagram(d)
			t := d.Tree()

			containers, parallel := 0, 0
			for _, id := range t.IDs() {
				if t.IsContainer(id) {
					containers++
				}
				if t.IsParallel(id) {
					parallel++
				}
			}
			b := d.Last().Bounds()

			out := cmd.OutOrStdout()
			if d.Name != "" {
				fmt.Fprintf(out, "Name:        %s\n", d.Name)
			}
			fmt.Fprintf(out, "ID:          %s\n", d.ID)
			fmt.Fprintf(out, "Nodes:       %d\n", s.Count())
			fmt.Fprintf(out, "Roots:       %d\n", len(s.Roots))
			fmt.Fprintf(out, "Depth:       %d\n", s.Depth())
			fmt.Fprintf(out, "Containers:  %d\n", containers)
			fmt.Fprintf(out, "Parallel:    %d\n", parallel)
			fmt.Fprintf(out, "Transitions: %d\n", len(s.Transitions))
			fmt.Fprintf(out, "Size:        %.0fx%.0f\n", b.W, b.H)
			return nil
		},
	}
}

func newValidateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Validate a diagram file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiagram(args[0], diagram.WithLogger(g.log))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: valid diagram with %d states, %d transitions\n",
				args[0], d.Tree().Len(), d.Transitions().Len())
			if roots := len(d.Tree().Roots()); roots > 1 {
				fmt.Fprintf(out, "note: %d root states\n", roots)
			}
			return nil
		},
	}
}

func newConvertCommand(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert between .hsm archives and .json scenes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				ext := filepath.Ext(input)
				base := strings.TrimSuffix(input, ext)
				if ext == ".json" {
					output = base + ".hsm"
				} else {
					output = base + ".json"
				}
			}
			d, err := loadDiagram(input, diagram.WithLogger(g.log))
			if err != nil {
				return err
			}
			if err := saveDiagram(output, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.hsm or .json)")
	return cmd
}

func newRenderCommand(g *globals) *cobra.Command {
	var output, format string
	var scale float64

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a diagram as PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			if format == "" {
				format = "png"
			}
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
			}

			switch format {
			case "png":
				opts := render.DefaultPNGOptions()
				opts.Scale = scale
				m, err := render.NewFontMeasurer(opts.FontSize)
				if err != nil {
					return err
				}
				d, err := loadDiagram(input, diagram.WithLogger(g.log), diagram.WithMeasurer(m))
				if err != nil {
					return err
				}
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := d.RenderPNG(file, opts); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
			case "svg":
				d, err := loadDiagram(input, diagram.WithLogger(g.log))
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, []byte(d.RenderSVG(render.DefaultSVGOptions())), 0644); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown render format: %s", format)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "png or svg (default: from the output extension)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "PNG pixels per diagram unit")
	return cmd
}

func newDotCommand(g *globals) *cobra.Command {
	var output, title string

	cmd := &cobra.Command{
		Use:   "dot <input>",
		Short: "Generate Graphviz DOT output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			g.log.Debug("generating dot", "nodes", s.Count())
			dot := scene.GenerateDOT(s, title)
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			return os.WriteFile(output, []byte(dot), 0644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title (default: diagram name)")
	return cmd
}

func newQueryCommand(g *globals) *cobra.Command {
	var raw, compact bool

	cmd := &cobra.Command{
		Use:   "query <input> <expression>",
		Short: "Run a jq expression over the scene JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			results, err := queryScene(cmd, s, args[1])
			if err != nil {
				return err
			}
			g.log.Debug("query evaluated", "expression", args[1], "results", len(results))

			out := cmd.OutOrStdout()
			for _, v := range results {
				if str, ok := v.(string); ok && raw {
					fmt.Fprintln(out, str)
					continue
				}
				var data []byte
				if compact {
					data, err = json.Marshal(v)
				} else {
					data, err = json.MarshalIndent(v, "", "  ")
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "print strings without quotes")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "print each result on one line")
	return cmd
}

// queryScene evaluates expression against the scene's JSON form.
func queryScene(cmd *cobra.Command, s *scene.Scene, expression string) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", expression, err)
	}
	code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", expression, err)
	}

	data, err := scene.Marshal(s)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(cmd.Context(), input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq evaluation failed for %q: %w", expression, err)
		}
		results = append(results, v)
	}
	return results, nil
}
