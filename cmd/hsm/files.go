package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ha1tch/hsm-toolkit/pkg/diagram"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/scene"
)

// settleFrames is how many layout passes a loaded diagram gets before it
// is inspected or drawn. Labels placed by one pass are sized on the next.
const settleFrames = 2

// loadScene reads a .json scene or an .hsm archive.
func loadScene(path string) (*scene.Scene, error) {
	if filepath.Ext(path) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return scene.Unmarshal(data)
	}
	return scene.ReadFile(path)
}

// loadDiagram reads path and lays the diagram out.
func loadDiagram(path string, opts ...diagram.Option) (*diagram.Diagram, error) {
	s, err := loadScene(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	d, err := s.Diagram(opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	settle(d)
	return d, nil
}

func settle(d *diagram.Diagram) *diagram.Frame {
	var f *diagram.Frame
	for i := 0; i < settleFrames; i++ {
		f = d.Layout()
	}
	return f
}

// saveDiagram writes d as .json or as an .hsm archive with an SVG preview.
func saveDiagram(path string, d *diagram.Diagram) error {
	s := scene.FromDiagram(d)
	switch filepath.Ext(path) {
	case ".json":
		data, err := scene.Marshal(s)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".hsm":
		return scene.WriteFile(path, s, d.RenderSVG(render.DefaultSVGOptions()))
	default:
		return fmt.Errorf("unknown output format: %s", filepath.Ext(path))
	}
}
