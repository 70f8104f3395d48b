package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/travisdwitt/erdling/internal/canvas"
	"github.com/travisdwitt/erdling/internal/export"
	"github.com/travisdwitt/erdling/internal/model"
	"github.com/travisdwitt/erdling/internal/project"
)

var exportCmd = &cobra.Command{
	Use:   "export <project" + project.FileExtension + ">",
	Short: "Render a diagram to PNG or text without opening the editor",
	Long: `Render one diagram of a project to an image or a plain-text grid.

The output format follows the file extension: .png renders an
anti-aliased image, .txt renders the same character grid the editor
shows. Without --diagram the project's last active diagram is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("diagram", "d", "", "diagram name (default: the last active diagram)")
	exportCmd.Flags().StringP("out", "o", "", "output file, .png or .txt")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, err := project.Open(args[0])
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("diagram")
	d, err := pickDiagram(mgr.Project(), name)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	scene := canvas.NewScene(mgr.Project(), d, canvas.Theme{Dark: cfg.Dark()})
	if err := exportScene(scene, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", d.Name, out)
	return nil
}

// pickDiagram resolves which diagram to export: the named one, or the
// same diagram the editor would open first.
func pickDiagram(p *model.Project, name string) (*model.Diagram, error) {
	if name != "" {
		d, ok := p.DiagramByName(name)
		if !ok {
			return nil, fmt.Errorf("no diagram named %q in project %q", name, p.Name)
		}
		return d, nil
	}
	if len(p.Diagrams) == 0 {
		return nil, fmt.Errorf("project %q has no diagrams", p.Name)
	}
	if d, ok := p.DiagramByName(p.LastActiveDiagram); ok {
		return d, nil
	}
	for _, d := range p.Diagrams {
		if d.IsActive {
			return d, nil
		}
	}
	return p.Diagrams[0], nil
}

// exportScene writes the scene in the format named by the extension.
func exportScene(scene *canvas.Scene, out string) error {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		return export.PNG(scene, out)
	case ".txt":
		return export.TextFile(scene, out)
	default:
		return fmt.Errorf("output file must end in .png or .txt, got %q", out)
	}
}
