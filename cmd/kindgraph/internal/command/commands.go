package command

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/reoring/kindgraph/typegraph"
)

func newCompileCommand(cli *CLI) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a Swagger document and dump the type graph",
		Example: "  kindgraph compile swagger.json\n" +
			"  kindgraph compile -o yaml swagger.yaml",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := cli.compile(cmd, args[0], false)
			if err != nil {
				return err
			}
			return cli.dump(g, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	return cmd
}

func newCRDCommand(cli *CLI) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "crd FILE",
		Short: "Compile a bundle of CustomResourceDefinitions and dump the type graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := cli.compile(cmd, args[0], true)
			if err != nil {
				return err
			}
			return cli.dump(g, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: json or yaml")
	return cmd
}

func newKindsCommand(cli *CLI) *cobra.Command {
	var crds bool
	cmd := &cobra.Command{
		Use:   "kinds FILE",
		Short: "List the writable kinds and the types implementing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := cli.compile(cmd, args[0], crds)
			if err != nil {
				return err
			}
			tbl := cli.table("API VERSION", "KIND", "TYPE", "ACTIONS")
			for _, k := range g.Kinds() {
				var actions []string
				for _, a := range g.Actions(k.GVK()) {
					name := a.Action
					if name == "" {
						name = strings.ToLower(a.Method)
					}
					actions = append(actions, name)
				}
				tbl.AddRow(k.APIVersion(), k.Kind, k.Type, strings.Join(actions, ","))
			}
			tbl.Print()
			return nil
		},
	}
	cmd.Flags().BoolVar(&crds, "crd", false, "Read FILE as a CustomResourceDefinition bundle")
	return cmd
}

func newTypesCommand(cli *CLI) *cobra.Command {
	var crds bool
	cmd := &cobra.Command{
		Use:   "types FILE",
		Short: "List every type of the graph in registration order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := cli.compile(cmd, args[0], crds)
			if err != nil {
				return err
			}
			tbl := cli.table("NAME", "VARIANT", "ATTRIBUTES", "DEPENDENCIES")
			for _, n := range g.Types() {
				attrs := "-"
				if obj, ok := n.(*typegraph.ObjectType); ok {
					attrs = strconv.Itoa(len(obj.Attributes))
					if obj.KindRoot {
						attrs += " (kind)"
					}
				}
				tbl.AddRow(n.TypeName(), n.NodeKind(), attrs, len(n.Deps()))
			}
			tbl.Print()
			return nil
		},
	}
	cmd.Flags().BoolVar(&crds, "crd", false, "Read FILE as a CustomResourceDefinition bundle")
	return cmd
}

func (c *CLI) table(headers ...any) table.Table {
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()
	return table.New(headers...).
		WithWriter(c.Out).
		WithHeaderFormatter(headerFmt).
		WithFirstColumnFormatter(columnFmt)
}

func (c *CLI) dump(g *typegraph.Graph, format string) error {
	out, err := typegraph.Dump(g, format)
	if err != nil {
		return err
	}
	if _, err := c.Out.Write(out); err != nil {
		return err
	}
	if format != "yaml" {
		_, err = c.Out.Write([]byte("\n"))
	}
	return err
}
