package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/union"
)

// UnionInfo describes a catalog union in types output.
type UnionInfo struct {
	Name         string   `json:"name"`
	Alternatives []string `json:"alternatives"`
}

// TypesResult lists what the CLI can resolve.
type TypesResult struct {
	Types  []string    `json:"types"`
	Unions []UnionInfo `json:"unions"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered type identifiers and catalog unions",
		Long: `List every type identifier the registry resolves, and the unions
available to --union with their alternatives' identifiers.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, cmd)
		},
	}
}

func runTypes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := opts.registry()
	resolver := union.NewResolver()
	catalog := opts.catalog()

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)

	result := TypesResult{Unions: make([]UnionInfo, 0, len(names))}
	for _, name := range names {
		alts, err := resolver.Alternatives(catalog[name])
		if err != nil {
			return formatter.Fail(fmt.Sprintf("union %s", name), err)
		}
		info := UnionInfo{Name: name, Alternatives: make([]string, 0, len(alts))}
		for _, alt := range alts {
			id, err := reg.NameOf(alt)
			if err != nil {
				if id, err = reg.Register(alt); err != nil {
					return formatter.Fail(fmt.Sprintf("union %s", name), err)
				}
			}
			info.Alternatives = append(info.Alternatives, id)
		}
		result.Unions = append(result.Unions, info)
	}
	result.Types = reg.Names()

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Types:")
	for _, name := range result.Types {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Unions:")
	for _, u := range result.Unions {
		fmt.Fprintf(w, "  %s\n", u.Name)
		for i, alt := range u.Alternatives {
			fmt.Fprintf(w, "    T%d %s\n", i, alt)
		}
	}
	return nil
}
