package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/wayoutd/internal/ipc"
	"github.com/bnema/wayoutd/internal/search"
)

var exportCmd = &cobra.Command{
	Use:   "export [FIELDS] NAME",
	Short: "Print an output-search string that exactly matches the named head",
	Long: `export looks up the currently connected head named NAME and prints the
output-search text form that would match it exactly, suitable for pasting into
a profile's [[profile.output]] search field. FIELDS is an optional subset of
the field characters d, n, v, m, s (description, name, vendor, model, serial);
one exact pattern is emitted per requested field. Without FIELDS only the name
field is exported.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldsArg := "n"
		name := args[0]
		if len(args) == 2 {
			fieldsArg, name = args[0], args[1]
		}

		fs, rest, err := search.ParseFieldSet(fieldsArg)
		if err != nil {
			return fmt.Errorf("fields %q: %w", fieldsArg, err)
		}
		if rest != "" || fs.Empty() {
			return fmt.Errorf("fields %q: want a subset of d, n, v, m, s", fieldsArg)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		heads, err := client.CurrentHeads()
		if err != nil {
			return fmt.Errorf("fetch current heads: %w", err)
		}

		var head *ipc.HeadView
		for i := range heads {
			if heads[i].Name == name {
				head = &heads[i]
				break
			}
		}
		if head == nil {
			return fmt.Errorf("no connected head named %q", name)
		}

		var parts []string
		for _, f := range fs.Iter() {
			var single search.FieldSet
			if err := single.TryInsert(f); err != nil {
				return err
			}
			pattern := search.Pattern{Kind: search.KindFulltext, Literal: fieldValue(*head, f)}
			s := search.SingleSearch{Fields: single, Pattern: pattern, Method: search.Exact}
			parts = append(parts, s.String())
		}
		fmt.Println(strings.Join(parts, ";"))
		return nil
	},
}

func fieldValue(h ipc.HeadView, f search.Field) string {
	switch f {
	case search.FieldDescription:
		return h.Description
	case search.FieldName:
		return h.Name
	case search.FieldVendor:
		return h.Vendor
	case search.FieldModel:
		return h.Model
	case search.FieldSerial:
		return h.Serial
	default:
		return ""
	}
}
