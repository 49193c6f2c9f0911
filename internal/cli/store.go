package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/store"
)

// StoreOptions holds flags shared by the store subcommands.
type StoreOptions struct {
	*RootOptions
	DB    string // database path; config store.path when empty
	Union string
	Type  string // ls filter
}

// GetResult is the JSON output of store get.
type GetResult struct {
	Record   store.Record    `json:"record"`
	Envelope json.RawMessage `json:"envelope"`
}

// NewStoreCommand creates the store command and its subcommands.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep envelopes in a SQLite document store",
		Long: `Put, get, list and remove envelopes stored as BSON documents in a
SQLite database. The database path defaults to store.path from the
config file; store.compress enables brotli compression for new writes.`,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database path (default from config)")

	put := &cobra.Command{
		Use:   "put <key> <file|->",
		Short: "Store envelope JSON under key",
		Long: `Store envelope JSON under key.

Without --union the envelope is only shape-checked; its type is not
resolved. With --union it is decoded as that union first.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorePut(opts, args[0], args[1], cmd)
		},
	}
	put.Flags().StringVar(&opts.Union, "union", "", "decode through this union from the catalog")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the envelope stored under key",
		Long: `Print the envelope stored under key.

With --union the document is decoded as that union and written in the
configured mode.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreGet(opts, args[0], cmd)
		},
	}
	get.Flags().StringVar(&opts.Union, "union", "", "decode through this union from the catalog")

	ls := &cobra.Command{
		Use:           "ls",
		Short:         "List stored records in write order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreList(opts, cmd)
		},
	}
	ls.Flags().StringVar(&opts.Type, "type", "", "only records whose envelope has this type identifier")

	rm := &cobra.Command{
		Use:           "rm <key>",
		Short:         "Remove the record under key",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreRemove(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(put, get, ls, rm)
	return cmd
}

// open opens the configured store.
func (o *StoreOptions) open() (*store.Store, error) {
	path := o.DB
	if path == "" {
		path = o.cfg().Store.Path
	}
	st, err := store.Open(path, o.newBridge(),
		store.WithCompression(o.cfg().Store.Compress),
		store.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s: open %s", ErrCodeStoreFailed, path), err)
	}
	return st, nil
}

func runStorePut(opts *StoreOptions, key, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(cmd, path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read input", err)
	}

	st, err := opts.open()
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	var rec store.Record
	if opts.Union != "" {
		ut, err := opts.unionType(opts.Union)
		if err != nil {
			_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
			return WrapExitError(ExitCommandError, "bad --union", err)
		}
		u, err := opts.newCodec(codec.ModeEnvelope).Deserialize(data, ut)
		if err != nil {
			return formatter.Fail("decode input", err)
		}
		rec, err = st.Put(ctx, key, u)
		if err != nil {
			return formatter.Fail("put", err)
		}
	} else {
		rec, err = st.PutEnvelope(ctx, key, data)
		if err != nil {
			return formatter.Fail("put", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(rec)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s (%s, %s, %d bytes, seq %d)\n",
		rec.Key, rec.TypeID, rec.Encoding, rec.Size, rec.Seq)
	return nil
}

func runStoreGet(opts *StoreOptions, key string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.open()
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	var (
		out []byte
		rec store.Record
	)
	if opts.Union != "" {
		ut, err := opts.unionType(opts.Union)
		if err != nil {
			_ = formatter.Error(ErrCodeBadFlag, err.Error(), nil)
			return WrapExitError(ExitCommandError, "bad --union", err)
		}
		u, r, err := st.Get(ctx, key, ut)
		if err != nil {
			return formatter.Fail("get", err)
		}
		out, err = opts.newCodec(opts.codecMode()).Serialize(u)
		if err != nil {
			return formatter.Fail("serialize", err)
		}
		rec = r
	} else {
		out, rec, err = st.GetEnvelope(ctx, key)
		if err != nil {
			return formatter.Fail("get", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(GetResult{Record: rec, Envelope: out})
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}

func runStoreList(opts *StoreOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.open()
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	records, err := st.List(ctx, store.ListOptions{TypeID: opts.Type})
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "list", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No records.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "%4d  %-24s %-40s %s\n", rec.Seq, rec.Key, rec.TypeID, rec.Encoding)
	}
	return nil
}

func runStoreRemove(opts *StoreOptions, key string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.open()
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	if err := st.Delete(ctx, key); err != nil {
		return formatter.Fail("remove", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"removed": key})
	}
	fmt.Fprintf(formatter.Writer, "✓ removed %s\n", key)
	return nil
}
