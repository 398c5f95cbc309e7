//go:build linux

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notnil/linkio/netutil"
)

var (
	resolvePort   int
	resolveFamily string
	resolveLocal  bool
	resolveIface  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [HOST]",
	Short: "Resolve an address the way the transports do",
	Long: `Resolve HOST as a remote peer, or with --local as a bind address (an
empty HOST is the wildcard). With --iface, print the interface's first
address of the family instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		family, err := netutil.ParseFamily(resolveFamily)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		host := firstArg(args)

		switch {
		case resolveIface != "":
			ip := netutil.LocalIP(resolveIface, family)
			if ip == "" {
				return fmt.Errorf("no %s address on %s", family, resolveIface)
			}
			fmt.Fprintln(out, ip)
		case resolveLocal:
			addr, ok := netutil.ResolveLocalContext(cmd.Context(), netutil.Datagram, resolvePort, host, family)
			if !ok {
				return fmt.Errorf("%w: local %q", netutil.ErrUnresolvable, host)
			}
			fmt.Fprintf(out, "%s %s\n", addr.Family, addr)
		default:
			if host == "" {
				return errors.New("HOST is required unless --local or --iface is set")
			}
			addr, err := netutil.ResolveRemoteContext(cmd.Context(), netutil.Datagram, host, resolvePort, family)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", addr.Family, addr)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().IntVarP(&resolvePort, "port", "p", 0, "port to attach")
	resolveCmd.Flags().StringVar(&resolveFamily, "family", "unspec", "address family: ipv4, ipv6, unspec")
	resolveCmd.Flags().BoolVar(&resolveLocal, "local", false, "resolve a local bind address")
	resolveCmd.Flags().StringVar(&resolveIface, "iface", "", "print the address of this interface")
	rootCmd.AddCommand(resolveCmd)
}
