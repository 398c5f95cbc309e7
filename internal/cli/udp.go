//go:build linux

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/notnil/linkio/netutil"
	"github.com/notnil/linkio/udp"
)

var (
	udpPort    int
	udpDest    string
	udpBind    string
	udpFamily  string
	udpTimeout time.Duration
	udpCount   int
)

var udpCmd = &cobra.Command{
	Use:   "udp",
	Short: "UDP datagram operations",
}

var udpSendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: `Send MESSAGE as one datagram (--dest "broadcast" for broadcast)`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		family, err := udpFamilyFlag(cmd)
		if err != nil {
			return err
		}
		dest := cfg.UDP.Destination
		if cmd.Flags().Changed("dest") {
			dest = udpDest
		}
		sock, err := udp.DialSender(udpPortFlag(cmd), dest, family)
		if err != nil {
			return err
		}
		ep := udp.NewLoggedEndpoint(sock, logger, slog.LevelDebug, netutil.LogWrite)
		return multierr.Append(ep.Send([]byte(args[0])), ep.Close())
	},
}

var udpListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print received datagrams until interrupted or --count is reached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		family, err := udpFamilyFlag(cmd)
		if err != nil {
			return err
		}
		bind := cfg.UDP.Bind
		if cmd.Flags().Changed("bind") {
			bind = udpBind
		}
		sock, err := udp.ListenReceiver(udpPortFlag(cmd), bind, family)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sock.Close()) }()
		if local, err := sock.LocalAddr(); err == nil {
			logger.Info("listening", "addr", local.String())
		}

		timeout := time.Duration(cfg.UDP.Timeout)
		if cmd.Flags().Changed("timeout") {
			timeout = udpTimeout
		}
		if timeout < 0 {
			timeout = time.Second
		}
		ep := udp.NewLoggedEndpoint(sock, logger, slog.LevelDebug, netutil.LogRead)
		buf := make([]byte, cfg.UDP.Buffer)
		ctx := cmd.Context()
		for n := 0; udpCount <= 0 || n < udpCount; {
			if ctx.Err() != nil {
				return nil
			}
			size, from, err := ep.ReceiveFrom(buf, timeout)
			if errors.Is(err, udp.ErrTimeout) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %q\n", from, buf[:size])
			n++
		}
		return nil
	},
}

func udpPortFlag(cmd *cobra.Command) int {
	if cmd.Flags().Changed("port") {
		return udpPort
	}
	return cfg.UDP.Port
}

func udpFamilyFlag(cmd *cobra.Command) (netutil.Family, error) {
	if cmd.Flags().Changed("family") {
		return netutil.ParseFamily(udpFamily)
	}
	return cfg.UDP.AddressFamily()
}

func init() {
	for _, c := range []*cobra.Command{udpSendCmd, udpListenCmd} {
		c.Flags().IntVarP(&udpPort, "port", "p", 0, "UDP port (default from config)")
		c.Flags().StringVar(&udpFamily, "family", "", "address family: ipv4, ipv6, unspec")
	}
	udpSendCmd.Flags().StringVarP(&udpDest, "dest", "d", "", `destination host, IP or "broadcast"`)
	udpListenCmd.Flags().StringVarP(&udpBind, "bind", "b", "", "local address to bind (default wildcard)")
	udpListenCmd.Flags().DurationVar(&udpTimeout, "timeout", time.Second, "receive timeout between interrupt checks")
	udpListenCmd.Flags().IntVarP(&udpCount, "count", "n", 0, "exit after N datagrams (0 = unlimited)")

	udpCmd.AddCommand(udpSendCmd, udpListenCmd)
	rootCmd.AddCommand(udpCmd)
}
