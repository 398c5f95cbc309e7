//go:build linux

package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/notnil/linkio/canbus"
	"github.com/notnil/linkio/netutil"
)

var (
	canTimeout time.Duration
	canCount   int
	canFilters []string
)

var canCmd = &cobra.Command{
	Use:   "can",
	Short: "SocketCAN operations",
}

var canSendCmd = &cobra.Command{
	Use:   "send IFACE ID [HEXDATA]",
	Short: "Send one frame; ID and data are hexadecimal",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[1], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		var data []byte
		if len(args) == 3 {
			if data, err = hex.DecodeString(args[2]); err != nil {
				return fmt.Errorf("invalid data %q: %w", args[2], err)
			}
		}
		frame, err := canbus.NewFrame(uint32(id), data)
		if err != nil {
			return err
		}

		sock, err := canbus.DialSocketCAN(canIface(args[0]))
		if err != nil {
			return canbus.RequireRootOrCapNetAdmin(err)
		}
		bus := canbus.NewLoggedBus(sock, logger, slog.LevelDebug, netutil.LogWrite)
		return multierr.Append(bus.SendFrame(frame), bus.Close())
	},
}

var canDumpCmd = &cobra.Command{
	Use:   "dump IFACE",
	Short: "Print received frames until interrupted or --count is reached",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		iface := canIface(firstArg(args))
		filters := make([]canbus.Filter, 0, len(canFilters))
		for _, s := range canFilters {
			f, err := canbus.ParseFilter(s)
			if err != nil {
				return err
			}
			filters = append(filters, f)
		}

		sock, err := canbus.DialSocketCAN(iface)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, sock.Close()) }()
		if err := sock.SetFilters(filters...); err != nil {
			return err
		}

		timeout := canTimeout
		if !cmd.Flags().Changed("timeout") {
			timeout = time.Duration(cfg.CAN.Timeout)
		}
		if timeout < 0 {
			// The loop must wake up to notice cancellation.
			timeout = time.Second
		}
		bus := canbus.NewLoggedBus(sock, logger, slog.LevelDebug, netutil.LogRead)
		ctx := cmd.Context()
		for n := 0; canCount <= 0 || n < canCount; {
			if ctx.Err() != nil {
				return nil
			}
			f, err := bus.Receive(timeout)
			if errors.Is(err, canbus.ErrTimeout) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", iface, f)
			n++
		}
		return nil
	},
}

var canVcanCmd = &cobra.Command{
	Use:   "vcan NAME",
	Short: "Create a virtual CAN interface if needed and bring it up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := canbus.EnsureVirtualInterface(args[0]); err != nil {
			return err
		}
		logger.Info("virtual CAN interface ready", "interface", args[0])
		return nil
	},
}

func canIface(arg string) string {
	if arg != "" {
		return arg
	}
	return cfg.CAN.Interface
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	canDumpCmd.Flags().DurationVar(&canTimeout, "timeout", time.Second, "receive timeout between interrupt checks")
	canDumpCmd.Flags().IntVarP(&canCount, "count", "n", 0, "exit after N frames (0 = unlimited)")
	canDumpCmd.Flags().StringSliceVarP(&canFilters, "filter", "f", nil, "receive filter <id>:<mask> or <id>~<mask> (hex, repeatable)")

	canCmd.AddCommand(canSendCmd, canDumpCmd, canVcanCmd)
	rootCmd.AddCommand(canCmd)
}
