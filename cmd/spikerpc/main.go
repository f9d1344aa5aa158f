// Command spikerpc is an RPC client for the gateway's client-facing port:
// it lists, uploads, moves, removes, and starts programs stored on the
// hub, and drives the 5x5 LED matrix, per spec §6 and
// original_source/tools/spikejsonrpc.py's handle_* functions.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	gwlog "github.com/ckumpe/robot-inventor-tools/pkg/log"
	"github.com/ckumpe/robot-inventor-tools/pkg/rpcclient"
	"github.com/urfave/cli/v3"
)

const defaultGatewayAddr = "localhost:8888"

func main() {
	app := &cli.Command{
		Name:  "spikerpc",
		Usage: "control a LEGO hub through the gateway's RPC port",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "gateway client address", Value: defaultGatewayAddr},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			gwlog.SetGlobalDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "list stored programs",
				Action:  withClient(handleList),
			},
			{
				Name:   "fwinfo",
				Usage:  "show firmware version",
				Action: withClient(handleFwinfo),
			},
			{
				Name:   "time",
				Usage:  "get hub time",
				Action: withClient(handleTime),
			},
			{
				Name:      "mv",
				Usage:     "change a program's slot",
				ArgsUsage: "<from_slot> <to_slot>",
				Action:    withClient(handleMove),
			},
			{
				Name:      "upload",
				Aliases:   []string{"cp"},
				Usage:     "upload a program",
				ArgsUsage: "<file> <to_slot> [name]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "start", Aliases: []string{"s"}, Usage: "start the program after upload"},
				},
				Action: withClient(handleUpload),
			},
			{
				Name:      "rm",
				Usage:     "remove the program at a given slot",
				ArgsUsage: "<from_slot>",
				Action:    withClient(handleRemove),
			},
			{
				Name:      "start",
				Usage:     "start a program",
				ArgsUsage: "<slot>",
				Action:    withClient(handleStart),
			},
			{
				Name:   "stop",
				Usage:  "stop program execution",
				Action: withClient(handleStop),
			},
			{
				Name:  "display",
				Usage: "control the 5x5 LED matrix",
				Commands: []*cli.Command{
					{
						Name:      "image",
						Usage:     "display a still image, format xxxxx:xxxxx:xxxxx:xxxxx:xxxxx (0-9 per pixel)",
						ArgsUsage: "<image>",
						Action:    withClient(handleDisplayImage),
					},
					{
						Name:      "text",
						Usage:     "scroll text across the display",
						ArgsUsage: "<text>",
						Action:    withClient(handleDisplayText),
					},
					{
						Name:   "clear",
						Usage:  "clear the display",
						Action: withClient(handleDisplayClear),
					},
					{
						Name:      "setpixel",
						Usage:     "set one pixel's brightness (0-9, default 9)",
						ArgsUsage: "<x> <y> [brightness]",
						Action:    withClient(handleSetPixel),
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// withClient dials the gateway before the subcommand runs and closes the
// connection afterward, so every handler below only deals with the
// already-connected *rpcclient.Client.
func withClient(fn func(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		rpc, err := rpcclient.Dial(c.String("addr"))
		if err != nil {
			return fmt.Errorf("connecting to gateway: %w", err)
		}
		defer rpc.Close()
		return fn(ctx, c, rpc)
	}
}

func handleList(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	raw, err := rpc.GetStorageStatus()
	if err != nil {
		return err
	}
	var info struct {
		Storage struct {
			Free  int64  `json:"free"`
			Total int64  `json:"total"`
			Unit  string `json:"unit"`
		} `json:"storage"`
		Slots map[string]struct {
			Name      string `json:"name"`
			Size      int64  `json:"size"`
			Modified  int64  `json:"modified"`
			ProjectID string `json:"project_id"`
			Type      string `json:"type"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return fmt.Errorf("decoding storage status: %w", err)
	}

	fmt.Printf("%4s %-40s %6s %-20s %-12s %-10s\n", "Slot", "Decoded Name", "Size", "Last Modified", "Project_id", "Type")
	for i := 0; i < 20; i++ {
		sl, ok := info.Slots[fmt.Sprint(i)]
		if !ok {
			continue
		}
		modified := time.UnixMilli(sl.Modified).UTC().Format("2006-01-02 15:04:05")
		decodedName := sl.Name
		if decoded, err := base64.StdEncoding.DecodeString(sl.Name); err == nil {
			decodedName = string(decoded)
		}
		project := sl.ProjectID
		if project == "" {
			project = " "
		}
		typ := sl.Type
		if typ == "" {
			typ = " "
		}
		fmt.Printf("%4d %-40s %5db %-20s %-12s %-10s\n", i, decodedName, sl.Size, modified, project, typ)
	}
	fmt.Printf("Storage free %d%s of total %d%s\n", info.Storage.Free, info.Storage.Unit, info.Storage.Total, info.Storage.Unit)
	return nil
}

func handleFwinfo(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	raw, err := rpc.GetHubInfo()
	if err != nil {
		return err
	}
	var info struct {
		Version []int `json:"version"`
		Runtime []int `json:"runtime"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return fmt.Errorf("decoding hub info: %w", err)
	}
	fmt.Printf("Firmware version: %s; Runtime version: %s\n", joinInts(info.Version), joinInts(info.Runtime))
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ".")
}

func handleTime(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	_, err := rpc.SendMessage("storage_status", nil)
	return err
}

func handleMove(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	from, to, err := twoSlotArgs(c)
	if err != nil {
		return err
	}
	_, err = rpc.MoveProject(from, to)
	return err
}

func handleUpload(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	args := c.Args()
	if args.Len() < 2 {
		return fmt.Errorf("usage: upload <file> <to_slot> [name]")
	}
	file := args.Get(0)
	slot, err := parseSlot(args.Get(1))
	if err != nil {
		return err
	}
	name := ""
	if args.Len() >= 3 {
		name = args.Get(2)
	}
	return rpc.Upload(file, slot, name, c.Bool("start"), time.Now().UnixMilli())
}

func handleRemove(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	slot, err := oneSlotArg(c)
	if err != nil {
		return err
	}
	_, err = rpc.RemoveProject(slot)
	return err
}

func handleStart(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	slot, err := oneSlotArg(c)
	if err != nil {
		return err
	}
	_, err = rpc.ProgramExecute(slot)
	return err
}

func handleStop(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	_, err := rpc.ProgramTerminate()
	return err
}

func handleDisplayImage(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: display image <image>")
	}
	_, err := rpc.DisplayImage(c.Args().Get(0))
	return err
}

func handleDisplayText(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: display text <text>")
	}
	_, err := rpc.DisplayText(c.Args().Get(0))
	return err
}

func handleDisplayClear(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	_, err := rpc.DisplayClear()
	return err
}

func handleSetPixel(ctx context.Context, c *cli.Command, rpc *rpcclient.Client) error {
	args := c.Args()
	if args.Len() < 2 {
		return fmt.Errorf("usage: display setpixel <x> <y> [brightness]")
	}
	x, err := parseSlot(args.Get(0))
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := parseSlot(args.Get(1))
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	brightness := 9
	if args.Len() >= 3 {
		brightness, err = parseSlot(args.Get(2))
		if err != nil {
			return fmt.Errorf("invalid brightness: %w", err)
		}
	}
	_, err = rpc.DisplaySetPixel(x, y, brightness)
	return err
}

func oneSlotArg(c *cli.Command) (int, error) {
	if c.Args().Len() < 1 {
		return 0, fmt.Errorf("a slot number is required")
	}
	return parseSlot(c.Args().Get(0))
}

func twoSlotArgs(c *cli.Command) (int, int, error) {
	if c.Args().Len() < 2 {
		return 0, 0, fmt.Errorf("usage: mv <from_slot> <to_slot>")
	}
	from, err := parseSlot(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}
	to, err := parseSlot(c.Args().Get(1))
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func parseSlot(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
