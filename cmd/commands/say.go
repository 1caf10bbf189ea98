package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/vesperhq/vesper/internal/skills"
)

// NewSayCommand returns the say subcommand.
func NewSayCommand() *cli.Command {
	return &cli.Command{
		Name:      "say",
		Usage:     "Send a command to the assistant and print the reply",
		ArgsUsage: "<command text>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gateway",
				Usage: "Gateway base URL",
				Value: "http://127.0.0.1:18520",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Response timeout in seconds",
				Value: 60,
			},
		},
		Action: runSay,
	}
}

func runSay(ctx context.Context, cmd *cli.Command) error {
	text := cmd.Args().First()
	if text == "" {
		return fmt.Errorf("usage: vesper say <command text>")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cmd.Int("timeout"))*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cmd.String("gateway")+"/api/command", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var reply skills.Reply
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		// No gateway running: handle the command in-process instead.
		slog.Debug("gateway unreachable, running in-process", "error", err)
		reply, err = sayInProcess(ctx, cmd, text)
		if err != nil {
			return err
		}
	} else {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gateway returned %s", resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
	}

	fmt.Println(reply.Message)
	if reply.DisplayType == skills.DisplayList {
		if items, ok := reply.DisplayData.([]any); ok {
			for _, item := range items {
				fmt.Printf("  - %v\n", item)
			}
		}
	}
	if !reply.OK {
		return fmt.Errorf("command failed")
	}
	return nil
}

func sayInProcess(ctx context.Context, cmd *cli.Command, text string) (skills.Reply, error) {
	cfg := loadConfig(cmd)
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return skills.Reply{}, err
	}
	defer rt.Close(context.Background())

	return rt.Assistant.HandleText(ctx, text), nil
}
