package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/vesperhq/vesper/internal/gateway"
)

var (
	skillNameStyle = lipgloss.NewStyle().Bold(true)
	enabledStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	failureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	intentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	gatewayFlag := &cli.StringFlag{
		Name:  "gateway",
		Usage: "Gateway base URL",
		Value: "http://127.0.0.1:18520",
	}
	return &cli.Command{
		Name:  "skills",
		Usage: "List and toggle skills",
		Flags: []cli.Flag{gatewayFlag},
		Commands: []*cli.Command{
			{
				Name:      "enable",
				Usage:     "Enable a skill",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{gatewayFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return toggleSkill(ctx, cmd, true)
				},
			},
			{
				Name:      "disable",
				Usage:     "Disable a skill",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{gatewayFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return toggleSkill(ctx, cmd, false)
				},
			},
		},
		Action: runSkillsList,
	}
}

func runSkillsList(ctx context.Context, cmd *cli.Command) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		cmd.String("gateway")+"/api/skills", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}

	var list gateway.SkillList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decode skills: %w", err)
	}

	if len(list.Skills) == 0 {
		fmt.Println("No skills loaded.")
	}
	names := make([]string, 0, len(list.Skills))
	for name := range list.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := list.Skills[name]
		state := enabledStyle.Render("enabled")
		if !s.Enabled {
			state = disabledStyle.Render("disabled")
		}
		fmt.Printf("%s  [%s]\n", skillNameStyle.Render(name), state)
		if s.Description != "" {
			fmt.Printf("    %s\n", s.Description)
		}
		if len(s.Intents) > 0 {
			fmt.Printf("    %s\n", intentStyle.Render(strings.Join(s.Intents, ", ")))
		}
	}

	if len(list.Failures) > 0 {
		fmt.Println()
		fmt.Println(failureStyle.Render("Failed to load:"))
		for name, reason := range list.Failures {
			fmt.Printf("  %s: %s\n", skillNameStyle.Render(name), reason)
		}
	}
	return nil
}

func toggleSkill(ctx context.Context, cmd *cli.Command, enabled bool) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: vesper skills %s <name>",
			map[bool]string{true: "enable", false: "disable"}[enabled])
	}

	body, err := json.Marshal(map[string]bool{"enabled": enabled})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cmd.String("gateway")+"/api/skills/"+name, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}

	if enabled {
		fmt.Printf("Skill %s enabled.\n", name)
	} else {
		fmt.Printf("Skill %s disabled.\n", name)
	}
	return nil
}
