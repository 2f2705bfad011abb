package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key of the tscanon entry in MCP client configs.
const serverName = "tscanon"

// clientDef describes where one MCP client keeps its server list.
type clientDef struct {
	ID          string
	DisplayName string
	DirMarker   string            // project dir whose presence means the client is in use
	ConfigPath  func() string     // resolved config file path
	ServersKey  string            // "servers" (VS Code) or "mcpServers" (others)
	ExtraFields map[string]string // extra fields, e.g. "type": "stdio" for VS Code
}

// Replaceable for testing.
var statFunc = os.Stat

// clientRegistry lists supported clients in display order.
var clientRegistry = []clientDef{
	{
		ID: "project", DisplayName: "Project .mcp.json",
		ConfigPath: func() string { return ".mcp.json" },
		ServersKey: "mcpServers",
	},
	{
		ID: "vscode", DisplayName: "VS Code",
		DirMarker:   ".vscode",
		ConfigPath:  func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		DirMarker:  ".cursor",
		ConfigPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude-desktop", DisplayName: "Claude Desktop",
		ConfigPath: claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

// claudeDesktopConfigPath returns the OS-specific Claude Desktop config path.
func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default: // linux
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

func newSetupCmd(_ *app) *cobra.Command {
	var targets []string
	var dir string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register `tscanon serve` with MCP clients",
		Long: `Add a tscanon server entry to MCP client config files. Without --target,
every client whose project directory (.vscode, .cursor) exists is configured,
plus the project .mcp.json. Existing tscanon entries are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeSetup(cmd.OutOrStdout(), targets, dir)
		},
	}

	ids := make([]string, len(clientRegistry))
	for i, c := range clientRegistry {
		ids[i] = c.ID
	}
	cmd.Flags().StringSliceVar(&targets, "target", nil, "clients to configure: "+strings.Join(ids, ", "))
	cmd.Flags().StringVar(&dir, "dir", ".", "directory the server scans")
	return cmd
}

// executeSetup contains the testable core logic, parameterized on output.
func executeSetup(w io.Writer, targets []string, dir string) error {
	clients, err := selectClients(targets)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		fmt.Fprintln(w, "No MCP clients detected.")
		return nil
	}

	for _, c := range clients {
		path := c.ConfigPath()
		changed, err := configureClient(c, path, dir)
		switch {
		case err != nil:
			fmt.Fprintf(w, "  ! %s: failed: %v\n", c.DisplayName, err)
		case changed:
			fmt.Fprintf(w, "  + %s configured (%s)\n", c.DisplayName, path)
		default:
			fmt.Fprintf(w, "  * %s already configured (%s)\n", c.DisplayName, path)
		}
	}
	return nil
}

// selectClients resolves --target values, or detects clients when none are
// given.
func selectClients(targets []string) ([]clientDef, error) {
	if len(targets) == 0 {
		var detected []clientDef
		for _, c := range clientRegistry {
			switch {
			case c.ID == "project":
				detected = append(detected, c)
			case c.DirMarker != "":
				if _, err := statFunc(c.DirMarker); err == nil {
					detected = append(detected, c)
				}
			}
		}
		return detected, nil
	}

	var selected []clientDef
	for _, t := range targets {
		found := false
		for _, c := range clientRegistry {
			if c.ID == t {
				selected = append(selected, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown target %q", t)
		}
	}
	return selected, nil
}

// serverEntry returns the MCP server config object for tscanon.
func serverEntry(dir string, extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "tscanon",
		"args":    []any{"serve", dir},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry reads existing JSON (or starts empty), adds a tscanon
// entry under serversKey, and returns the merged JSON bytes.
// Returns nil, nil if tscanon is already configured.
func mergeServerEntry(existing []byte, serversKey, dir string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(dir, extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureClient merges the entry into the client's config file. changed
// is false when the entry already existed.
func configureClient(c clientDef, configPath, dir string) (changed bool, err error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	}

	merged, err := mergeServerEntry(existing, c.ServersKey, dir, c.ExtraFields)
	if err != nil {
		return false, err
	}
	if merged == nil {
		return false, nil
	}
	return true, os.WriteFile(configPath, merged, 0644)
}
