// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: Link, status, manual sync, and wipe for the kv store backend

package charm

import (
	"flag"
	"fmt"
)

// SyncLinkCommand links this device to a Charm account.
// Charm authenticates with SSH keys, so linking is just a first sync.
func SyncLinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("kv link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)

	return nil
}

// SyncStatusCommand shows current sync configuration and key count.
func SyncStatusCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("kv status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Println("Charm Sync Status")
	fmt.Println("─────────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)
	fmt.Printf("Offline:   %v\n", cfg.Offline)

	if id, err := c.ID(); err != nil {
		fmt.Println("\nStatus: Not connected")
	} else {
		fmt.Println("\nStatus: Connected to Charm Cloud")
		fmt.Printf("ID:        %s\n", id)
	}

	if keys, err := c.Keys(); err == nil {
		fmt.Printf("Keys:      %d\n", len(keys))
	}

	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("kv sync", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	_ = fs.Parse(args)

	if *verbose {
		fmt.Println("Syncing with server...")
	}

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println("✓ Synced")
	return nil
}

// SyncWipeCommand deletes every record in the KV store.
func SyncWipeCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("kv wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This will delete ALL local data!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  dealboard kv wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	fmt.Println("✓ All data wiped")
	return nil
}
