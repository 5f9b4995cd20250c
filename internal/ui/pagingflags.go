package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Paging holds the pagination flags of a listing command.
type Paging struct {
	PageSize int  // 0 uses the configured page size
	Page     int  // -1 iterates from the start
	All      bool // iterate every page instead of stopping after one
}

// AddPagingFlags adds the standard pagination flags to a command.
func AddPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page-size", 0, "Number of results per request (default from configuration)")
	cmd.Flags().Int("page", -1, "Fetch only this page, counting from 0")
	cmd.Flags().Bool("all", false, "Fetch all results across all pages")
}

// ParsePagingFlags extracts pagination settings from command flags.
func ParsePagingFlags(cmd *cobra.Command) (Paging, error) {
	size, err := cmd.Flags().GetInt("page-size")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing page-size flag: %w", err)
	}
	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing page flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return Paging{}, fmt.Errorf("error parsing all flag: %w", err)
	}

	if size < 0 {
		return Paging{}, fmt.Errorf("--page-size must not be negative, got %d", size)
	}
	if all && page >= 0 {
		return Paging{}, fmt.Errorf("--all and --page cannot be combined")
	}
	return Paging{PageSize: size, Page: page, All: all}, nil
}
