package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/GonxKZ/disksense64-sub000/pkg/cmd"
	"github.com/GonxKZ/disksense64-sub000/pkg/contextutil"
	"github.com/GonxKZ/disksense64-sub000/pkg/dedupe"
	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/lsm"
)

func parseAction(name string) (dedupe.Action, error) {
	switch name {
	case "simulate":
		return dedupe.ActionSimulate, nil
	case "hardlink":
		return dedupe.ActionHardlink, nil
	case "move":
		return dedupe.ActionTrash, nil
	case "delete":
		return dedupe.ActionUnlink, nil
	default:
		return 0, errors.Errorf("unknown action %q (expected simulate, hardlink, move, or delete)", name)
	}
}

func dedupeMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("exactly one directory argument is required")
	}
	root := arguments[0]

	action, err := parseAction(dedupeConfiguration.action)
	if err != nil {
		return err
	}

	indexPath, err := filesystem.DefaultIndexPath(false)
	if err != nil {
		return errors.Wrap(err, "unable to determine index location")
	}

	logger := logging.RootLogger.Sublogger("dedupe")
	index, err := lsm.Open(indexPath, lsm.DefaultMemTableSize, logger)
	if err != nil {
		return errors.Wrap(err, "unable to open index (run 'disksense scan' first)")
	}
	defer index.Close()

	ctx, stop := cmd.InterruptContext()
	defer stop()

	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(err, "unable to resolve directory")
	}

	options := dedupe.Options{
		Action:      action,
		MinFileSize: dedupeConfiguration.minSize,
		Root:        absoluteRoot,
	}

	printer := &cmd.StatusLinePrinter{}
	printer.Print("Scanning index for duplicates...")

	deduplicator := dedupe.New(index, logger)
	groups, err := deduplicator.FindDuplicates(options)
	printer.Clear()
	if err != nil {
		return errors.Wrap(err, "duplicate scan failed")
	}

	var potential uint64
	for _, g := range groups {
		potential += g.PotentialSavings()
	}
	fmt.Printf("Found %d duplicate group(s), %s potentially reclaimable\n", len(groups), humanize.Bytes(potential))

	if action == dedupe.ActionSimulate || len(groups) == 0 {
		return nil
	}

	// A long find-duplicates pass against a large index can take a while;
	// honor an interrupt that arrived during it instead of applying
	// destructive actions the user already asked to cancel.
	if contextutil.IsCancelled(ctx) {
		fmt.Println("Cancelled before applying changes")
		return nil
	}

	stats, err := deduplicator.Deduplicate(groups, options)
	if err != nil {
		return errors.Wrap(err, "deduplicate failed")
	}

	fmt.Printf(
		"Actual savings: %s (%d hardlinks created)\n",
		humanize.Bytes(stats.ActualSavings),
		stats.HardlinksCreated,
	)
	return nil
}

var dedupeCommand = &cobra.Command{
	Use:   "dedupe <directory>",
	Short: "Find and optionally coalesce duplicate files under a directory",
	Args:  cobra.ExactArgs(1),
	Run:   cmd.Mainify(dedupeMain),
}

var dedupeConfiguration struct {
	help    bool
	action  string
	minSize uint64
}

func init() {
	flags := dedupeCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&dedupeConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVar(&dedupeConfiguration.action, "action", "simulate", "Action to apply: simulate, hardlink, move, or delete")
	flags.Uint64Var(&dedupeConfiguration.minSize, "min-size", 1024, "Minimum file size, in bytes, to consider")
}
