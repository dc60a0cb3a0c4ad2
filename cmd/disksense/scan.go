package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/GonxKZ/disksense64-sub000/pkg/cmd"
	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/lsm"
	"github.com/GonxKZ/disksense64-sub000/pkg/scan"
	"github.com/GonxKZ/disksense64-sub000/pkg/timeutil"
)

// periodicFlushInterval bounds how much of a long scan is lost if the
// process is killed uncleanly (power loss, SIGKILL) rather than interrupted
// through the normal cancellation path.
const periodicFlushInterval = 30 * time.Second

func scanMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("exactly one directory argument is required")
	}
	root := arguments[0]

	indexPath, err := filesystem.DefaultIndexPath(true)
	if err != nil {
		return errors.Wrap(err, "unable to determine index location")
	}

	logger := logging.RootLogger.Sublogger("scan")
	index, err := lsm.Open(indexPath, lsm.DefaultMemTableSize, logger)
	if err != nil {
		return errors.Wrap(err, "unable to open index")
	}
	defer index.Close()

	ctx, stop := cmd.InterruptContext()
	defer stop()

	scanner := scan.New(logger)
	go func() {
		<-ctx.Done()
		scanner.Cancel()
	}()

	// File count isn't known ahead of a recursive walk, so the bar runs in
	// spinner mode (-1) and just reflects throughput rather than percentage.
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	var count, failed int
	options := scan.Options{
		ComputeHeadTail: true,
		ComputeFullHash: false,
		UseMftReader:    scanConfiguration.useMftReader,
	}

	flushTimer := time.NewTimer(periodicFlushInterval)
	flushStop := make(chan struct{})
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		for {
			select {
			case <-flushTimer.C:
				if err := index.Flush(); err != nil {
					logger.Warnf("periodic flush failed: %s", err)
				}
				flushTimer.Reset(periodicFlushInterval)
			case <-flushStop:
				return
			}
		}
	}()
	defer func() {
		close(flushStop)
		timeutil.StopAndDrainTimer(flushTimer)
		<-flushDone
	}()

	err = scanner.Scan(root, options, func(event scan.Event) {
		if putErr := index.Put(event.Entry); putErr != nil {
			failed++
			logger.Warnf("unable to index %s: %s", event.Entry.FullPath, putErr)
			return
		}
		count++
		bar.Add(1)
	})
	bar.Finish()

	if err != nil && err != scan.ErrCancelled {
		return errors.Wrap(err, "scan failed")
	}

	if flushErr := index.Flush(); flushErr != nil {
		return errors.Wrap(flushErr, "unable to flush index")
	}

	if err == scan.ErrCancelled {
		fmt.Printf("Scan cancelled after %d files (%d failed to index)\n", count, failed)
		return nil
	}

	fmt.Printf("Scan complete: %d files indexed (%d failed to index)\n", count, failed)
	return nil
}

var scanCommand = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Recursively scan a directory and add its files to the index",
	Args:  cobra.ExactArgs(1),
	Run:   cmd.Mainify(scanMain),
}

var scanConfiguration struct {
	help         bool
	useMftReader bool
}

func init() {
	flags := scanCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&scanConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVar(&scanConfiguration.useMftReader, "use-mft", false, "Request master file table enumeration; no MFT reader is built in, so the scan always uses a normal directory walk")
}
