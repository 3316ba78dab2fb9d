package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirtree/internal/commands"
	"github.com/temirov/dirtree/internal/output"
	"github.com/temirov/dirtree/internal/services/scan"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

const (
	progressLineFormat = "\rScanning %s: %s %s, %s %s"
	progressClearWidth = 80
)

// createScanCommand returns the scan subcommand.
func createScanCommand(app *application) *cobra.Command {
	var walkConfiguration treeOptions
	var outputFormat string
	var listItems bool

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath, err := resolveRootPath(arguments, 0)
			if err != nil {
				return err
			}
			configuration, _, err := app.resolveConfiguration(command, &walkConfiguration, rootPath)
			if err != nil {
				return err
			}
			if command.Flags().Changed(formatFlagName) {
				format, parseErr := types.ParseOutputFormat(outputFormat)
				if parseErr != nil {
					return parseErr
				}
				configuration.OutputFormat = format
			}
			return app.runScan(command, rootPath, configuration, listItems)
		},
	}

	addTreeFlags(scanCommand, &walkConfiguration)
	scanCommand.Flags().StringVarP(&outputFormat, formatFlagName, "f", string(types.FormatText), formatFlagDescription)
	registerBooleanFlag(scanCommand.Flags(), &listItems, listFlagName, false, listFlagDescription)
	return scanCommand
}

// runScan drives a scan session, printing its progress while it runs and its result when it ends.
func (app *application) runScan(command *cobra.Command, rootPath string, configuration types.Configuration, listItems bool) error {
	progress := newProgressPrinter(command.ErrOrStderr(), app.isTerminal(command.ErrOrStderr()), rootPath)

	var session *scan.Session
	producer := func(streamCtx context.Context, events chan<- scan.Event) error {
		session = commands.StartScan(streamCtx, rootPath, configuration, func(event scan.Event) {
			select {
			case events <- event:
			case <-streamCtx.Done():
			}
		}, scan.Request{})
		session.Wait()
		return nil
	}
	consumer := func(event scan.Event) error {
		switch event.Kind {
		case scan.EventKindProgress:
			progress.update(event.Progress.Files, event.Progress.Directories)
		case scan.EventKindWarning:
			app.logger.Warn(event.Message.Message, zapSession(event))
		case scan.EventKindStarted:
			app.logger.Debug("scan started", zapSession(event))
		}
		return nil
	}

	if err := dispatchEvents(command.Context(), producer, consumer); err != nil {
		return err
	}
	progress.finish()

	result := session.Result()
	if err := output.WriteScanResult(command.OutOrStdout(), result, configuration.OutputFormat, listItems); err != nil {
		return err
	}
	if !result.Success && !result.Cancelled {
		return result.Err
	}
	return nil
}

func zapSession(event scan.Event) zap.Field {
	return zap.String("session", event.SessionID)
}

// dispatchEvents runs produce and consume concurrently over an unbuffered channel.
// Cancellation of ctx is not reported as an error.
func dispatchEvents[T any](
	ctx context.Context,
	produce func(context.Context, chan<- T) error,
	consume func(T) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan T)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// progressPrinter rewrites a single status line on a terminal and stays silent elsewhere.
type progressPrinter struct {
	writer  io.Writer
	enabled bool
	label   string
	printed bool
	style   *color.Color
}

func newProgressPrinter(writer io.Writer, enabled bool, rootPath string) *progressPrinter {
	return &progressPrinter{
		writer:  writer,
		enabled: enabled,
		label:   rootPath,
		style:   color.New(color.FgCyan),
	}
}

func (printer *progressPrinter) update(filesScanned int, directoriesScanned int) {
	if !printer.enabled {
		return
	}
	printer.style.Fprintf(printer.writer, progressLineFormat,
		printer.label,
		utils.FormatCount(filesScanned), utils.Pluralize(filesScanned, "file", "files"),
		utils.FormatCount(directoriesScanned), utils.Pluralize(directoriesScanned, "directory", "directories"))
	printer.printed = true
}

// finish erases the status line.
func (printer *progressPrinter) finish() {
	if !printer.enabled || !printer.printed {
		return
	}
	fmt.Fprint(printer.writer, "\r"+strings.Repeat(" ", progressClearWidth)+"\r")
	printer.printed = false
}
