/*
Package cli provides helpers shared by the tokengate commands.

Output Formatting:

Commands accept --output table|json. Table output uses go-pretty and requires
the data to implement Tabular:

	format, err := cli.ParseOutputFormat(flag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, report)

Signal Handling:

	ctx, cancel := cli.SetupSignalHandler(context.Background())
	defer cancel()

SIGHUP triggers a configuration reload in `tokengate run`:

	reloads, stop := cli.ReloadSignals()
	defer stop()

Exit Codes:

ExitCode maps a command error to the process exit code: 2 for
configuration errors, 1 for anything else.
*/
package cli
