package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedocx <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the invoice HTTP API")
	fmt.Fprintln(w, "  render     Render one request JSON to DOCX or PDF")
	fmt.Fprintln(w, "  doctor     Check converters, template, and environment")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'invoicedocx help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

func printConversionFlags(w io.Writer) {
	fmt.Fprintln(w, "      --backend <s>         PDF backend: soffice, chrome")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent conversions (0 = auto)")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedocx serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  GET  /                  Service info")
	fmt.Fprintln(w, "  GET  /health            Liveness probe")
	fmt.Fprintln(w, "  POST /generate-invoice  Render an invoice")
	fmt.Fprintln(w, "  GET  /metrics           Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --host <s>            Listen host")
	fmt.Fprintln(w, "  -p, --port <n>            Listen port (env PORT honored)")
	printConversionFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedocx render [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one request body offline, as POST /generate-invoice would.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -i, --input <path>        Request JSON file (- = stdin)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: invoice filename)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: docx, pdf")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	printConversionFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  General error")
	fmt.Fprintln(w, "  2  Invalid flags, config, or request")
	fmt.Fprintln(w, "  3  Cannot read request or write output")
	fmt.Fprintln(w, "  4  PDF conversion failed or timed out")
	fmt.Fprintln(w, "  5  Overlay images could not be fetched")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedocx doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the configured template loads and the converters are installed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  Ready (warnings allowed)")
	fmt.Fprintln(w, "  1  Errors found")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedocx config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after defaults, file, and environment are applied.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
}

func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  INVOICEDOCX_CONFIG, INVOICEDOCX_HOST, INVOICEDOCX_PORT (or PORT),")
	fmt.Fprintln(w, "  INVOICEDOCX_RATE_LIMIT, INVOICEDOCX_LOG_LEVEL, INVOICEDOCX_TEMPLATE_DIR,")
	fmt.Fprintln(w, "  INVOICEDOCX_TEMPLATE_NAME, INVOICEDOCX_STAMP_URL, INVOICEDOCX_SIGNATURE_URL,")
	fmt.Fprintln(w, "  INVOICEDOCX_STRICT_LATE_FEE, INVOICEDOCX_BACKEND, INVOICEDOCX_CONVERTER_BIN,")
	fmt.Fprintln(w, "  INVOICEDOCX_TIMEOUT, INVOICEDOCX_WORKERS")
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version", "help":
		printUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
