package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-invoicedocx"
	"github.com/alnah/go-invoicedocx/internal/assets"
	"github.com/alnah/go-invoicedocx/internal/config"
	"github.com/alnah/go-invoicedocx/internal/fileutil"
	"github.com/alnah/go-invoicedocx/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Backend  string     `json:"backend"`
	Template toolInfo   `json:"template"`
	Soffice  toolInfo   `json:"soffice"`
	Pandoc   toolInfo   `json:"pandoc"`
	Chrome   toolInfo   `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds one dependency check result.
type toolInfo struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printDoctorUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "invoicedocx doctor: %v\n", err)
		return ExitUsage
	}
	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "invoicedocx doctor: %v%s\n", err, errorHint(err, env.Getenv))
		return exitCodeFor(err)
	}

	result := runDoctor(cfg, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	backend, err := invoicedocx.ParseBackend(cfg.Conversion.Backend)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		backend = invoicedocx.BackendSoffice
	}
	result.Backend = string(backend)

	checkTemplate(result, cfg)
	checkConverters(result, cfg, backend, env)
	checkEnvironment(result, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkTemplate loads and validates the configured template.
func checkTemplate(result *doctorResult, cfg *config.Config) {
	name := cfg.Template.Name
	if name == "" {
		name = assets.DefaultTemplateName
	}
	result.Template.Path = name
	if cfg.Template.Dir != "" {
		result.Template.Path = filepath.Join(cfg.Template.Dir, name+".docx")
	}

	resolver, err := assets.NewTemplateResolver(cfg.Template.Dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template directory: %v", err))
		return
	}
	data, err := resolver.LoadTemplate(name)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template %q: %v", name, err))
		return
	}
	if err := assets.ValidateTemplate(data); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template %q: %v", name, err))
		return
	}
	result.Template.Found = true
}

// checkConverters locates the external tools. Tools the selected backend
// needs are errors when missing; the others are warnings.
func checkConverters(result *doctorResult, cfg *config.Config, backend invoicedocx.Backend, env *Environment) {
	sofficeBin, pandocBin := "soffice", "pandoc"
	if cfg.Conversion.Binary != "" {
		if backend == invoicedocx.BackendChrome {
			pandocBin = cfg.Conversion.Binary
		} else {
			sofficeBin = cfg.Conversion.Binary
		}
	}

	report := func(info *toolInfo, name string, needed bool, hint string) {
		if info.Found {
			return
		}
		msg := fmt.Sprintf("%s not found. %s", name, hint)
		if needed {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+" (only needed by the other backend)")
		}
	}

	if p, err := env.LookPath(sofficeBin); err == nil {
		result.Soffice = toolInfo{Found: true, Path: p}
	}
	report(&result.Soffice, "LibreOffice (soffice)", backend == invoicedocx.BackendSoffice,
		"Install LibreOffice or set conversion.binary")

	if p, err := env.LookPath(pandocBin); err == nil {
		result.Pandoc = toolInfo{Found: true, Path: p}
	}
	report(&result.Pandoc, "pandoc", backend == invoicedocx.BackendChrome,
		"Install pandoc or set conversion.binary")

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		chromePath, _ = env.LookChrome()
	}
	if chromePath != "" && fileutil.FileExists(chromePath) {
		result.Chrome = toolInfo{Found: true, Path: chromePath}
	}
	report(&result.Chrome, "Chrome/Chromium", backend == invoicedocx.BackendChrome,
		"Install Chrome or set ROD_BROWSER_BIN")
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = hints.InContainer(env.Getenv)
	result.Env.CI = hints.InCI(env.Getenv)

	if result.Backend == string(invoicedocx.BackendChrome) &&
		(result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory conversions work in.
func checkSystem(result *doctorResult) {
	dir, cleanup, err := fileutil.TempDir("invoicedocx-doctor")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	defer cleanup()
	if _, err := fileutil.WriteTempFile(dir, "probe", "docx", []byte("PK")); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", dir))
		return
	}
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "invoicedocx doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Template")
	printTool(w, r.Template, "Loaded "+r.Template.Path)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Conversion (backend: %s)\n", r.Backend)
	printTool(w, r.Soffice, "soffice at "+r.Soffice.Path)
	printTool(w, r.Pandoc, "pandoc at "+r.Pandoc.Path)
	printTool(w, r.Chrome, "Chrome at "+r.Chrome.Path)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printTool(w io.Writer, info toolInfo, okLine string) {
	if info.Found {
		fmt.Fprintf(w, "  [OK] %s\n", okLine)
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
}
