package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passed to extensions.
const (
	EnvConfigFile = "CARTERA_CONFIG"
	EnvTrades     = "CARTERA_TRADES"
	EnvQuotes     = "CARTERA_QUOTES"
	EnvRates      = "CARTERA_RATES"
	EnvVerbose    = "CARTERA_VERBOSE"
)

// RunExtension attempts to find and execute an external valuar-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath("valuar-" + subcommand)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv passes the global flags as environment variables. File paths
// are only set when given on the command line, so that the configuration of
// the extension applies otherwise.
func extensionEnv() []string {
	env := []string{
		EnvConfigFile + "=" + *configFile,
		EnvVerbose + "=" + strconv.FormatBool(*Verbose),
	}
	for name, value := range map[string]string{EnvTrades: *tradesFile, EnvQuotes: *quotesFile, EnvRates: *ratesFile} {
		if value != "" {
			env = append(env, name+"="+value)
		}
	}
	return env
}
