package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const helpTemplate = `testmate - AI software testing tutor in your terminal

USAGE
  testmate [command] [flags]

COMMANDS
  shell [--at <screen>]              Interactive session (default), optionally opening a screen
  login                              Sign in with GitHub
  logout                             Sign out and forget the stored token
  whoami                             Show the signed-in user
  health                             Check the backend and the code generator
  generate [description]             Generate test code (Level 1)
      -f, --file <path>              Use a scenario file instead of the description
      --at <time>                    Wait until 15:04, 2006-01-02 15:04 or +30m
  repos                              List your GitHub repositories
  tree <owner/repo>                  Show a repository's file tree
  analyze <owner/repo>               Analyze a repository's testing practice
      --file <path>                  Limit the work to a file (repeatable)
      --improve                      Recommend improvements instead
      --ask <question>               Ask a question instead
      --test <request>               Generate a test instead
  version                            Show version, commit, build date

FLAGS
  Backend:
    --api-url <url>                  Base URL of the backend (default: http://localhost:8000)
    --timeout <seconds>              Timeout of regular backend calls (default: 10)
    --generation-timeout <seconds>   Timeout of AI generation calls (default: 150)

  Local State:
    --state-dir <path>               Directory holding session.json (default: ~/.testmate)
    --log-file <path>                Write a JSON request log to this file
    --config <path>                  Path to additional config file

  Login:
    --callback-addr <host:port>      Local sign-in callback listener (default: localhost:3000)
    --no-browser                     Print the sign-in URL instead of opening a browser

  Output:
    -o, --output <text|json|yaml>    Output format (default: text)
    -v, --verbose                    Show debug output

  Help & Version:
    -h, --help                       Show this help text
    --version                        Show version, commit, build date

CONFIGURATION
  Defaults < ~/.config/testmate/config < .testmate/config < --config
  < TESTMATE_* environment < flags. Files use KEY=VALUE lines.

EXIT CODES
  0   Success              Command completed
  1   Error                Invalid arguments, misconfiguration, server error
  2   Unauthorized         Not signed in or token rejected
  3   Unavailable          Backend or generator down or unreachable
  4   Timeout              Backend call timed out
  5   Validation           Input rejected before any request was sent
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Start the interactive tutor
  testmate

  # Sign in, then list repositories as JSON
  testmate login
  testmate repos -o json

  # Generate a test from a description or a scenario file
  testmate generate "login fails with a wrong password"
  testmate generate --file scenario.md

  # Generate later, when the model server is up
  testmate generate --at 09:00 "checkout applies the discount"

  # Analyze one repository with a longer timeout
  testmate analyze octo/shop --generation-timeout 300
`

// SetCustomHelp makes root print the full help text while subcommands keep
// cobra's generated help.
func SetCustomHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), helpTemplate)
	})
}
