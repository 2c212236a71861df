package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/pkg/fintrack"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long: `Sign in with Google.

Opens the Google consent screen in your browser. Because the terminal has no
window to receive the completion message, the completion page shows the
session ID instead; paste it back here to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx := cmd.Context()
		window := &terminalWindow{
			origin: serverURL,
			in:     cmd.InOrStdin(),
			out:    cmd.OutOrStdout(),
		}
		bridge := fintrack.NewBridge(app.api, window, serverURL, app.cache, func() {
			if err := app.resolve(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		})

		ok, err := bridge.BeginLogin(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Login not completed.")
			return nil
		}
		if profile := app.syncer.Profile(); profile != nil {
			fmt.Printf("Signed in as %s <%s>\n", profile.Name, profile.Email)
		} else {
			fmt.Println("Signed in.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		bridge := fintrack.NewBridge(app.api, nil, serverURL, app.cache, func() {})
		if err := bridge.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		profile, err := app.api.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		if profile == nil {
			fmt.Println("Not signed in. Transactions are kept in the local cache.")
			return nil
		}
		fmt.Printf("%s <%s>\n", profile.Name, profile.Email)
		return nil
	},
}

// terminalWindow adapts the popup login flow to a terminal: the consent URL
// opens in the system browser, and the session ID shown on the completion
// page is read back from stdin in place of a cross-window message.
type terminalWindow struct {
	origin string
	in     io.Reader
	out    io.Writer
}

func (w *terminalWindow) Open(url string) (fintrack.Popup, <-chan fintrack.Message, error) {
	fmt.Fprintf(w.out, "Open this URL in your browser to sign in:\n\n  %s\n\n", url)
	openBrowser(url)
	fmt.Fprint(w.out, "Paste the session ID shown after signing in: ")

	popup := &terminalPopup{closed: make(chan struct{})}
	messages := make(chan fintrack.Message, 1)
	go func() {
		defer close(messages)
		scanner := bufio.NewScanner(w.in)
		if scanner.Scan() {
			if id := strings.TrimSpace(scanner.Text()); id != "" {
				messages <- fintrack.Message{
					Origin:    w.origin,
					Type:      fintrack.SuccessMessageType,
					SessionID: id,
				}
				return
			}
		}
		close(popup.closed)
	}()
	return popup, messages, nil
}

type terminalPopup struct {
	closed chan struct{}
}

func (p *terminalPopup) Closed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *terminalPopup) Close() {}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	// Best effort: the URL is printed above either way.
	_ = cmd.Start()
}
