package system

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/dayglow/internal/cli"
	"github.com/julianstephens/dayglow/internal/keyring"
)

var stdin io.Reader = os.Stdin

type TokenCmd struct {
	Set    TokenSetCmd    `cmd:"" help:"Store the API token in the OS keyring."`
	Status TokenStatusCmd `cmd:"" help:"Show whether an API token is stored."`
	Delete TokenDeleteCmd `cmd:"" help:"Remove the API token from the OS keyring."`
}

// TokenSetCmd stores the API token used for backend requests
type TokenSetCmd struct {
	Token string `arg:"" optional:"" help:"API token. Read from the terminal or stdin when omitted."`
}

func (cmd *TokenSetCmd) Run(app *cli.Context) error {
	token := cmd.Token
	if token == "" {
		var err error
		if token, err = readToken(); err != nil {
			return err
		}
	}

	if err := keyring.SetToken(token); err != nil {
		return fmt.Errorf("failed to store API token: %w", err)
	}
	app.Println(cli.OK("API token stored in OS keyring"))
	return nil
}

func readToken() (string, error) {
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		var token string
		err := huh.NewInput().
			Title("API token").
			EchoMode(huh.EchoModePassword).
			Value(&token).
			Run()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return token, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

type TokenStatusCmd struct{}

func (cmd *TokenStatusCmd) Run(app *cli.Context) error {
	if !keyring.IsAvailable() {
		app.Println(cli.Fail("OS keyring is not available on this system"))
		return errors.New("keyring unavailable")
	}
	if keyring.HasToken() {
		app.Println(cli.OK("API token is stored in keyring"))
	} else {
		app.Println("ℹ No API token stored in keyring")
	}
	return nil
}

type TokenDeleteCmd struct{}

func (cmd *TokenDeleteCmd) Run(app *cli.Context) error {
	if err := keyring.DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API token found in keyring")
		}
		return fmt.Errorf("failed to delete API token: %w", err)
	}
	app.Println(cli.OK("API token deleted from OS keyring"))
	return nil
}
