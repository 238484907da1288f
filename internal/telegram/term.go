package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"
)

// termAuth prompts on the terminal for whatever the auth flow still needs:
// phone number (unless configured), login code, 2FA password.
type termAuth struct {
	phone string
	in    *bufio.Reader
	out   *os.File
}

func newTermAuth(phone string) termAuth {
	return termAuth{
		phone: phone,
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stderr,
	}
}

func (a termAuth) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a termAuth) Phone(_ context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.prompt("Enter phone number (international format): ")
}

func (a termAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt("Enter the code you received: ")
}

func (a termAuth) Password(_ context.Context) (string, error) {
	fmt.Fprint(a.out, "Enter 2FA password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (a termAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a termAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("signing up new accounts is not supported")
}
