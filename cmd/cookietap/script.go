package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
)

const (
	cmdSet           = "set"
	cmdSetAsync      = "set-async"
	cmdGet           = "get"
	cmdHas           = "has"
	cmdRemoveSession = "remove-session"
	cmdRemoveAll     = "remove-all"
	cmdRemoveExpired = "remove-expired"
	cmdFlush         = "flush"
	cmdAccept        = "accept"
)

var ErrUnknownCommand = errors.New("unknown script command")
var ErrMissingArgument = errors.New("missing script argument")
var ErrUnexpectedArgument = errors.New("unexpected script argument")
var ErrCommandFailed = errors.New("script command failed")

// command is one parsed script line.
type command struct {
	line   int
	name   string
	url    string
	value  string
	accept bool
}

// parseScript reads one command per line. Blank lines and lines starting with # are skipped.
//
//	set URL VALUE         VALUE is the rest of the line, spaces included
//	set-async URL VALUE
//	get URL
//	accept BOOL
//	has | remove-session | remove-all | remove-expired | flush
func parseScript(r io.Reader) ([]command, error) {
	var commands []command

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cmd, err := parseLine(lineNo, line)
		if err != nil {
			return nil, err
		}

		commands = append(commands, cmd)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return commands, nil
}

func parseLine(lineNo int, line string) (command, error) {
	name, rest := cut(line)
	cmd := command{line: lineNo, name: name}

	lineErr := func(sentinel error) error {
		return errors.Join(sentinel, fmt.Errorf("line %d: %s", lineNo, line))
	}

	switch name {
	case cmdSet, cmdSetAsync:
		cmd.url, cmd.value = cut(rest)
		if cmd.url == "" || cmd.value == "" {
			return command{}, lineErr(ErrMissingArgument)
		}

	case cmdGet:
		var extra string
		cmd.url, extra = cut(rest)
		if cmd.url == "" {
			return command{}, lineErr(ErrMissingArgument)
		}
		if extra != "" {
			return command{}, lineErr(ErrUnexpectedArgument)
		}

	case cmdAccept:
		arg, extra := cut(rest)
		if arg == "" {
			return command{}, lineErr(ErrMissingArgument)
		}
		if extra != "" {
			return command{}, lineErr(ErrUnexpectedArgument)
		}

		accept, err := strconv.ParseBool(arg)
		if err != nil {
			return command{}, errors.Join(lineErr(ErrUnexpectedArgument), err)
		}
		cmd.accept = accept

	case cmdHas, cmdRemoveSession, cmdRemoveAll, cmdRemoveExpired, cmdFlush:
		if rest != "" {
			return command{}, lineErr(ErrUnexpectedArgument)
		}

	default:
		return command{}, lineErr(ErrUnknownCommand)
	}

	return cmd, nil
}

// cut splits s at the first run of whitespace.
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)

	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}

// runScript executes commands against the cookie service of the provider currently held
// by current, resolving the provider anew for every command. One result line per command
// goes to out. The first failing command stops the run.
func runScript(ctx context.Context, current func() cookiehook.Provider, commands []command, out io.Writer) error {
	for _, cmd := range commands {
		result, err := execute(ctx, current().CookieService(), cmd)
		if err != nil {
			return errors.Join(ErrCommandFailed, fmt.Errorf("line %d: %s", cmd.line, cmd.name), err)
		}

		if _, err = fmt.Fprintln(out, result); err != nil {
			return err
		}
	}

	return nil
}

func execute(ctx context.Context, cookies cookiehook.CookieService, cmd command) (string, error) {
	switch cmd.name {
	case cmdSet:
		if err := cookies.SetCookie(ctx, cmd.url, cmd.value); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s: ok", cmd.name, cmd.url), nil

	case cmdSetAsync:
		done := make(chan bool, 1)
		cookies.SetCookieAsync(ctx, cmd.url, cmd.value, func(success bool) { done <- success })
		select {
		case success := <-done:
			return fmt.Sprintf("%s %s: %t", cmd.name, cmd.url, success), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}

	case cmdGet:
		value, err := cookies.Cookie(ctx, cmd.url)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s: %q", cmd.name, cmd.url, value), nil

	case cmdHas:
		has, err := cookies.HasCookies(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %t", cmd.name, has), nil

	case cmdRemoveSession:
		return okResult(cmd.name, cookies.RemoveSessionCookie(ctx))

	case cmdRemoveAll:
		return okResult(cmd.name, cookies.RemoveAllCookie(ctx))

	case cmdRemoveExpired:
		return okResult(cmd.name, cookies.RemoveExpiredCookie(ctx))

	case cmdFlush:
		return okResult(cmd.name, cookies.Flush(ctx))

	case cmdAccept:
		cookies.SetAcceptCookie(cmd.accept)
		return fmt.Sprintf("%s: %t", cmd.name, cookies.AcceptCookie()), nil
	}

	return "", ErrUnknownCommand
}

func okResult(name string, err error) (string, error) {
	if err != nil {
		return "", err
	}

	return name + ": ok", nil
}
