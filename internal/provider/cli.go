package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	// MaxOutputSize is the maximum size of CLI output (10MB).
	MaxOutputSize = 10 * 1024 * 1024

	// DefaultCLITimeout is the default timeout for CLI commands.
	DefaultCLITimeout = 5 * time.Minute
)

// CLIConfig holds settings for a command-line provider.
type CLIConfig struct {
	Name        string
	DisplayName string
	Command     string
	Args        []string
	Timeout     time.Duration
}

// CLIProvider generates text by invoking an installed CLI tool. The
// combined prompt is written to the tool's stdin; the response is read
// from stdout.
type CLIProvider struct {
	name        string
	displayName string
	command     string
	args        []string
	timeout     time.Duration
}

// NewCLIProvider creates a provider backed by a local command.
func NewCLIProvider(cfg CLIConfig) *CLIProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultCLITimeout
	}
	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = cfg.Name
	}
	return &CLIProvider{
		name:        cfg.Name,
		displayName: displayName,
		command:     cfg.Command,
		args:        cfg.Args,
		timeout:     timeout,
	}
}

// Name returns the provider identifier.
func (p *CLIProvider) Name() string { return p.name }

// DisplayName returns the human-friendly name.
func (p *CLIProvider) DisplayName() string { return p.displayName }

// Available checks if the CLI tool is installed and accessible.
func (p *CLIProvider) Available() bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// Generate runs the CLI command with the prompts on stdin.
func (p *CLIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if _, err := exec.LookPath(p.command); err != nil {
		return "", &Error{
			Provider: p.name,
			Message:  fmt.Sprintf("executable '%s' not found in PATH", p.command),
			Err:      err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	slog.Debug("Executing CLI provider", "provider", p.name, "command", p.command, "args", p.args)

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	stdoutLimited := newLimitedWriter(&stdout, MaxOutputSize)
	stderrLimited := newLimitedWriter(&stderr, MaxOutputSize)
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	if err := cmd.Run(); err != nil {
		slog.Error("CLI provider failed", "provider", p.name, "error", err, "stderr", stderr.String())
		if ctx.Err() == context.DeadlineExceeded {
			return "", &Error{Provider: p.name, Message: "command timed out", Err: ctx.Err()}
		}
		if stderr.Len() > 0 {
			errMsg := stderr.String()
			if stderrLimited.limited {
				errMsg += "\n... (output truncated)"
			}
			return "", &Error{Provider: p.name, Message: errMsg, Err: err}
		}
		return "", &Error{Provider: p.name, Message: "command failed", Err: err}
	}

	result := strings.TrimSpace(stdout.String())
	if stdoutLimited.limited {
		result += "\n... (output truncated at 10MB)"
	}
	return result, nil
}

// limitedWriter wraps an io.Writer and limits total bytes written.
type limitedWriter struct {
	w       io.Writer
	n       int64
	limit   int64
	limited bool
}

func newLimitedWriter(w io.Writer, limit int64) *limitedWriter {
	return &limitedWriter{w: w, limit: limit}
}

func (l *limitedWriter) Write(p []byte) (n int, err error) {
	if l.n >= l.limit {
		l.limited = true
		return len(p), nil // Discard, but don't error
	}

	remaining := l.limit - l.n
	if int64(len(p)) > remaining {
		p = p[:remaining]
		l.limited = true
	}

	n, err = l.w.Write(p)
	l.n += int64(n)
	return n, err
}
