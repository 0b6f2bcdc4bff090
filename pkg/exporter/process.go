package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvExecutionEnvironment is the only exporter-specific variable a process
// exporter sees; everything else comes through the request on stdin.
const EnvExecutionEnvironment = "SUPERNOVA_EXPORTER_ENVIRONMENT"

// processPlugin runs an exporter entry file as a child process. The request is
// written to stdin as JSON, the response is read from stdout, and every stderr
// line becomes a log entry.
type processPlugin struct {
	dir         string
	entry       string
	interpreter string
	args        []string
	env         ExecutionEnvironment
}

// processResponse is the stdout payload of a process exporter.
type processResponse struct {
	Files *[]EmittedFile `json:"files"`
	Error string         `json:"error"`
}

func (p *processPlugin) Invoke(ctx context.Context, in Input) ([]EmittedFile, error) {
	if in.Context.Logger == nil {
		in.Context.Logger = NewLogSink()
	}

	request, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode exporter request: %w", err)
	}

	name, args := p.command()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = p.dir
	cmd.Env = p.environ()
	cmd.Stdin = bytes.NewReader(request)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderr := &lineWriter{sink: in.Context.Logger}
	cmd.Stderr = stderr

	runErr := cmd.Run()
	stderr.Flush()

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("exporter exited with status %d%s", exitErr.ExitCode(), lastError(in.Context.Logger))
		}
		return nil, fmt.Errorf("run exporter: %w", runErr)
	}

	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		return nil, errors.New("exporter produced no output")
	}

	var resp processResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("malformed exporter output: %w", err)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	if resp.Files == nil {
		return nil, errors.New("malformed exporter output: missing \"files\"")
	}

	return *resp.Files, nil
}

func (p *processPlugin) command() (string, []string) {
	if p.interpreter == "" {
		return p.entry, p.args
	}
	args := make([]string, 0, len(p.args)+1)
	args = append(args, p.entry)
	args = append(args, p.args...)
	return p.interpreter, args
}

// environ builds the child environment from scratch so no host credentials or
// configuration leak into exporter code.
func (p *processPlugin) environ() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"TMPDIR=" + os.TempDir(),
		EnvExecutionEnvironment + "=" + string(p.env),
	}
	if runtime.GOOS == "windows" {
		env = append(env, "SYSTEMROOT="+os.Getenv("SYSTEMROOT"))
	}
	return env
}

// lastError returns the most recent error-level log line formatted as a suffix,
// or an empty string.
func lastError(sink *LogSink) string {
	lines := sink.Lines()
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Level == LevelError {
			return ": " + strings.TrimSpace(lines[i].Message)
		}
	}
	return ""
}
