// Package goenv reads variables from the go command.
package goenv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Func reads the named variables. Tests substitute their own.
type Func func(ctx context.Context, vars ...string) (map[string]string, error)

// Binary is the go command that Read invokes.
var Binary = "go"

// Read runs `go env -json vars...` once and returns the decoded values.
func Read(ctx context.Context, vars ...string) (map[string]string, error) {
	args := append([]string{"env", "-json"}, vars...)
	cmd := exec.CommandContext(ctx, Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", Binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s %s: %w", Binary, strings.Join(args, " "), err)
	}
	values := make(map[string]string, len(vars))
	if err := json.Unmarshal(out, &values); err != nil {
		return nil, fmt.Errorf("decode go env output: %w", err)
	}
	return values, nil
}

// Static returns a Func serving fixed values, or err when it is non-nil.
func Static(values map[string]string, err error) Func {
	return func(_ context.Context, vars ...string) (map[string]string, error) {
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(vars))
		for _, v := range vars {
			out[v] = values[v]
		}
		return out, nil
	}
}
