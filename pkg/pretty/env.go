package pretty

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/milan604/vergen/pkg/vergen"
)

// Env maps key names to captured values. An empty value means the key was
// not captured.
type Env map[string]string

const envPrefix = "vergen:env="

// EnvFromOS reads every built-in key, plus the extra names given, from the
// process environment.
func EnvFromOS(extra ...string) Env {
	env := make(Env)
	for _, k := range vergen.AllKeys() {
		env[k.Name()] = os.Getenv(k.Name())
	}
	for _, name := range extra {
		env[name] = os.Getenv(name)
	}
	return env
}

// EnvFromMap copies m, typically the Env map of a generated file.
func EnvFromMap(m map[string]string) Env {
	env := make(Env, len(m))
	for k, v := range m {
		env[k] = v
	}
	return env
}

// EnvFromFile reads a dotenv file such as the one written by the env format.
func EnvFromFile(path string) (Env, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return Env(values), nil
}

// ParseInstructions collects the vergen:env lines of an instruction stream.
// Other lines are ignored.
func ParseInstructions(r io.Reader) (Env, error) {
	env := make(Env)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, ok := strings.CutPrefix(scanner.Text(), envPrefix)
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed instruction %q", scanner.Text())
		}
		env[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read instructions: %w", err)
	}
	return env, nil
}
