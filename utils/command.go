package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RunShellCommand runs command through "sh -c" with workDir as its working
// directory, the way a recipe's hook scripts run (spec §4.3): source(),
// build(), package(), and test() are all opaque shell strings, not parsed
// or sandboxed by this package. env, if non-nil, is appended to the
// child's inherited environment. A non-zero exit combines stdout+stderr
// into the returned error so callers can surface the hook's own output.
func RunShellCommand(ctx context.Context, command, workDir string, env []string) error {
	if command == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	if env != nil {
		cmd.Env = append(cmd.Env, env...)
	}
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %q in %s: %w\n%s", command, workDir, err, strings.TrimSpace(combined.String()))
	}
	return nil
}

// GetExecutablePath resolves an executable name against PATH, the
// preflight check a hook runner performs before trusting a recipe's
// declared build tool (e.g. "cmake", "ninja") is actually installed.
func GetExecutablePath(executableName string) (string, error) {
	path, err := exec.LookPath(executableName)
	if err != nil {
		return "", err
	}
	return path, nil
}
