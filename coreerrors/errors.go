// Package coreerrors defines the distinct, surfaceable error kinds the core
// raises for the failure kinds listed below, so a CLI driver can map such
// an error to an exit code and a single-line message without inspecting
// its text. Some plain filesystem errors are returned unwrapped.
package coreerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories a ConanError can surface.
type Kind string

const (
	KindConfiguration      Kind = "configuration"
	KindUndefinedSetting   Kind = "undefined_setting"
	KindInvalidValue       Kind = "invalid_value"
	KindRecipeSyntax       Kind = "recipe_syntax"
	KindRecipeNotFound     Kind = "recipe_not_found"
	KindRecipeExecution    Kind = "recipe_execution"
	KindReferenceParse     Kind = "reference_parse"
	KindCyclicDependency   Kind = "cyclic_dependency"
	KindConflict           Kind = "conflict"
	KindMissingBinary      Kind = "missing_binary"
	KindBuild              Kind = "build"
	KindNotFound           Kind = "not_found"
	KindAuthentication     Kind = "authentication"
	KindRemote             Kind = "remote"
	KindManifestMismatch   Kind = "manifest_mismatch"
	KindExportConflict     Kind = "export_conflict"
)

// ConanError is the single error type the CLI driver inspects for a Kind.
type ConanError struct {
	kind    Kind
	message string
	cause   error
}

func newError(kind Kind, cause error, format string, args ...interface{}) *ConanError {
	return &ConanError{kind: kind, message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *ConanError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

func (e *ConanError) Unwrap() error { return e.cause }

func (e *ConanError) Kind() Kind { return e.kind }

// Wrap attaches kind to cause, wrapping cause with errors.WithStack so a
// pkg/errors stack trace from this call site is always recorded.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *ConanError {
	if cause == nil {
		return newError(kind, nil, format, args...)
	}
	return newError(kind, errors.WithStack(cause), format, args...)
}

func New(kind Kind, format string, args ...interface{}) *ConanError {
	return newError(kind, nil, format, args...)
}

func ConfigurationError(format string, args ...interface{}) *ConanError {
	return New(KindConfiguration, format, args...)
}

func UndefinedSettingError(path string) *ConanError {
	return New(KindUndefinedSetting, "undefined setting: %s", path)
}

func InvalidValueError(path, value string, universe []string) *ConanError {
	return New(KindInvalidValue, "invalid value %q for setting %s (expected one of %v)", value, path, universe)
}

func RecipeSyntaxError(path string, cause error) *ConanError {
	return Wrap(KindRecipeSyntax, cause, "syntax error loading recipe %s", path)
}

func RecipeNotFoundError(path string) *ConanError {
	return New(KindRecipeNotFound, "recipe not found: %s", path)
}

func RecipeExecutionError(path string, cause error) *ConanError {
	return Wrap(KindRecipeExecution, cause, "error executing recipe hook in %s", path)
}

func ReferenceParseError(text string) *ConanError {
	return New(KindReferenceParse, "invalid reference: %q", text)
}

func CyclicDependencyError(cycle []string) *ConanError {
	return New(KindCyclicDependency, "cyclic dependency detected: %s", joinCycle(cycle))
}

func ConflictError(ref, setting string) *ConanError {
	return New(KindConflict, "conflicting values for %s across uses of %s", setting, ref)
}

func MissingBinaryError(ref string) *ConanError {
	return New(KindMissingBinary, "missing binary package for %s: not cached, not in any remote, and build is not permitted", ref)
}

func BuildError(ref string, cause error, lastLogLines []string, workingDir string) *ConanError {
	msg := fmt.Sprintf("build() failed for %s in %s", ref, workingDir)
	if len(lastLogLines) > 0 {
		msg = fmt.Sprintf("%s\n%s", msg, joinCycle(lastLogLines))
	}
	return Wrap(KindBuild, cause, "%s", msg)
}

func NotFoundError(format string, args ...interface{}) *ConanError {
	return New(KindNotFound, format, args...)
}

func AuthenticationError(format string, args ...interface{}) *ConanError {
	return New(KindAuthentication, format, args...)
}

func RemoteError(cause error, format string, args ...interface{}) *ConanError {
	return Wrap(KindRemote, cause, format, args...)
}

func ManifestMismatchError(ref string) *ConanError {
	return New(KindManifestMismatch, "downloaded content for %s does not match the remote manifest", ref)
}

func ExportConflictError(ref string) *ConanError {
	return New(KindExportConflict, "export destination for %s already exists with a different manifest", ref)
}

func joinCycle(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
