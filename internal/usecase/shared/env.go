package shared

import "regexp"

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidEnvVarName reports whether name can be exported to a terminal or hook.
func IsValidEnvVarName(name string) bool {
	return envNamePattern.MatchString(name)
}
