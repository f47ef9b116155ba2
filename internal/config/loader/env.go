package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader reads PREFIX_SECTION_KEY variables as section.key settings.
// MARKCTL_MARKS_CHECK_LIMIT becomes marks.check_limit.
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix. The
// prefix includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// NewEnvLoaderFrom reads variables from a fixed list instead of the
// process environment.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: func() []string { return environ }}
}

// Load collects every prefixed variable. Variables without a section part
// are left to the caller.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		section, key, ok := l.envToPath(name)
		if !ok {
			continue
		}
		sub, _ := config[section].(map[string]any)
		if sub == nil {
			sub = make(map[string]any)
			config[section] = sub
		}
		sub[key] = parseValue(value)
	}
	return config, nil
}

func (l *EnvLoader) envToPath(name string) (section, key string, ok bool) {
	rest := strings.ToLower(strings.TrimPrefix(name, l.prefix))
	section, key, ok = strings.Cut(rest, "_")
	if !ok || section == "" || key == "" {
		return "", "", false
	}
	return section, key, true
}

// parseValue converts booleans and integers; everything else stays a
// string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
