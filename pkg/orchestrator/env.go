package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"arbiter-hq/minos/pkg/policy"
)

// secretEnvVars are provider API key variables that must not leak into a
// governed run unless the policy explicitly allows live calls.
var secretEnvVars = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"GOOGLE_API_KEY",
	"GEMINI_API_KEY",
	"XAI_API_KEY",
	"ZAI_API_KEY",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_KEY",
}

// envAllowlist are the benign variables whose values are recorded in the
// invocation artifact for reproducibility.
var envAllowlist = []string{
	"PATH", "HOME", "SHELL", "VIRTUAL_ENV", "CONDA_PREFIX", "PYTHONPATH",
}

// EnvMeta records what the sanitizer did, by variable name only. Secret
// values are never recorded.
type EnvMeta struct {
	Allowlist map[string]string `json:"env_allowlist"`
	Stripped  []string          `json:"stripped_secret_vars"`
	Passed    []string          `json:"passed_secret_vars"`
}

// LiveKeysForbiddenError reports that the policy forbids launching while
// provider key variables are present in the environment.
type LiveKeysForbiddenError struct {
	Vars []string
}

// Error implements the error interface.
func (e *LiveKeysForbiddenError) Error() string {
	return fmt.Sprintf("live key env vars present but forbidden by policy: %s",
		strings.Join(e.Vars, ", "))
}

// sanitizeEnv prepares the child environment per policy. By default every
// known secret variable is stripped; AllowLiveKeys passes them through and
// ForbidLiveKeys refuses the launch when any is set.
func sanitizeEnv(environ []string, p *policy.Policy) ([]string, *EnvMeta, error) {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			values[kv[:i]] = kv[i+1:]
		}
	}

	var present []string
	for _, name := range secretEnvVars {
		if values[name] != "" {
			present = append(present, name)
		}
	}
	sort.Strings(present)

	if p.ForbidLiveKeys && len(present) > 0 {
		return nil, nil, &LiveKeysForbiddenError{Vars: present}
	}

	meta := &EnvMeta{Allowlist: make(map[string]string)}
	for _, name := range envAllowlist {
		if v, ok := values[name]; ok {
			meta.Allowlist[name] = v
		}
	}

	if p.AllowLiveKeys {
		meta.Passed = present
		return environ, meta, nil
	}

	meta.Stripped = present
	strip := make(map[string]struct{}, len(secretEnvVars))
	for _, name := range secretEnvVars {
		strip[name] = struct{}{}
	}
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		if _, drop := strip[name]; drop {
			continue
		}
		out = append(out, kv)
	}
	return out, meta, nil
}
