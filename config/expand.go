package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} in s. A ${VAR} whose variable is
// unset is an error; $$ emits a literal $.
func ExpandEnvStrict(s string) (string, error) {
	return expandWith(s, os.LookupEnv)
}

func expandWith(s string, lookup func(string) (string, bool)) (string, error) {
	const dollar = "\x00RECIPEGUARD_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	seen := map[string]bool{}
	for _, m := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(m[1]); !ok && !seen[m[1]] {
			seen[m[1]] = true
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	s = os.Expand(s, func(k string) string {
		v, _ := lookup(k)
		return v
	})
	return strings.ReplaceAll(s, dollar, "$"), nil
}
