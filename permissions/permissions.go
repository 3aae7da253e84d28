// Package permissions resolves which roles may call a route. Rules are keyed by
// the chi route pattern, so /api/todos/{id} covers every todo id.
package permissions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var embedded []byte

const anyMethod = "*"

var (
	ErrInvalidRule   = errors.New("permissions: invalid rule")
	ErrDuplicateRule = errors.New("permissions: duplicate rule")
)

// Rule grants Roles access to Path for Methods. A public rule needs no token.
// An empty Roles list admits every authenticated caller.
type Rule struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
	Roles   []string `json:"roles"`
	Public  bool     `json:"public"`
}

// Allows reports whether role may use the route.
func (r Rule) Allows(role string) bool {
	return r.Public || len(r.Roles) == 0 || slices.Contains(r.Roles, role)
}

type Policy struct {
	SkipRoles bool   `json:"skip_roles"`
	Rules     []Rule `json:"rules"`

	index map[string]Rule
}

func key(method, path string) string {
	return strings.ToUpper(method) + " " + normalize(path)
}

func normalize(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}

	return path
}

// Load parses and indexes a policy document.
func Load(data []byte) (*Policy, error) {
	var policy Policy

	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	policy.index = make(map[string]Rule, len(policy.Rules))

	for i, rule := range policy.Rules {
		if !strings.HasPrefix(rule.Path, "/") || len(rule.Methods) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%q)", ErrInvalidRule, i, rule.Path)
		}

		for _, method := range rule.Methods {
			k := key(method, rule.Path)
			if _, ok := policy.index[k]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, k)
			}

			policy.index[k] = rule
		}
	}

	return &policy, nil
}

// Get loads the policy embedded in the binary. It returns nil when the
// document is broken, which makes the RBAC middleware deny every request.
func Get() *Policy {
	policy, err := Load(embedded)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load embedded permissions")

		return nil
	}

	log.Info().Int("rules", len(policy.Rules)).Msg("Loaded embedded permissions")

	return policy
}

// Find returns the rule for a route pattern and method. A rule listing the
// method explicitly wins over one using the "*" wildcard.
func (p *Policy) Find(path, method string) (Rule, bool) {
	if p == nil {
		return Rule{}, false
	}

	if rule, ok := p.index[key(method, path)]; ok {
		return rule, true
	}

	rule, ok := p.index[key(anyMethod, path)]

	return rule, ok
}
