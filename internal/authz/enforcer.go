// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package authz

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds enforcer settings.
type EnforcerConfig struct {
	// PolicyPath is a Casbin CSV policy file. Empty uses the embedded policy.
	PolicyPath string

	// CacheTTL is how long a decision is reused. Zero means 1 minute;
	// negative disables the cache.
	CacheTTL time.Duration
}

// Enforcer answers route authorization questions for admin callers.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer builds a synced Casbin enforcer from the embedded model and
// either cfg.PolicyPath or the embedded policy.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &EnforcerConfig{}
	}

	enforcer, err := newSyncedEnforcer(cfg.PolicyPath)
	if err != nil {
		return nil, err
	}

	e := &Enforcer{enforcer: enforcer}
	switch ttl := cfg.CacheTTL; {
	case ttl == 0:
		e.cache = newDecisionCache(time.Minute, time.Now)
	case ttl > 0:
		e.cache = newDecisionCache(ttl, time.Now)
	}
	return e, nil
}

func newSyncedEnforcer(policyPath string) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	if policyPath != "" {
		// The file adapter treats a missing file as an empty policy.
		if _, err := os.Stat(policyPath); err != nil {
			return nil, fmt.Errorf("policy file: %w", err)
		}
		enforcer, err := casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
		return enforcer, nil
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, fmt.Errorf("embedded policy: %w", err)
	}
	return enforcer, nil
}

// loadPolicy adds "p, sub, obj, act" and "g, user, role" lines. Blank lines
// and # comments are skipped; anything else is an error.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	sc := bufio.NewScanner(strings.NewReader(policy))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Split(line, ",")
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		ptype, rule := fields[0], fields[1:]

		var err error
		switch {
		case ptype == "p" && len(rule) == 3:
			_, err = enforcer.AddPolicy(rule[0], rule[1], rule[2])
		case ptype == "g" && len(rule) == 2:
			_, err = enforcer.AddGroupingPolicy(rule[0], rule[1])
		default:
			return fmt.Errorf("line %d: malformed policy %q", n, line)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

// Enforce checks a single subject or role against object and action.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(subject, object, action); ok {
			recordDecision(allowed, true)
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.set(subject, object, action, allowed)
	}
	recordDecision(allowed, false)
	return allowed, nil
}

// Authorize reports whether subject, or any of its roles, may perform
// action on object.
func (e *Enforcer) Authorize(subject string, roles []string, object, action string) (bool, error) {
	if subject != "" {
		allowed, err := e.Enforce(subject, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	for _, role := range roles {
		allowed, err := e.Enforce(role, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	return false, nil
}

// Policy returns the loaded p rules.
func (e *Enforcer) Policy() [][]string {
	//nolint:errcheck // fails only on a nil enforcer
	rules, _ := e.enforcer.GetPolicy()
	return rules
}
