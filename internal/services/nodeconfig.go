package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/robfig/cron/v3"

	"github.com/soochol/flowboard/internal/flow"
)

// ErrInvalidConfig wraps every node configuration that is present but
// malformed. Incomplete configurations are not errors; they leave the node
// unconfigured.
var ErrInvalidConfig = errors.New("invalid node config")

// CheckNodeConfig validates cfg for a node of the given kind and reports
// whether it is complete. Nothing is executed: expressions are only
// compiled and schedules only parsed.
func CheckNodeConfig(kind flow.NodeKind, cfg map[string]any) (configured bool, err error) {
	switch kind {
	case flow.NodeKindTrigger:
		return checkTrigger(cfg)
	case flow.NodeKindAction:
		action, err := stringField(cfg, "action")
		return action != "", err
	case flow.NodeKindCondition:
		return checkCondition(cfg)
	case flow.NodeKindDelay:
		return checkDelay(cfg)
	}
	return false, fmt.Errorf("%w: unknown kind %q", ErrInvalidConfig, kind)
}

func checkTrigger(cfg map[string]any) (bool, error) {
	schedule, err := stringField(cfg, "schedule")
	if err != nil {
		return false, err
	}
	event, err := stringField(cfg, "event")
	if err != nil {
		return false, err
	}
	if schedule != "" {
		tz, err := stringField(cfg, "timezone")
		if err != nil {
			return false, err
		}
		if _, err := parseSchedule(schedule, tz); err != nil {
			return false, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, schedule, err)
		}
	}
	return schedule != "" || event != "", nil
}

// parseSchedule tries 6-field (with seconds) then 5-field cron syntax.
func parseSchedule(spec, timezone string) (cron.Schedule, error) {
	if timezone != "" && timezone != "UTC" {
		spec = "CRON_TZ=" + timezone + " " + spec
	}
	parser6 := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if sched, err := parser6.Parse(spec); err == nil {
		return sched, nil
	}
	parser5 := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser5.Parse(spec)
}

func checkCondition(cfg map[string]any) (bool, error) {
	src, err := stringField(cfg, "expression")
	if err != nil || strings.TrimSpace(src) == "" {
		return false, err
	}
	if _, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool()); err != nil {
		return false, fmt.Errorf("%w: expression: %v", ErrInvalidConfig, err)
	}
	return true, nil
}

func checkDelay(cfg map[string]any) (bool, error) {
	raw, ok := cfg["duration"]
	if !ok || raw == nil {
		return false, nil
	}
	var d time.Duration
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return false, fmt.Errorf("%w: duration: %v", ErrInvalidConfig, err)
		}
		d = parsed
	case int:
		d = time.Duration(v) * time.Second
	case float64:
		d = time.Duration(v * float64(time.Second))
	default:
		return false, fmt.Errorf("%w: duration must be a string or seconds, got %T", ErrInvalidConfig, raw)
	}
	if d <= 0 {
		return false, fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	}
	return true, nil
}

func stringField(cfg map[string]any, key string) (string, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfig, key, raw)
	}
	return s, nil
}
