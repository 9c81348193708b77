package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/totphog/internal/pkg/config"
)

// maintenanceRule blocks a route pattern, optionally for one method only.
// A pattern ending in "*" matches every route sharing that prefix.
type maintenanceRule struct {
	method  string
	pattern string
}

func (m maintenanceRule) match(method, route string) bool {
	if m.method != "" && m.method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(m.pattern, "*"); ok {
		return strings.HasPrefix(route, prefix)
	}
	return m.pattern == route
}

// parseMaintenanceRules reads entries shaped as "/path", "/path/*" or
// "METHOD /path".
func parseMaintenanceRules(entries []string) []maintenanceRule {
	rules := make([]maintenanceRule, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		switch len(fields) {
		case 1:
			rules = append(rules, maintenanceRule{pattern: fields[0]})
		case 2:
			rules = append(rules, maintenanceRule{method: strings.ToUpper(fields[0]), pattern: fields[1]})
		}
	}
	return rules
}

func middlewareMaintenance(cfg config.Config) Middleware {
	var rules []maintenanceRule
	if cfg != nil {
		rules = parseMaintenanceRules(cfg.GetArray("app.maintenance.endpoints"))
	}

	return func(next http.Handler) http.Handler {
		if len(rules) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			for _, rule := range rules {
				if rule.match(r.Method, route) {
					writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
