package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route is a registered route as shown in the startup log.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

// systemPaths are probe and metadata routes, listed after API routes.
var systemPaths = map[string]bool{
	"/health":                true,
	"/info":                  true,
	"/.well-known/jwks.json": true,
}

// Routes returns the registered routes, API routes first.
func (s *Server) Routes() []Route {
	return sortRoutes(s.engine.Routes())
}

func sortRoutes(ginRoutes gin.RoutesInfo) []Route {
	sort.SliceStable(ginRoutes, func(i, j int) bool {
		iSys := systemPaths[ginRoutes[i].Path]
		jSys := systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

func (s *Server) logRoutes() {
	for _, r := range s.Routes() {
		s.log.Debug("Route registered", map[string]interface{}{
			"method":  r.Method,
			"path":    r.Path,
			"handler": r.Handler,
		})
	}
}

// formatHandlerName shortens Gin's handler path:
// "github.com/kbukum/tokengate/internal/api.(*Handler).Admin-fm" becomes "Handler.Admin".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "Authenticator.Protect.func1" becomes "protect".
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
