// Package templates holds the HTML pages. They are embedded in the
// binary and can be overridden from a directory during development.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.tmpl
var files embed.FS

var funcMap = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict needs key/value pairs")
		}
		m := make(map[string]interface{}, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"join": strings.Join,
	"selected": func(current, value string) bool {
		return current == value
	},
}

// Load parses the page templates from dir when it holds any, otherwise
// from the embedded copies
func Load(dir string) (*template.Template, error) {
	if dir != "" {
		pattern := filepath.Join(dir, "*.tmpl")
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			tmpl, err := template.New("").Funcs(funcMap).ParseFiles(matches...)
			if err != nil {
				return nil, fmt.Errorf("failed to parse templates in %s: %w", dir, err)
			}
			return tmpl, nil
		}
		if _, err := os.Stat(dir); err == nil {
			return nil, fmt.Errorf("no templates found in %s", dir)
		}
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(files, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}
	return tmpl, nil
}
