// Package localcheck installs wrapper scripts that let the Checkmk agent
// discover one scoped health probe per node and component.
package localcheck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const filePrefix = "checkmk_spectrum_scale_health_node_"

var scriptTemplate = template.Must(template.New("localcheck").Funcs(template.FuncMap{
	"quote": shellQuote,
}).Parse(`#!/bin/bash
{{quote .Executable}} health --node {{quote .Node}} --component {{quote .Component}}
`))

// Check identifies one installed local check.
type Check struct {
	Executable string
	Node       string
	Component  string
}

// FileName returns the script name the agent will run.
func (c Check) FileName() string {
	return fmt.Sprintf("%s%s_%s", filePrefix, c.Node, c.Component)
}

func (c Check) validateScope() error {
	for _, f := range [][2]string{{"node", c.Node}, {"component", c.Component}} {
		name, v := f[0], f[1]
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
		if strings.ContainsAny(v, "/\\\x00") || v == "." || v == ".." {
			return fmt.Errorf("invalid %s %q", name, v)
		}
	}
	return nil
}

// Render returns the script content for c.
func Render(c Check) ([]byte, error) {
	if c.Executable == "" {
		return nil, errors.New("executable is required")
	}
	if err := c.validateScope(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, c); err != nil {
		return nil, fmt.Errorf("render local check: %w", err)
	}
	return buf.Bytes(), nil
}

// Install writes the script for c into dir and returns its path.
func Install(dir string, c Check) (string, error) {
	content, err := Render(c)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create local check directory: %w", err)
	}

	path := filepath.Join(dir, c.FileName())
	if err := os.WriteFile(path, content, 0o755); err != nil {
		return "", fmt.Errorf("write local check: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("chmod local check: %w", err)
	}
	return path, nil
}

// Remove deletes the script for c from dir.
func Remove(dir string, c Check) (string, error) {
	if err := c.validateScope(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, c.FileName())
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("local check %s is not installed", c.FileName())
		}
		return "", fmt.Errorf("remove local check: %w", err)
	}
	return path, nil
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>(){}*?[]#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
