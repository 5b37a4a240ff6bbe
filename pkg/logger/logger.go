// Package logger provides the leveled component logger used across inboxclaw.
// Log lines carry a component tag and optional structured fields alongside
// the human-facing stdout progress output printed by cmd code.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var (
	mu     sync.Mutex
	level  = INFO
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level emitted by the package logger.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logCF(l Level, component, msg string, fields map[string]any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}

	line := fmt.Sprintf("%s [%s] [%s] %s",
		time.Now().Format("2006-01-02 15:04:05"),
		levelNames[l],
		component,
		msg,
	)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
		line += " " + strings.Join(parts, " ")
	}

	fmt.Fprintln(output, line)
}

func DebugC(component, msg string) { logCF(DEBUG, component, msg, nil) }
func InfoC(component, msg string)  { logCF(INFO, component, msg, nil) }
func WarnC(component, msg string)  { logCF(WARN, component, msg, nil) }
func ErrorC(component, msg string) { logCF(ERROR, component, msg, nil) }

func DebugCF(component, msg string, fields map[string]any) { logCF(DEBUG, component, msg, fields) }
func InfoCF(component, msg string, fields map[string]any)  { logCF(INFO, component, msg, fields) }
func WarnCF(component, msg string, fields map[string]any)  { logCF(WARN, component, msg, fields) }
func ErrorCF(component, msg string, fields map[string]any) { logCF(ERROR, component, msg, fields) }
