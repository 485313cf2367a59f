// Package launchd installs safeproxy as a per-user LaunchAgent that runs
// one cycle whenever the system network configuration changes.
package launchd

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Label identifies the agent to launchd.
const Label = "com.github.user.safeproxy"

// DefaultWatchPath is written by configd whenever the network changes.
const DefaultWatchPath = "/Library/Preferences/SystemConfiguration"

// AgentPath returns ~/Library/LaunchAgents/<Label>.plist.
func AgentPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// Agent describes the LaunchAgent.
type Agent struct {
	Label      string
	Program    string
	Args       []string
	WatchPaths []string
	Path       string // PATH for the agent environment
	LogFile    string
}

// NewAgent returns an agent that runs `<program> run` on network changes.
func NewAgent(program, logFile string, watchPaths []string) Agent {
	if len(watchPaths) == 0 {
		watchPaths = []string{DefaultWatchPath}
	}
	return Agent{
		Label:      Label,
		Program:    program,
		Args:       []string{"run"},
		WatchPaths: watchPaths,
		Path:       "/usr/local/bin:/opt/homebrew/bin:/usr/bin:/bin:/usr/sbin:/sbin",
		LogFile:    logFile,
	}
}

var plistTemplate = template.Must(template.New("plist").Funcs(template.FuncMap{
	"x": escape,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{x .Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{x .Program}}</string>
{{- range .Args}}
		<string>{{x .}}</string>
{{- end}}
	</array>
	<key>WatchPaths</key>
	<array>
{{- range .WatchPaths}}
		<string>{{x .}}</string>
{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>{{x .Path}}</string>
	</dict>
{{- if .LogFile}}
	<key>StandardErrorPath</key>
	<string>{{x .LogFile}}</string>
{{- end}}
</dict>
</plist>
`))

// Render returns the plist document for the agent.
func (a Agent) Render() ([]byte, error) {
	if a.Label == "" || a.Program == "" {
		return nil, fmt.Errorf("label and program are required")
	}
	var buf bytes.Buffer
	if err := plistTemplate.Execute(&buf, a); err != nil {
		return nil, fmt.Errorf("failed to render plist: %w", err)
	}
	return buf.Bytes(), nil
}

func escape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
