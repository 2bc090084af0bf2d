// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package console renders analysis output the way the plugin's dedicated
// console window does: timestamped messages, boxed analysis headers, and a
// live response stream. Output is styled with lipgloss unless colors are
// disabled, and a plain transcript is kept so the whole session can be
// copied to the clipboard.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
)

var (
	timestampStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6C99BB")) // Subtle blue-gray
	functionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66D9EF"))   // Bright cyan
	resultStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E6E6"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5C57"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")) // Soft green
	warningStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C678DD")) // Purple
)

// MessageType selects the style a message is rendered with.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageError
	MessageFunction
	MessageResult
	MessageWarning
	MessageHeader
)

// Config configures a Console.
type Config struct {
	Writer  io.Writer        // Destination (default os.Stdout)
	NoColor bool             // Disable lipgloss styling
	Now     func() time.Time // Clock override for tests
}

// Console is safe for concurrent use.
type Console struct {
	mu         sync.Mutex
	w          io.Writer
	noColor    bool
	now        func() time.Time
	transcript strings.Builder
}

// New creates a console. It prints nothing until the first append.
func New(cfg Config) *Console {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Console{w: w, noColor: cfg.NoColor, now: now}
}

// Welcome prints the session banner.
func (c *Console) Welcome() {
	c.AppendMessage("\U0001F680 GhidraGPT", "Console initialized. AI analysis results will appear here.", MessageHeader)
}

// AppendMessage writes one timestamped message. functionName may be empty.
func (c *Console) AppendMessage(functionName, message string, t MessageType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timestamp := "[" + c.now().Format("15:04:05") + "] "
	c.write(timestamp, timestampStyle)
	if functionName != "" {
		c.write(functionName+": ", functionStyle)
	}
	c.write(message+"\n\n", c.styleFor(t))
}

// AppendAnalysisResult writes an operation's result under a separator rule.
func (c *Console) AppendAnalysisResult(functionName, operation, result string) {
	separator := strings.Repeat("═", 60)
	c.AppendMessage(functionName, operation+"\n"+separator+"\n"+result, MessageResult)
}

// AppendError writes an error message tied to a function.
func (c *Console) AppendError(functionName, message string) {
	c.AppendMessage(functionName, "ERROR: "+message, MessageError)
}

// AppendInfo writes a plain informational message.
func (c *Console) AppendInfo(message string) {
	c.AppendMessage("", message, MessageInfo)
}

// AnalysisHeader prints the boxed banner that opens every analysis pass.
func (c *Console) AnalysisHeader(operation, functionName, provider, model string, promptLength int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	title := operation + " Started"
	rule := strings.Repeat("═", 58)
	header := "\n╔" + rule + "╗\n" +
		"║ ⚡ " + centerText(title, 54) + " ║\n" +
		"╠" + rule + "╣\n" +
		"║ ► Function:  " + padRight(functionName, 43) + " ║\n" +
		"║ ◆ Provider:  " + padRight(provider, 43) + " ║\n" +
		"║ ● Model:     " + padRight(model, 43) + " ║\n" +
		"║ ■ Size:      " + padRight(fmt.Sprintf("%d chars", promptLength), 43) + " ║\n" +
		"╚" + rule + "╝\n"
	c.write(header, headerStyle)
}

// StreamHeader opens the live response frame. Called when the first token
// arrives, not before, so a failed request never prints an empty frame.
func (c *Console) StreamHeader() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write("\n┌─ ▲ AI Response Stream ─────────────────────────────────┐\n", successStyle)
}

// StreamText appends response text inside the stream frame, unstamped.
func (c *Console) StreamText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(text, resultStyle)
}

// StreamComplete closes the stream frame and prints timing.
func (c *Console) StreamComplete(operation string, duration time.Duration, responseLength int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	footer := "\n└" + strings.Repeat("─", 57) + "┘\n" +
		fmt.Sprintf("√ %s completed in %dms (%d characters)\n", operation, duration.Milliseconds(), responseLength) +
		strings.Repeat("═", 65) + "\n"
	c.write(footer, successStyle)
}

// StreamError closes the stream frame with a failure notice.
func (c *Console) StreamError(operation string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := "\n└─ X Error ──────────────────────────────────────────────┘\n" +
		fmt.Sprintf("X %s failed: %v\n", operation, err)
	c.write(msg, errorStyle)
}

// Clear discards the transcript and notes it on screen.
func (c *Console) Clear() {
	c.mu.Lock()
	c.transcript.Reset()
	c.mu.Unlock()
	c.AppendMessage("\U0001F9F9 System", "Console cleared.", MessageSuccess)
}

// CopyAll places the plain transcript on the system clipboard.
func (c *Console) CopyAll() error {
	c.mu.Lock()
	text := c.transcript.String()
	c.mu.Unlock()

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copying console content: %w", err)
	}
	c.AppendMessage("\U0001F4CB System", "Console content copied to clipboard!", MessageSuccess)
	return nil
}

// Transcript returns the plain text written so far.
func (c *Console) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.String()
}

// write renders text to the output and records the plain form. Callers hold
// the mutex.
func (c *Console) write(text string, style lipgloss.Style) {
	c.transcript.WriteString(text)
	if c.noColor {
		io.WriteString(c.w, text)
		return
	}
	io.WriteString(c.w, style.Render(text))
}

func (c *Console) styleFor(t MessageType) lipgloss.Style {
	switch t {
	case MessageError:
		return errorStyle
	case MessageFunction:
		return functionStyle
	case MessageSuccess:
		return successStyle
	case MessageWarning:
		return warningStyle
	case MessageHeader:
		return headerStyle
	default:
		return resultStyle
	}
}

func centerText(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
}

func padRight(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}
