// Package ui renders sequence and run information to the terminal.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"framelapse/internal/sequence"
)

var (
	infoStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827"))
)

// DisplaySequenceInfo prints a framed summary of the input sequence.
func DisplaySequenceInfo(info *sequence.Info, fps, intermediateFrames int, skipModel bool) {
	content := fmt.Sprintf(
		"%s %s\n"+
			"%s %d\n"+
			"%s %dx%d\n"+
			"%s %s\n"+
			"%s %s",
		labelStyle.Render("📁 Folder:"), valueStyle.Render(info.Folder),
		labelStyle.Render("🎞️  Frames:"), info.FrameCount,
		labelStyle.Render("📐 Dimensions:"), info.Width, info.Height,
		labelStyle.Render("📊 Size:"), valueStyle.Render(FormatFileSize(info.TotalBytes)),
		labelStyle.Render("⏱️  Output length:"), valueStyle.Render(FormatDuration(info.OutputDuration(fps, intermediateFrames, skipModel))),
	)

	fmt.Println(infoStyle.Render(content))
}

// FormatFileSize converts bytes to human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds float64) string {
	totalSeconds := int(seconds)
	minutes := totalSeconds / 60
	remainingSeconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d", minutes, remainingSeconds)
}
