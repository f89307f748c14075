package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"studycapture/domain/core/entities"
	"studycapture/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const previewLength = 200

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(title))
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No data found."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func field(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label+":")+" "+value)
}

func renderStats(w io.Writer, s *entities.Stats) {
	heading(w, "📊 DATABASE STATISTICS")
	field(w, "Topics", strconv.Itoa(s.Topics))
	field(w, "Notes", strconv.Itoa(s.Notes))
	field(w, "Keywords", strconv.Itoa(s.UniqueKeywords))
	field(w, "Mirrored", strconv.Itoa(s.MirroredNotes))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes by Subject:")
	if len(s.NotesBySubject) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none yet"))
	}
	for _, sc := range s.NotesBySubject {
		fmt.Fprintf(w, "  %s: %d\n", sc.Subject, sc.Count)
	}
}

func renderTopics(w io.Writer, topics []entities.TopicWithCount) {
	heading(w, "📚 TOPICS")
	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, []string{
			strconv.FormatInt(int64(t.ID), 10),
			t.Name,
			t.Subject,
			strconv.Itoa(t.NoteCount),
		})
	}
	renderTable(w, []string{"ID", "Topic", "Subject", "Notes"}, rows)
}

func renderNotes(w io.Writer, notes []entities.NoteSummary, limit int) {
	heading(w, fmt.Sprintf("📝 RECENT NOTES (Last %d)", limit))
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			strconv.FormatInt(int64(n.ID), 10),
			utils.TruncateRunes(n.Title, 60),
			n.Topic,
			n.CreatedAt,
		})
	}
	renderTable(w, []string{"ID", "Title", "Topic", "Created"}, rows)
}

func renderNote(w io.Writer, n *entities.NoteDetail) {
	heading(w, fmt.Sprintf("📄 NOTE DETAILS (ID: %d)", n.ID))
	field(w, "Title", n.Title)
	field(w, "Topic", fmt.Sprintf("%s (%s)", n.Topic, n.Subject))
	field(w, "Created", n.CreatedAt)
	if n.SourceURL != "" {
		field(w, "Source", n.SourceURL)
	}
	if n.MirrorURL != "" {
		field(w, "Notion", n.MirrorURL)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keywords:")
	fmt.Fprintf(w, "  %s\n", n.Keywords)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Original Text:")
	preview := utils.TruncateRunes(n.OriginalText, previewLength)
	if preview != n.OriginalText {
		preview += "..."
	}
	fmt.Fprintf(w, "  %s\n", preview)
}
