// package formatter provides functions to export release lists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/radar/internal/models"
)

// ExportToCSV converts a release list to CSV format with columns:
// ID, Title, Primary Artist, Collaborators, Type, Release Date, Window, Tracks, URL
func ExportToCSV(releases []models.ClassifiedRelease) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Primary Artist", "Collaborators", "Type", "Release Date", "Window", "Tracks", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, release := range releases {
		record := []string{
			release.Entry.ID,
			release.Entry.Title,
			release.PrimaryArtist.Name,
			strings.Join(release.Collaborators, "; "),
			string(release.Entry.Type),
			release.Entry.DateString(),
			release.Window.String(),
			strconv.Itoa(release.Entry.TrackCount),
			release.Entry.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a release list to Markdown format under the given title
func ExportToMarkdown(title string, releases []models.ClassifiedRelease) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Releases**: %d\n\n", len(releases)))

	for i, release := range releases {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, releaseLine(release)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a release list to plain text format
func ExportToText(title string, releases []models.ClassifiedRelease) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Releases: %d\n\n", len(releases)))

	for i, release := range releases {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, releaseLine(release)))
	}

	return buf.Bytes(), nil
}

// releaseLine renders one release as a single display line:
// Artist - Title (type, date) [with A, B]
func releaseLine(release models.ClassifiedRelease) string {
	line := fmt.Sprintf("%s - %s (%s, %s)",
		release.PrimaryArtist.Name,
		release.Entry.Title,
		release.Entry.Type,
		release.Entry.DateString(),
	)

	if len(release.Collaborators) > 0 {
		line += fmt.Sprintf(" [with %s]", strings.Join(release.Collaborators, ", "))
	}

	return line
}

// WriteCSVExport exports a release list to a CSV file.
//
// Defaults to releases.csv as the filename.
func WriteCSVExport(releases []models.ClassifiedRelease, filepath string) (string, error) {
	if filepath == "" {
		filepath = "releases.csv"
	}

	csvData, err := ExportToCSV(releases)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports a release list to a Markdown file.
//
// Defaults to releases.md as the filename.
func WriteMarkdownExport(title string, releases []models.ClassifiedRelease, filepath string) (string, error) {
	if filepath == "" {
		filepath = "releases.md"
	}

	mdData, err := ExportToMarkdown(title, releases)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a release list to a plain text file.
//
// Defaults to releases.txt as the filename.
func WriteTextExport(title string, releases []models.ClassifiedRelease, filepath string) (string, error) {
	if filepath == "" {
		filepath = "releases.txt"
	}

	textData, err := ExportToText(title, releases)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
