// Package cli provides terminal rendering for the tutor chat.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/paperlab/oshiete/internal/models"
	"github.com/paperlab/oshiete/pkg/utils"
)

// OutputFormat is the format for rendered output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const divider = "─────────────────────────────────────────────────────────"

// WriteMessage renders one transcript message.
func WriteMessage(w io.Writer, msg models.Message) {
	label := "you"
	if msg.Role == models.RoleAssistant {
		label = "tutor"
	}
	fmt.Fprintf(w, "\n[%s] %s\n", label, msg.Content)
}

// WriteSession renders a session snapshot: state, paper info, and transcript.
func WriteSession(w io.Writer, view models.SessionView, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	fmt.Fprintf(w, "session %s (%s)\n", view.ID, view.State)
	if view.Paper != nil {
		fmt.Fprintf(w, "paper: %s (%s characters)\n", view.Paper.Filename, utils.FormatCount(view.Paper.Chars))
	}
	if len(view.Transcript) == 0 {
		fmt.Fprintln(w, "no messages yet")
		return nil
	}
	for _, msg := range view.Transcript {
		WriteMessage(w, msg)
	}
	return nil
}

// WriteFindResults renders find-in-paper matches.
func WriteFindResults(w io.Writer, resp *models.FindResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	if resp.AutoFuzzy {
		fmt.Fprintf(w, "\nNo exact matches for %q; showing close matches instead.\n", resp.Query)
	}
	fmt.Fprintf(w, "\nFound %d passage(s) for %q\n", resp.Total, resp.Query)
	for _, m := range resp.Matches {
		fmt.Fprintln(w, divider)
		fmt.Fprintf(w, "passage %d | score %.4f\n", m.ChunkIndex, m.Score)
		fmt.Fprintf(w, "%s\n", utils.Truncate(strings.TrimSpace(m.Content), 300))
	}
	return nil
}

// WriteWelcome prints the empty-state guidance shown before a paper is loaded.
func WriteWelcome(w io.Writer) {
	fmt.Fprintln(w, `Research Paper Tutor

Load a research paper to get started:
  /load <path>     Load a paper (.pdf, .docx, .xlsx, .txt, .md, .rst)

Once a paper is loaded, just type to ask questions about it.
The tutor will guide you step by step through the concepts.

Commands:
  /load <path>   Load (or replace) the paper
  /find <query>  Find passages in the paper
  /clear         Clear the chat and start over
  /reinit        Retry backend initialization after a failure
  /session       Show the session state and transcript
  /quit          Exit`)
}
