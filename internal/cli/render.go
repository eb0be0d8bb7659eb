package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/veritaskit/veritas/internal/debate"
	"github.com/veritaskit/veritas/internal/model"
)

// sessionDocument is the JSON output shape for a finished session.
type sessionDocument struct {
	ID         string                `json:"id"`
	State      model.SessionState    `json:"state"`
	Claim      *model.Claim          `json:"claim,omitempty"`
	Transcript []model.DebateMessage `json:"transcript"`
	Rounds     int                   `json:"rounds"`
	Verdict    *model.Verdict        `json:"verdict,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// renderJSON writes the whole session as an indented JSON document.
func renderJSON(w io.Writer, session *model.DebateSession, runErr error) error {
	doc := sessionDocument{
		ID:         session.ID.String(),
		State:      session.State(),
		Claim:      session.Claim(),
		Transcript: session.Transcript(),
		Rounds:     session.Round(),
		Verdict:    session.Verdict(),
	}
	if runErr != nil {
		doc.Error = debate.SanitizeFailure(runErr).Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// renderVerdict prints a human-readable verdict summary.
func renderVerdict(w io.Writer, session *model.DebateSession) {
	verdict := session.Verdict()
	if verdict == nil {
		fmt.Fprintln(w, "No verdict produced.")
		return
	}

	if claim := session.Claim(); claim != nil {
		fmt.Fprintf(w, "Claim:      %s\n", claim.CoreClaim)
	}
	fmt.Fprintf(w, "Verdict:    %s\n", verdictLabel(verdict.Category))
	fmt.Fprintf(w, "Confidence: %.0f/100\n", verdict.Confidence)
	fmt.Fprintf(w, "Rounds:     %d\n", verdict.Metadata.RoundsCompleted)
	fmt.Fprintf(w, "Sources:    %d\n", verdict.Metadata.TotalSources)
	fmt.Fprintln(w)
	fmt.Fprintln(w, verdict.Summary)

	if len(verdict.Analysis.AgreedFacts) > 0 {
		fmt.Fprintln(w, "\nAgreed facts:")
		for _, f := range verdict.Analysis.AgreedFacts {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(verdict.Analysis.DisputedPoints) > 0 {
		fmt.Fprintln(w, "\nDisputed points:")
		for _, p := range verdict.Analysis.DisputedPoints {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if len(verdict.Sources) > 0 {
		fmt.Fprintln(w, "\nCited sources:")
		for _, src := range verdict.Sources {
			fmt.Fprintf(w, "  [%s] %s\n", src.Reliability, src.URL)
		}
	}
}

func verdictLabel(cat model.VerdictCategory) string {
	return strings.ToUpper(strings.ReplaceAll(string(cat), "_", " "))
}
