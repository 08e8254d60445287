package service

import (
	"fmt"
	"strings"

	"github.com/protein-atlas-server/internal/domain"
)

// maxChatItems caps how many entries a topical answer lists.
const maxChatItems = 3

// ChatFormatter renders canned natural-language answers about a reconciled
// record. Routing is deterministic keyword matching, not ML: the question is
// lowercased and checked against a fixed, ordered list of keyword sets, and
// the first match wins.
type ChatFormatter struct{}

// NewChatFormatter creates a chat formatter.
func NewChatFormatter() *ChatFormatter {
	return &ChatFormatter{}
}

// chatRoutes is the ordered routing table. Earlier rows win ties.
var chatRoutes = []struct {
	keywords []string
	render   func(*domain.ProteinRecord) string
}{
	{[]string{"function", "do", "role"}, functionAnswer},
	{[]string{"disease", "condition", "disorder"}, diseaseAnswer},
	{[]string{"drug", "medication", "treatment"}, drugAnswer},
	{[]string{"structure", "3d"}, structureAnswer},
	{[]string{"interaction", "partner", "bind"}, interactionAnswer},
}

// Answer renders an answer to a free-text question about the record. Prior
// turns are accepted for interface completeness but routing uses only the
// latest question.
func (f *ChatFormatter) Answer(record *domain.ProteinRecord, question string, history []domain.ChatTurn) string {
	lowered := strings.ToLower(question)

	body := ""
	for _, route := range chatRoutes {
		if containsAny(lowered, route.keywords) {
			body = route.render(record)
			break
		}
	}
	if body == "" {
		body = generalAnswer(record)
	}

	return body + "\n\nThis information was retrieved from " + record.DataSource + "."
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func functionAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)
	if record.Identity.Function != "" {
		return fmt.Sprintf("%s function: %s", name, record.Identity.Function)
	}
	return fmt.Sprintf("No functional annotation is available for %s.", name)
}

func diseaseAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)
	diseases := record.DiseaseDrug.Diseases
	if len(diseases) == 0 {
		return fmt.Sprintf("No disease associations were found for %s.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Diseases associated with %s:\n", name)
	for i, disease := range diseases {
		if i == maxChatItems {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", disease.Name, disease.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func drugAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)
	drugs := record.DiseaseDrug.Drugs
	if len(drugs) == 0 {
		return fmt.Sprintf("No drugs targeting %s were found.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Drugs targeting %s:\n", name)
	for i, drug := range drugs {
		if i == maxChatItems {
			break
		}
		mechanism := drug.Mechanism
		if mechanism == "" {
			mechanism = "Mechanism unknown"
		}
		fmt.Fprintf(&b, "- %s: %s\n", drug.Name, mechanism)
	}
	return strings.TrimRight(b.String(), "\n")
}

func structureAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)
	if len(record.Structures) == 0 {
		return fmt.Sprintf("No structural data is available for %s.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Structures available for %s:\n", name)
	for i, entry := range record.Structures {
		if i == maxChatItems {
			break
		}
		method := entry.Method
		if method == "" {
			method = "unknown method"
		}
		fmt.Fprintf(&b, "- %s from %s (%s)\n", entry.ID, entry.Source, method)
	}
	return strings.TrimRight(b.String(), "\n")
}

func interactionAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)
	if len(record.Interactions) == 0 {
		return fmt.Sprintf("No interaction partners were found for %s.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Interaction partners of %s:\n", name)
	for i, edge := range record.Interactions {
		if i == maxChatItems {
			break
		}
		partner := edge.TargetName
		if partner == "" {
			partner = edge.TargetID
		}
		fmt.Fprintf(&b, "- %s\n", partner)
	}
	return strings.TrimRight(b.String(), "\n")
}

// generalAnswer assembles a summary when no keyword set matched.
func generalAnswer(record *domain.ProteinRecord) string {
	name := displayName(record)

	var parts []string
	if record.Identity.Summary != "" {
		parts = append(parts, record.Identity.Summary)
	}
	if record.Identity.Function != "" && record.Identity.Function != record.Identity.Summary {
		parts = append(parts, record.Identity.Function)
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("Limited information is available for %s.", name))
	}

	if n := len(record.Structures); n > 0 {
		parts = append(parts, fmt.Sprintf("%d structure entries are available.", n))
	}
	if n := len(record.DiseaseDrug.Diseases); n > 0 {
		parts = append(parts, fmt.Sprintf("%d disease associations are known.", n))
	}
	if n := len(record.DiseaseDrug.Drugs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d drugs target this protein.", n))
	}

	return strings.Join(parts, " ")
}

// displayName picks the best human-readable name for the record.
func displayName(record *domain.ProteinRecord) string {
	switch {
	case record.Identity.ProteinName != "":
		return record.Identity.ProteinName
	case record.Identity.GeneSymbol != "":
		return record.Identity.GeneSymbol
	default:
		return record.Query
	}
}
