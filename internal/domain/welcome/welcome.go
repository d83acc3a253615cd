// Package welcome renders the system-authored message posted to a new group.
package welcome

import (
	"errors"
	"sort"
	"strings"
	"text/template"

	"github.com/okian/cohort/internal/domain/model"
)

// ErrNoMembers is returned when rendering for an empty group.
var ErrNoMembers = errors.New("welcome: group has no members")

const messageTemplate = `Welcome to your cohort of the week, {{ join .Names }}!
{{- if .Specialties }}
Together you bring {{ join .Specialties }}.
{{- end }}
Say hi and find a time that works for everyone.`

var tmpl = template.Must(template.New("welcome").Funcs(template.FuncMap{
	"join": joinNatural,
}).Parse(messageTemplate))

type view struct {
	Names       []string
	Specialties []string
}

// Render returns the welcome message for members. Members without a first
// name are addressed by id. Specialties are deduplicated and sorted.
func Render(members []model.CandidateProfile) (string, error) {
	if len(members) == 0 {
		return "", ErrNoMembers
	}

	v := view{Names: make([]string, 0, len(members))}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		name := strings.TrimSpace(m.FirstName)
		if name == "" {
			name = m.ID
		}
		v.Names = append(v.Names, name)

		if m.Specialty != "" && !seen[m.Specialty] {
			seen[m.Specialty] = true
			v.Specialties = append(v.Specialties, m.Specialty)
		}
	}
	sort.Strings(v.Specialties)

	var sb strings.Builder
	if err := tmpl.Execute(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// joinNatural joins items as "a", "a and b" or "a, b and c".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
