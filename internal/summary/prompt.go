package summary

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

const promptFile = "summary.json"

// BuildPrompt assembles the generation prompt from a snapshot. Sections whose
// source is empty are omitted; experiences keep their snapshot order.
func BuildPrompt(in types.SummaryInput) string {
	lines := []string{
		prompts.MustGet(promptFile, "intro"),
		prompts.MustGet(promptFile, "tone"),
	}

	if in.JobTitle != "" {
		lines = append(lines, prompts.Format(prompts.MustGet(promptFile, "job-title"),
			map[string]string{"JobTitle": in.JobTitle}))
	}

	if skills := joinSkills(in.Skills); skills != "" {
		lines = append(lines, prompts.Format(prompts.MustGet(promptFile, "skills"),
			map[string]string{"Skills": skills}))
	}

	if len(in.Experiences) > 0 {
		itemTmpl := prompts.MustGet(promptFile, "experience-item")
		items := make([]string, len(in.Experiences))
		for i, exp := range in.Experiences {
			items[i] = prompts.Format(itemTmpl, map[string]string{
				"JobTitle":    exp.JobTitle,
				"Company":     exp.Company,
				"Description": exp.Description,
			})
		}
		lines = append(lines, prompts.Format(prompts.MustGet(promptFile, "experience"),
			map[string]string{"Experience": strings.Join(items, "\n")}))
	}

	lines = append(lines, prompts.MustGet(promptFile, "closing"))
	return strings.Join(lines, "\n\n")
}

// joinSkills comma-joins skill names. A list of blank names yields only
// separators, which still counts as content.
func joinSkills(skills []types.SkillRef) string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
