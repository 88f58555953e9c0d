package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/resumefire/backend/go-services/internal/resume"
)

// degreeInstruction picks the rewrite guidance for an intensity level.
func degreeInstruction(intensity int) string {
	switch {
	case intensity <= 3:
		return "Make subtle changes. Focus on rephrasing existing content to use keywords from the job description. Do not invent new skills or experiences. Preserve the original tone and details."
	case intensity <= 7:
		return "Significantly rewrite content to highlight relevant achievements. Reorder bullet points for impact. Adjust the summary to directly address the role. You can infer closely related skills but do not add completely new ones."
	default:
		return "Rewrite the resume heavily to align with the job description. You have creative freedom to extrapolate from the user's experience and present it in the most favorable way. The output should strongly reflect the requirements of the job description."
	}
}

// promptPayload blanks the protected sections so the generator does not
// spend effort on them.
func promptPayload(doc resume.Document, protected resume.SectionSet) resume.Document {
	out := doc.Clone()
	for _, k := range protected.Keys() {
		switch k {
		case resume.SectionSummary:
			out.Summary = ""
		case resume.SectionExperience:
			out.Experience = []resume.Experience{}
		case resume.SectionProjects:
			out.Projects = []resume.Project{}
		case resume.SectionEducation:
			out.Education = []resume.Education{}
		case resume.SectionSkills:
			out.Skills = []string{}
		}
	}
	return out
}

func tailorPrompt(doc resume.Document, in Instructions) (string, error) {
	protected := in.ProtectedSet()
	body, err := json.MarshalIndent(promptPayload(doc, protected), "", "  ")
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(protected))
	for _, k := range protected.Keys() {
		names = append(names, string(k))
	}
	excluded := strings.Join(names, ", ")
	if excluded == "" {
		excluded = "None"
	}

	var b strings.Builder
	b.WriteString("You are an expert resume writer. Your task is to tailor a user's resume for a specific job description.\n")
	b.WriteString("You will be given the user's current resume data in JSON format, a job description, a list of sections to IGNORE, and a modification degree from 1 (subtle) to 10 (aggressive).\n\n")
	fmt.Fprintf(&b, "Job Description:\n---\n%s\n---\n\n", in.JobText)
	fmt.Fprintf(&b, "Modification Degree: %d/10\nInstruction: %s\n\n", in.Intensity, degreeInstruction(in.Intensity))
	fmt.Fprintf(&b, "User's Current Resume (JSON):\n---\n%s\n---\n\n", body)
	b.WriteString("Instructions for output:\n")
	b.WriteString("1. Modify the user's resume data based on ALL the instructions.\n")
	b.WriteString("2. The sections to modify are: 'summary', 'experience', 'projects', 'education', 'skills'.\n")
	fmt.Fprintf(&b, "3. The following sections MUST NOT be changed: %s.\n", excluded)
	b.WriteString("4. Return the COMPLETE, MODIFIED resume data as a single, valid JSON object.\n")
	b.WriteString("5. The JSON object must conform to the structure of the input resume data.\n")
	b.WriteString("6. Do NOT wrap the JSON in markdown fences.\n")
	return b.String(), nil
}

func summaryPrompt(title string, experience []resume.Experience, skills []string) string {
	lines := make([]string, 0, len(experience))
	for _, e := range experience {
		lines = append(lines, fmt.Sprintf("- %s at %s: %s", e.JobTitle, e.Company, e.Description))
	}
	return fmt.Sprintf(`Based on the following information, write a compelling and professional resume summary of 2-3 sentences.
The summary should be from a first-person perspective.

Target Role: %s

Key Skills: %s

Work Experience:
%s

Generate only the summary text, without any introductory phrases like "Here is the summary:".`,
		title, strings.Join(skills, ", "), strings.Join(lines, "\n"))
}

var fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// stripFences removes a Markdown code fence wrapped around generator output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return s
}
