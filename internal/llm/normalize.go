package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const defaultATSScore = 50

// DefaultSectionNames are used for any label the model leaves out.
var DefaultSectionNames = SectionNames{
	Summary:    "Professional Summary",
	Skills:     "Core Competencies",
	Experience: "Experience",
	Education:  "Education",
	Projects:   "Projects",
}

// DefaultTips replace a missing tips list.
var DefaultTips = []string{
	"Focus on quantifiable achievements.",
	"Ensure your contact info is up to date.",
}

type rawReply struct {
	ATSScore  json.RawMessage `json:"atsScore"`
	NewResume json.RawMessage `json:"newResume"`
	Tips      json.RawMessage `json:"tips"`
}

// Normalize decodes a JSON object reply and fills every missing or mistyped
// field with its default. Mistyped values only lose themselves: a bad entry
// drops that entry, and numeric or boolean leaves are kept as text. It only
// fails when data is not a JSON object.
func Normalize(data []byte) (Result, error) {
	var reply rawReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return Result{}, fmt.Errorf("decode model reply: %w", err)
	}

	out := Result{
		ATSScore: normalizeScore(reply.ATSScore),
		Tips:     append([]string(nil), DefaultTips...),
	}
	if tips, ok := decodeTree(reply.Tips).([]any); ok {
		out.Tips = stringList(tips)
	}

	resume, _ := decodeTree(reply.NewResume).(map[string]any)
	r := &out.Resume
	if info, ok := resume["personalInfo"].(map[string]any); ok {
		r.PersonalInfo = PersonalInfo{
			Name:     leafString(info["name"]),
			Email:    leafString(info["email"]),
			Phone:    leafString(info["phone"]),
			LinkedIn: leafString(info["linkedin"]),
			GitHub:   leafString(info["github"]),
			Location: leafString(info["location"]),
		}
	}
	r.Summary = leafString(resume["summary"])
	r.Skills = []string{}
	if skills, ok := resume["skills"].([]any); ok {
		r.Skills = stringList(skills)
	}

	r.Experience = []Experience{}
	for _, item := range objectList(resume["experience"]) {
		r.Experience = append(r.Experience, Experience{
			Role:         leafString(item["role"]),
			Company:      leafString(item["company"]),
			Duration:     leafString(item["duration"]),
			Location:     leafString(item["location"]),
			Achievements: optionalList(item["achievements"]),
		})
	}
	r.Education = []Education{}
	for _, item := range objectList(resume["education"]) {
		r.Education = append(r.Education, Education{
			Degree: leafString(item["degree"]),
			School: leafString(item["school"]),
			Year:   leafString(item["year"]),
		})
	}
	r.Projects = []Project{}
	for _, item := range objectList(resume["projects"]) {
		r.Projects = append(r.Projects, Project{
			Name:        leafString(item["name"]),
			Description: leafString(item["description"]),
			Highlights:  optionalList(item["highlights"]),
			Link:        leafString(item["link"]),
		})
	}

	var names SectionNames
	if in, ok := resume["sectionNames"].(map[string]any); ok {
		names = SectionNames{
			Summary:    leafString(in["summary"]),
			Skills:     leafString(in["skills"]),
			Experience: leafString(in["experience"]),
			Education:  leafString(in["education"]),
			Projects:   leafString(in["projects"]),
		}
	}
	r.SectionNames = fillSectionNames(names)
	return out, nil
}

// normalizeScore accepts numbers and numeric strings, rounds, and clamps to
// [0,100]. Anything else scores 50.
func normalizeScore(raw json.RawMessage) int {
	var n json.Number
	switch t := decodeTree(raw).(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")))
	default:
		return defaultATSScore
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultATSScore
	}
	return clampScore(int(math.Round(f)))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func fillSectionNames(in SectionNames) SectionNames {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return SectionNames{
		Summary:    pick(in.Summary, DefaultSectionNames.Summary),
		Skills:     pick(in.Skills, DefaultSectionNames.Skills),
		Experience: pick(in.Experience, DefaultSectionNames.Experience),
		Education:  pick(in.Education, DefaultSectionNames.Education),
		Projects:   pick(in.Projects, DefaultSectionNames.Projects),
	}
}

// decodeTree decodes raw into a generic value, keeping numbers as
// json.Number. Absent, null or invalid input yields nil.
func decodeTree(raw json.RawMessage) any {
	if !isPresent(raw) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// leafString renders scalar values as text. Objects, arrays and null give "".
func leafString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// stringList keeps the scalar items of a list and skips the rest.
func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case string, json.Number, bool:
			out = append(out, leafString(item))
		}
	}
	return out
}

func optionalList(v any) []string {
	if items, ok := v.([]any); ok {
		return stringList(items)
	}
	return []string{}
}

// objectList returns the object entries of a list value.
func objectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
