package llm

import (
	"reflect"
	"testing"
)

func TestNormalizeFillsEveryMissingField(t *testing.T) {
	res, err := Normalize([]byte(`{}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.ATSScore != 50 {
		t.Fatalf("expected default score 50, got %d", res.ATSScore)
	}
	if !reflect.DeepEqual(res.Tips, DefaultTips) {
		t.Fatalf("expected default tips, got %v", res.Tips)
	}
	r := res.Resume
	if r.Skills == nil || r.Experience == nil || r.Education == nil || r.Projects == nil {
		t.Fatalf("expected empty non-nil slices, got %+v", r)
	}
	if r.PersonalInfo != (PersonalInfo{}) || r.Summary != "" {
		t.Fatalf("expected empty personal info and summary")
	}
	if r.SectionNames != DefaultSectionNames {
		t.Fatalf("expected default section names, got %+v", r.SectionNames)
	}
	if err := Validate(res); err != nil {
		t.Fatalf("normalized default should validate: %v", err)
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "integer", in: `{"atsScore": 77}`, want: 77},
		{name: "zero kept", in: `{"atsScore": 0}`, want: 0},
		{name: "rounded", in: `{"atsScore": 77.6}`, want: 78},
		{name: "numeric string", in: `{"atsScore": "64"}`, want: 64},
		{name: "percent string", in: `{"atsScore": "91%"}`, want: 91},
		{name: "clamped high", in: `{"atsScore": 140}`, want: 100},
		{name: "clamped low", in: `{"atsScore": -3}`, want: 0},
		{name: "null", in: `{"atsScore": null}`, want: 50},
		{name: "word", in: `{"atsScore": "high"}`, want: 50},
		{name: "object", in: `{"atsScore": {"value": 80}}`, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize([]byte(tt.in))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if res.ATSScore != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, res.ATSScore)
			}
		})
	}
}

func TestNormalizeKeepsProvidedValues(t *testing.T) {
	in := `{
		"atsScore": 88,
		"newResume": {
			"personalInfo": {"name": "Jane Doe", "email": "jane@example.com"},
			"summary": "Engineer",
			"skills": ["Go", "Postgres"],
			"experience": [{"role": "SRE", "company": "Acme", "duration": "2020-2023", "location": "Remote"}],
			"projects": [{"name": "scorer", "description": "ATS tool"}],
			"sectionNames": {"skills": "Toolbox"}
		},
		"tips": []
	}`
	res, err := Normalize([]byte(in))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	r := res.Resume
	if r.PersonalInfo.Email != "jane@example.com" || r.PersonalInfo.Name != "Jane Doe" {
		t.Fatalf("unexpected personal info %+v", r.PersonalInfo)
	}
	if len(r.Skills) != 2 {
		t.Fatalf("expected skills kept, got %v", r.Skills)
	}
	if r.Experience[0].Achievements == nil {
		t.Fatal("expected achievements defaulted to empty slice")
	}
	if r.Projects[0].Highlights == nil {
		t.Fatal("expected highlights defaulted to empty slice")
	}
	if r.SectionNames.Skills != "Toolbox" || r.SectionNames.Summary != "Professional Summary" {
		t.Fatalf("expected per-key section name fill, got %+v", r.SectionNames)
	}
	if res.Tips == nil || len(res.Tips) != 0 {
		t.Fatalf("expected explicit empty tips kept, got %v", res.Tips)
	}
}

func TestNormalizeToleratesMistypedFields(t *testing.T) {
	res, err := Normalize([]byte(`{"newResume": {"skills": "Go, SQL", "summary": {"text": "x"}}, "tips": "be concise"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(res.Resume.Skills) != 0 || res.Resume.Summary != "" {
		t.Fatalf("expected mistyped fields defaulted, got %+v", res.Resume)
	}
	if !reflect.DeepEqual(res.Tips, DefaultTips) {
		t.Fatalf("expected default tips, got %v", res.Tips)
	}
}

func TestNormalizeKeepsEntriesWithMistypedLeaves(t *testing.T) {
	in := `{
		"newResume": {
			"summary": 42,
			"skills": ["Go", 7, {"name": "SQL"}, true],
			"experience": [
				{"role": "SRE", "company": "Acme", "duration": 3, "achievements": ["Cut p99 by 40%", null]},
				"not an object"
			],
			"education": [{"degree": "BSc CS", "school": "MIT", "year": 2019}],
			"projects": [{"name": "scorer", "highlights": "fast", "link": false}],
			"sectionNames": {"skills": 5}
		},
		"tips": ["Add metrics", 3]
	}`
	res, err := Normalize([]byte(in))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	r := res.Resume
	if r.Summary != "42" {
		t.Fatalf("expected numeric summary kept as text, got %q", r.Summary)
	}
	if !reflect.DeepEqual(r.Skills, []string{"Go", "7", "true"}) {
		t.Fatalf("expected scalar skills kept, got %v", r.Skills)
	}
	if len(r.Experience) != 1 {
		t.Fatalf("expected the object experience entry kept, got %+v", r.Experience)
	}
	if r.Experience[0].Duration != "3" || !reflect.DeepEqual(r.Experience[0].Achievements, []string{"Cut p99 by 40%"}) {
		t.Fatalf("unexpected experience %+v", r.Experience[0])
	}
	want := Education{Degree: "BSc CS", School: "MIT", Year: "2019"}
	if len(r.Education) != 1 || r.Education[0] != want {
		t.Fatalf("expected education kept with year as text, got %+v", r.Education)
	}
	if len(r.Projects) != 1 || r.Projects[0].Highlights == nil || len(r.Projects[0].Highlights) != 0 || r.Projects[0].Link != "false" {
		t.Fatalf("unexpected project %+v", r.Projects)
	}
	if r.SectionNames.Skills != "5" {
		t.Fatalf("expected numeric section name kept, got %q", r.SectionNames.Skills)
	}
	if !reflect.DeepEqual(res.Tips, []string{"Add metrics", "3"}) {
		t.Fatalf("expected scalar tips kept, got %v", res.Tips)
	}
	if err := Validate(res); err != nil {
		t.Fatalf("normalized result should validate: %v", err)
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	if _, err := Normalize([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected error for array reply")
	}
}
