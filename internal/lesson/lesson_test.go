package lesson

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadPromptsSkipsBlankAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basics.txt")
	writeFile(t, path, "# warmup\n\n  Think about three things  \nThe weather is nice today\n")

	prompts, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if len(prompts) != 2 || prompts[0] != "Think about three things" {
		t.Fatalf("unexpected prompts: %q", prompts)
	}
}

func TestLoadPromptsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	writeFile(t, path, "# nothing\n\n")
	if _, err := LoadPrompts(path); err != ErrEmptyLesson {
		t.Fatalf("expected ErrEmptyLesson, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "travel.yaml")
	writeFile(t, path, "title: Travel\ncategory: vocabulary\nprompts:\n  - Where is the station?\n  - \"\"\n  - I would like a ticket\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Name != "travel" || l.Title != "Travel" || l.Category != "vocabulary" {
		t.Fatalf("unexpected lesson: %+v", l)
	}
	if len(l.Prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %q", l.Prompts)
	}
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yml")
	writeFile(t, path, "titel: Oops\nprompts: [hello]\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestListLessons(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "second\n")
	writeFile(t, filepath.Join(dir, "a.yaml"), "prompts: [first]\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored\n")

	lessons, err := ListLessons(dir)
	if err != nil {
		t.Fatalf("ListLessons: %v", err)
	}
	if len(lessons) != 2 || lessons[0].Name != "a" || lessons[1].Name != "b" {
		t.Fatalf("unexpected lessons: %+v", lessons)
	}

	missing, err := ListLessons(filepath.Join(dir, "missing"))
	if err != nil || missing != nil {
		t.Fatalf("expected no lessons for missing dir, got %v, %v", missing, err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mine.txt"), "custom prompt\n")

	all, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("Resolve all: %v", err)
	}
	if len(all) != 1+len(Builtin()) {
		t.Fatalf("expected user and builtin lessons, got %d", len(all))
	}

	th, err := Resolve(dir, "th-sounds")
	if err != nil || len(th) != 1 || th[0].Title != "Th Sound Practice" {
		t.Fatalf("unexpected builtin lookup: %+v, %v", th, err)
	}

	byPath, err := Resolve(dir, filepath.Join(dir, "mine.txt"))
	if err != nil || Prompts(byPath)[0] != "custom prompt" {
		t.Fatalf("unexpected path lookup: %+v, %v", byPath, err)
	}

	if _, err := Resolve(dir, "nope"); err == nil {
		t.Fatalf("expected error for unknown lesson")
	}
}

func TestFilterForLang(t *testing.T) {
	filter := FilterForLang("en-US")
	if !filter("How was your weekend? I hope you had a great time!") {
		t.Fatalf("expected english prompt to pass")
	}
	for _, p := range []string{"Le café est très bon", "Ça va", "1234 ..."} {
		if filter(p) {
			t.Fatalf("expected %q to be rejected", p)
		}
	}
	kept := Filter([]string{"hello there", "naïve idea"}, filter)
	if len(kept) != 1 || kept[0] != "hello there" {
		t.Fatalf("unexpected filtered prompts: %q", kept)
	}
}
