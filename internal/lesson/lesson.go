// Package lesson loads practice prompts from lesson files.
package lesson

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lesson is a named set of prompts to read aloud.
type Lesson struct {
	Name        string   `yaml:"-"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Prompts     []string `yaml:"prompts"`
	Path        string   `yaml:"-"`
}

// ErrEmptyLesson is returned when a lesson file has no prompts.
var ErrEmptyLesson = errors.New("lesson has no prompts")

// Load reads a lesson file. YAML files carry metadata; any other file is
// read as one prompt per line.
func Load(path string) (Lesson, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !isYAML(path) {
		prompts, err := LoadPrompts(path)
		if err != nil {
			return Lesson{}, err
		}
		return Lesson{Name: name, Title: name, Prompts: prompts, Path: path}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Lesson{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only lesson file.
			_ = cerr
		}
	}()
	l, err := decodeYAML(file)
	if err != nil {
		return Lesson{}, fmt.Errorf("failed to parse lesson %s: %w", path, err)
	}
	l.Name = name
	l.Path = path
	if l.Title == "" {
		l.Title = name
	}
	return l, nil
}

func decodeYAML(r io.Reader) (Lesson, error) {
	var l Lesson
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Lesson{}, err
	}
	l.Prompts = cleanPrompts(l.Prompts)
	if len(l.Prompts) == 0 {
		return Lesson{}, ErrEmptyLesson
	}
	return l, nil
}

// LoadPrompts reads one prompt per line. Blank lines and lines starting
// with '#' are skipped.
func LoadPrompts(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only lesson file.
			_ = cerr
		}
	}()

	var prompts []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		prompts = append(prompts, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	prompts = cleanPrompts(prompts)
	if len(prompts) == 0 {
		return nil, ErrEmptyLesson
	}
	return prompts, nil
}

// ListLessons loads every lesson file in dir, sorted by name.
// A missing directory yields no lessons.
func ListLessons(dir string) ([]Lesson, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lesson dir: %w", err)
	}
	var lessons []Lesson
	for _, entry := range entries {
		if entry.IsDir() || !isLessonFile(entry.Name()) {
			continue
		}
		l, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Name < lessons[j].Name
	})
	return lessons, nil
}

// Find returns the lesson called name.
func Find(lessons []Lesson, name string) (Lesson, bool) {
	for _, l := range lessons {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Lesson{}, false
}

// Resolve picks lessons for a practice run. An existing file path is loaded
// directly; otherwise name is looked up in dir and then among the built-in
// lessons. An empty name selects every lesson available.
func Resolve(dir, name string) ([]Lesson, error) {
	if name != "" {
		if _, err := os.Stat(name); err == nil {
			l, err := Load(name)
			if err != nil {
				return nil, err
			}
			return []Lesson{l}, nil
		}
	}
	lessons, err := ListLessons(dir)
	if err != nil {
		return nil, err
	}
	lessons = append(lessons, Builtin()...)
	if name == "" {
		return lessons, nil
	}
	if l, ok := Find(lessons, name); ok {
		return []Lesson{l}, nil
	}
	return nil, fmt.Errorf("lesson %q not found", name)
}

// Prompts flattens the prompts of lessons.
func Prompts(lessons []Lesson) []string {
	var out []string
	for _, l := range lessons {
		out = append(out, l.Prompts...)
	}
	return out
}

func cleanPrompts(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isLessonFile(name string) bool {
	return isYAML(name) || strings.EqualFold(filepath.Ext(name), ".txt")
}
