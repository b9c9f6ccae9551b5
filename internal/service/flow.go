package service

import (
	"fmt"
	"io/fs"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/liflo-ai/liflo/internal/markdown"
	"github.com/liflo-ai/liflo/internal/review"
)

const FlowGuidePath = "content/flow/tips.md"

type Quadrant struct {
	State       review.State `json:"state"`
	Label       string       `json:"label"`
	Challenge   string       `json:"challenge"`
	Skill       string       `json:"skill"`
	Description string       `json:"description"`
}

type FlowGuide struct {
	Title     string     `json:"title"`
	Tips      []string   `json:"tips"`
	HTML      string     `json:"html"`
	Threshold int        `json:"threshold"`
	Quadrants []Quadrant `json:"quadrants"`
}

var quadrantDescriptions = map[review.State]string{
	review.StateFlow:    "挑戦と能力がつり合い、没入しやすい状態",
	review.StateAnxiety: "挑戦が能力を上回り、負荷が高い状態",
	review.StateBoredom: "能力が挑戦を上回り、物足りない状態",
	review.StateApathy:  "挑戦も能力も低く、意欲が湧きにくい状態",
}

// FlowService serves the flow guide rendered once from embedded markdown.
type FlowService struct {
	guide *FlowGuide
}

func NewFlowService(fsys fs.FS, path string) (*FlowService, error) {
	source, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow guide: %w", err)
	}

	html, meta, err := markdown.NewParser().ParseWithFrontmatter(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flow guide: %w", err)
	}

	title, _ := meta["title"].(string)
	guide := &FlowGuide{
		Title:     title,
		Tips:      markdown.Strings(meta, "tips"),
		HTML:      string(html),
		Threshold: review.HighThreshold,
		Quadrants: quadrants(),
	}

	return &FlowService{guide: guide}, nil
}

func (s *FlowService) Guide() *FlowGuide {
	return s.guide
}

func (s *FlowService) Tips() []string {
	return s.guide.Tips
}

func quadrants() []Quadrant {
	title := cases.Title(language.English)
	level := func(high bool) string {
		if high {
			return "high"
		}
		return "low"
	}

	out := make([]Quadrant, 0, len(review.States))
	for _, st := range review.States {
		highC := st == review.StateFlow || st == review.StateAnxiety
		highS := st == review.StateFlow || st == review.StateBoredom
		out = append(out, Quadrant{
			State:       st,
			Label:       title.String(string(st)),
			Challenge:   level(highC),
			Skill:       level(highS),
			Description: quadrantDescriptions[st],
		})
	}
	return out
}
