package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/taskforge/transmute/internal/domain"
)

// namingPromptPrefix ends the naming prompt so a model that continues the
// text, rather than answering it, still yields parseable JSON.
const namingPromptPrefix = `{"type":"`

// BranchNamer picks a branch name for a task: an explicit hint wins, then the
// text generator when enabled, then the deterministic fallback. It never fails.
type BranchNamer struct {
	gen         domain.TextGenerator
	log         domain.Logger
	defaultType domain.BranchType
	maxLength   int
	useAI       bool
}

// NewBranchNamer creates a BranchNamer. gen may be nil, which disables AI
// naming regardless of cfg.
func NewBranchNamer(gen domain.TextGenerator, cfg *domain.Config, log domain.Logger) *BranchNamer {
	if log == nil {
		log = domain.NopLogger{}
	}
	return &BranchNamer{
		gen:         gen,
		log:         log,
		defaultType: cfg.DefaultBranchType,
		maxLength:   cfg.MaxBranchSlugLength,
		useAI:       cfg.UseAIBranchNaming && gen != nil,
	}
}

// Name returns the branch name for task.
func (n *BranchNamer) Name(ctx context.Context, task domain.TaskContext, hint *domain.BranchHint) domain.BranchNameResult {
	if hint != nil {
		if result, ok := domain.BranchFromHint(*hint, n.maxLength); ok {
			return result
		}
		n.log.Warn(task.ID, "naming", fmt.Sprintf("ignoring unusable branch hint %s/%q", hint.Type, hint.Slug))
		return n.fallback(task)
	}

	if n.useAI {
		result, err := n.nameWithAI(ctx, task)
		if err == nil {
			return result
		}
		n.log.Warn(task.ID, "naming", fmt.Sprintf("AI branch naming failed, using fallback: %v", err))
	}

	return n.fallback(task)
}

func (n *BranchNamer) fallback(task domain.TaskContext) domain.BranchNameResult {
	return domain.GenerateFallbackBranchNameWithDefault(task, n.maxLength, n.defaultType)
}

// nameWithAI runs one prompt in a throwaway session that is always deleted.
func (n *BranchNamer) nameWithAI(ctx context.Context, task domain.TaskContext) (domain.BranchNameResult, error) {
	sessionID, err := n.gen.CreateSession(ctx, "transmute-naming-"+uuid.NewString()[:8])
	if err != nil {
		return domain.BranchNameResult{}, fmt.Errorf("create naming session: %w", err)
	}
	defer func() {
		if err := n.gen.DeleteSession(context.WithoutCancel(ctx), sessionID); err != nil {
			n.log.Warn(task.ID, "naming", fmt.Sprintf("delete naming session %s: %v", sessionID, err))
		}
	}()

	text, err := n.gen.Prompt(ctx, sessionID, BuildNamingPrompt(task, n.maxLength))
	if err != nil {
		return domain.BranchNameResult{}, fmt.Errorf("prompt naming session: %w", err)
	}

	hint, err := ParseBranchHint(text)
	if err != nil {
		return domain.BranchNameResult{}, err
	}
	result, ok := domain.BranchFromHint(hint, n.maxLength)
	if !ok {
		return domain.BranchNameResult{}, fmt.Errorf("invalid AI suggestion %s/%q", hint.Type, hint.Slug)
	}
	n.log.Debug(task.ID, "naming", "AI suggested "+result.Branch)
	return result, nil
}

// BuildNamingPrompt asks for a {"type","slug"} object and ends with the
// opening of that object.
func BuildNamingPrompt(task domain.TaskContext, maxLength int) string {
	types := make([]string, len(domain.BranchTypes))
	for i, t := range domain.BranchTypes {
		types[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("Suggest a git branch name for this task.\n")
	fmt.Fprintf(&b, "Reply with only a JSON object {\"type\": one of %s, \"slug\": kebab-case, at most %d characters}.\n\n",
		strings.Join(types, "|"), maxLength)
	fmt.Fprintf(&b, "Task %s: %s\n", task.ID, task.Title)
	if task.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", task.Description)
	}
	if task.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	}
	if task.Type != "" {
		fmt.Fprintf(&b, "Suggested type: %s\n", task.Type)
	}
	b.WriteString("\n")
	b.WriteString(namingPromptPrefix)
	return b.String()
}

var (
	fencePattern      = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
	branchLinePattern = regexp.MustCompile(`(?m)^\s*(feat|fix|refactor|docs|chore|test)/([A-Za-z0-9._/-]+)\s*$`)
)

// ErrUnparseableSuggestion is returned when a response holds no branch hint.
var ErrUnparseableSuggestion = errors.New("no branch suggestion in response")

// ParseBranchHint extracts a type and slug from a model response. Accepted
// shapes are a JSON object, the same wrapped in a code fence, a continuation
// of the prompt's `{"type":"` prefix, or a bare type/slug line.
func ParseBranchHint(text string) (domain.BranchHint, error) {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	if hint, ok := parseHintJSON(text); ok {
		return hint, nil
	}
	if !strings.HasPrefix(text, "{") {
		if hint, ok := parseHintJSON(namingPromptPrefix + text); ok {
			return hint, nil
		}
	}
	if m := branchLinePattern.FindStringSubmatch(text); m != nil {
		return domain.BranchHint{Type: domain.BranchType(m[1]), Slug: m[2]}, nil
	}
	return domain.BranchHint{}, ErrUnparseableSuggestion
}

func parseHintJSON(text string) (domain.BranchHint, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return domain.BranchHint{}, false
	}

	var raw struct {
		Type string `json:"type"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return domain.BranchHint{}, false
	}
	if raw.Type == "" || raw.Slug == "" {
		return domain.BranchHint{}, false
	}
	return domain.BranchHint{Type: domain.BranchType(strings.ToLower(strings.TrimSpace(raw.Type))), Slug: raw.Slug}, true
}
