package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BranchType is a conventional-commit branch prefix.
type BranchType string

// Valid branch types.
const (
	BranchFeat     BranchType = "feat"
	BranchFix      BranchType = "fix"
	BranchRefactor BranchType = "refactor"
	BranchDocs     BranchType = "docs"
	BranchChore    BranchType = "chore"
	BranchTest     BranchType = "test"
)

// DefaultSlugLength bounds the slug portion of generated branch names.
const DefaultSlugLength = 40

// BranchTypes lists all valid branch types in display order.
var BranchTypes = []BranchType{BranchFeat, BranchFix, BranchRefactor, BranchDocs, BranchChore, BranchTest}

// IsValid reports whether t is one of the six branch types.
func (t BranchType) IsValid() bool {
	for _, v := range BranchTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TaskContext is the input to branch naming.
type TaskContext struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Type        string // Optional hint; ignored unless a valid BranchType
}

// BranchHint is an externally supplied type/slug pair, e.g. from the calling agent.
type BranchHint struct {
	Type BranchType
	Slug string
}

// BranchNameResult is the output of branch naming. Branch is always Type + "/" + Slug.
type BranchNameResult struct {
	Branch string     `json:"branch"`
	Type   BranchType `json:"type"`
	Slug   string     `json:"slug"`
}

// NewBranchNameResult builds a result from its parts.
func NewBranchNameResult(t BranchType, slug string) BranchNameResult {
	return BranchNameResult{Branch: string(t) + "/" + slug, Type: t, Slug: slug}
}

var (
	invalidHintChars  = regexp.MustCompile(`[^a-z0-9\-/]`)
	repeatedHyphens   = regexp.MustCompile(`-+`)
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// SanitizeBranchName lowercases name, replaces anything outside [a-z0-9-/] with
// a hyphen, collapses hyphen runs, trims edge hyphens and truncates to maxLength.
// The result never starts or ends with a hyphen.
func SanitizeBranchName(name string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSlugLength
	}
	s := strings.ToLower(foldDiacritics(name))
	s = invalidHintChars.ReplaceAllString(s, "-")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return truncateSlug(s, maxLength)
}

// Slugify converts text to a lowercase hyphen-delimited token of at most maxLength bytes.
func Slugify(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSlugLength
	}
	s := strings.ToLower(foldDiacritics(text))
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return truncateSlug(s, maxLength)
}

// truncateSlug cuts s to maxLength and re-trims the hyphen the cut may expose.
// The input is ASCII at this point, so byte slicing is safe.
func truncateSlug(s string, maxLength int) string {
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	return strings.Trim(s, "-")
}

// foldDiacritics maps "Café Ñandú" to "Cafe Nandu" so accented titles keep their letters.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// StripIDPrefix removes one leading occurrence of id from title (case-insensitive),
// together with any space, hyphen or colon separators that follow it.
func StripIDPrefix(id, title string) string {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" || len(title) < len(id) {
		return title
	}
	if !strings.EqualFold(title[:len(id)], id) {
		return title
	}
	rest := title[len(id):]
	trimmed := strings.TrimLeft(rest, " -:")
	if trimmed == rest && rest != "" {
		// "task-12" must not match inside "task-123".
		return title
	}
	return trimmed
}

// GenerateFallbackBranchName derives a branch name deterministically from the task.
// Format: <type>/<id>-<slugified title>. It never fails: empty inputs still yield
// a usable name.
func GenerateFallbackBranchName(ctx TaskContext, maxLength int) BranchNameResult {
	return GenerateFallbackBranchNameWithDefault(ctx, maxLength, BranchFeat)
}

// GenerateFallbackBranchNameWithDefault is GenerateFallbackBranchName with a
// configurable default type.
func GenerateFallbackBranchNameWithDefault(ctx TaskContext, maxLength int, defaultType BranchType) BranchNameResult {
	if !defaultType.IsValid() {
		defaultType = BranchFeat
	}
	t := defaultType
	if hinted := BranchType(strings.ToLower(strings.TrimSpace(ctx.Type))); hinted.IsValid() {
		t = hinted
	}

	title := StripIDPrefix(ctx.ID, ctx.Title)
	slug := Slugify(strings.TrimSpace(ctx.ID)+"-"+title, maxLength)
	if slug == "" {
		slug = "task"
	}
	return NewBranchNameResult(t, slug)
}

// BranchFromHint turns a hint into a result. ok is false when the hint cannot
// produce a usable branch, in which case callers fall back to deterministic naming.
func BranchFromHint(hint BranchHint, maxLength int) (BranchNameResult, bool) {
	if !hint.Type.IsValid() {
		return BranchNameResult{}, false
	}
	slug := SanitizeBranchName(hint.Slug, maxLength)
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "//") {
		return BranchNameResult{}, false
	}
	return NewBranchNameResult(hint.Type, slug), true
}

// WorktreeDirName flattens a branch name into a single directory component.
func WorktreeDirName(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}
