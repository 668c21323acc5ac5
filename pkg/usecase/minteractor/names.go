// 指示: miu200521358
package minteractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	fallbackBoneName      = "fbx_bone"
	uniqueNameSuffixLimit = 100000
)

var (
	boneSeparatorPattern      = regexp.MustCompile(`[\s/\\:;.,]+`)
	boneInvalidCharPattern    = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
	underscoreRunPattern      = regexp.MustCompile(`_+`)
	animationSpacePattern     = regexp.MustCompile(`\s+`)
	animationStemInvalidChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// normalizeName は名前照合用に全角/大文字小文字を畳み込み、英数字以外を除く。
func normalizeName(value string) string {
	folded := cases.Fold().String(norm.NFKC.String(strings.TrimSpace(value)))
	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// sanitizeBoneName はボーン名に使えない文字を _ に置き換える。
func sanitizeBoneName(value string) string {
	cleaned := boneSeparatorPattern.ReplaceAllString(strings.TrimSpace(value), "_")
	cleaned = boneInvalidCharPattern.ReplaceAllString(cleaned, "_")
	cleaned = underscoreRunPattern.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return fallbackBoneName
	}
	return cleaned
}

// normalizedNameIndex は正規化名から元の名前一覧を引く。
type normalizedNameIndex map[string][]string

func newNormalizedNameIndex(names []string) normalizedNameIndex {
	index := normalizedNameIndex{}
	for _, name := range names {
		normalized := normalizeName(name)
		if normalized == "" {
			continue
		}
		index[normalized] = append(index[normalized], name)
	}
	return index
}

func (i normalizedNameIndex) add(name string) {
	normalized := normalizeName(name)
	if normalized == "" {
		return
	}
	i[normalized] = append(i[normalized], name)
}

// resolve は正規化名が一意に一致する場合のみ元の名前を返す。
func (i normalizedNameIndex) resolve(name string) (string, bool) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", false
	}
	matches := i[normalized]
	if len(matches) != 1 {
		return "", false
	}
	return matches[0], true
}
