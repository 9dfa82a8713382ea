package postgres

import (
	"fmt"
	"strings"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/repository"
)

// whereBuilder accumulates numbered placeholders and their arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends cond, whose single %d is replaced by the argument's position.
func (b *whereBuilder) add(cond string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(cond, len(b.args)))
}

func (b *whereBuilder) addRaw(cond string) {
	b.conds = append(b.conds, cond)
}

// next returns the placeholder for an argument appended after the conditions.
func (b *whereBuilder) next(arg any) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

// clause renders the conditions with a leading space, or "" when empty.
func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func platformStrings(ps []domain.Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func reviewWhere(f repository.ReviewFilter) *whereBuilder {
	b := &whereBuilder{}
	if f.FeedID != "" {
		b.add("feed_id = $%d", f.FeedID)
	}
	if f.From != nil {
		b.add("date >= $%d", *f.From)
	}
	if f.To != nil {
		b.add("date <= $%d", *f.To)
	}
	if f.Before != nil {
		b.add("date < $%d", *f.Before)
	}
	if len(f.Platforms) > 0 {
		b.add("platform = ANY($%d)", platformStrings(f.Platforms))
	}
	if f.TopicID != "" {
		b.add("topic_id = $%d", f.TopicID)
	}
	return b
}

// groupColumn maps a GroupField to a text expression. Unknown fields are
// rejected so caller input never reaches the SQL text.
func groupColumn(field repository.GroupField) (string, error) {
	switch field {
	case repository.GroupByType:
		return "type", nil
	case repository.GroupByTopic:
		return "topic_id::text", nil
	default:
		return "", fmt.Errorf("unsupported group field %q", field)
	}
}
