package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/starbridge/internal/designs"
)

// ErrInvalidName is returned for blank lookup queries.
var ErrInvalidName = errors.New("training: name must not be empty")

const suggestionLimit = 3

// NewRetriever returns the training design retriever, ordered by [SortKey].
func NewRetriever(src designs.Source, opts ...designs.RetrieverOption) *designs.Retriever {
	opts = append([]designs.RetrieverOption{designs.WithSortKey(SortKey)}, opts...)
	return designs.NewRetriever(src, designs.RetrieverConfig{
		Name:      "training",
		Path:      Path,
		IDField:   IDField,
		NameField: NameField,
	}, opts...)
}

// NewResearchRetriever returns the research design retriever used to name
// required research.
func NewResearchRetriever(src designs.Source, opts ...designs.RetrieverOption) *designs.Retriever {
	return designs.NewRetriever(src, designs.RetrieverConfig{
		Name:      "research",
		Path:      ResearchPath,
		IDField:   ResearchIDField,
		NameField: ResearchNameField,
	}, opts...)
}

// Result is the outcome of a training lookup.
type Result struct {
	// Query is the name searched for.
	Query string

	// Details holds the matching trainings in prerequisite order.
	Details []*designs.Details

	// Suggestions holds similar names when nothing matched.
	Suggestions []string
}

// Found reports whether any training matched.
func (r Result) Found() bool { return len(r.Details) > 0 }

// Service answers training lookups.
type Service struct {
	trainings *designs.Retriever
	research  *designs.Retriever
	threshold int
}

// Option configures a [Service].
type Option func(*Service)

// WithBigSetThreshold sets the match count above which text output switches
// to one line per training.
func WithBigSetThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// NewService creates a [Service]. research may be nil, in which case
// required research is not shown.
func NewService(trainings, research *designs.Retriever, opts ...Option) *Service {
	s := &Service{
		trainings: trainings,
		research:  research,
		threshold: designs.DefaultBigSetThreshold,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Retriever returns the training retriever.
func (s *Service) Retriever() *designs.Retriever { return s.trainings }

// Lookup finds all trainings whose name contains name. It fails only when
// name is blank or no training table is available; a miss is a Result
// without details.
func (s *Service) Lookup(ctx context.Context, name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, ErrInvalidName
	}
	table, err := s.trainings.Table(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("training: lookup %q: %w", name, err)
	}

	res := Result{Query: name}
	recs := s.trainings.InfosByName(ctx, name, table, nil)
	if len(recs) == 0 {
		res.Suggestions = s.trainings.Suggest(ctx, name, suggestionLimit)
		return res, nil
	}

	kind := Kind(s.researchTable(ctx))
	for _, rec := range recs {
		res.Details = append(res.Details, kind.Details(rec, table))
	}
	return res, nil
}

func (s *Service) researchTable(ctx context.Context) *designs.Table {
	if s.research == nil {
		return nil
	}
	t, err := s.research.Table(ctx, nil)
	if err != nil {
		slog.Warn("training: research names unavailable", "err", err)
		return nil
	}
	return t
}

// Text renders res as chat lines.
func (s *Service) Text(res Result) []string {
	if !res.Found() {
		lines := []string{fmt.Sprintf("Could not find a training named **%s**.", res.Query)}
		if len(res.Suggestions) > 0 {
			lines = append(lines, "Did you mean: "+strings.Join(res.Suggestions, ", ")+"?")
		}
		return lines
	}
	lines := []string{fmt.Sprintf("Training stats for **%s**", res.Query)}
	return append(lines, designs.RenderText(res.Details, s.threshold)...)
}

// Embeds renders res as one embed per training.
func (s *Service) Embeds(res Result) []designs.Embed {
	return designs.RenderEmbeds(res.Details)
}
