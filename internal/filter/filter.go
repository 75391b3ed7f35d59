// Package filter selects delivery events with a boolean expression such as
//
//	client_name == "airliberty" && nr_words > 50
//
// Variables: timestamp, duration, translation_id, source_language,
// target_language, client_name, event_name, nr_words.
package filter

import (
	"fmt"
	"strings"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// Filter is a compiled event expression. The zero value keeps every event.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles expression. An empty expression compiles to a filter that
// keeps everything.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(expression, expr.Env(env(models.Event{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: unable to compile filter '%s': %w", apperr.ErrInvalidFilter, expression, err)
	}
	return &Filter{source: expression, program: program}, nil
}

func (f *Filter) String() string {
	return f.source
}

// Apply returns the events matching the filter, in their original order.
func (f *Filter) Apply(events []models.Event) ([]models.Event, error) {
	if f == nil || f.program == nil {
		return events, nil
	}
	kept := make([]models.Event, 0, len(events))
	for i, e := range events {
		out, err := expr.Run(f.program, env(e))
		if err != nil {
			return nil, fmt.Errorf("%w: unable to evaluate filter '%s' on event %d: %w", apperr.ErrInvalidFilter, f.source, i, err)
		}
		if ok, _ := out.(bool); ok {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

func env(e models.Event) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":       e.Timestamp.String(),
		"duration":        e.Duration,
		"translation_id":  e.TranslationID,
		"source_language": e.SourceLanguage,
		"target_language": e.TargetLanguage,
		"client_name":     e.ClientName,
		"event_name":      e.EventName,
		"nr_words":        e.NrWords,
	}
}
