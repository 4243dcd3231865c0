package tab

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tabforge/tabforge/internal/shared/types"
)

// ErrUnusableRefinement is returned when the collaborator answered but
// produced no usable replacement source.
var ErrUnusableRefinement = errors.New("refinement produced no usable source")

// Refine runs one refinement round trip for a dynamic tab: the current
// source and the instruction go to the collaborator, and on success the
// tab's source is swapped atomically and marked for recompilation.
//
// Rounds are serialized per tab. The refinement log gains exactly two
// turns on success (the requester instruction and the system change
// summary) and exactly one system turn on failure; a failed round never
// touches the prior source or its mounted component.
func (e *Engine) Refine(ctx context.Context, tabID, instruction string) error {
	lt, ok := e.lookup(tabID)
	if !ok {
		return ErrTabNotFound
	}

	lt.mu.Lock()
	if lt.tab.Encoding != types.EncodingDynamicSource {
		lt.mu.Unlock()
		return ErrNotDynamic
	}
	lt.mu.Unlock()

	lt.refineMu.Lock()
	defer lt.refineMu.Unlock()

	lt.mu.Lock()
	current := lt.tab.Payload
	sources := lt.tab.Sources
	generation := lt.generation
	lt.mu.Unlock()

	start := time.Now()
	refinement, err := e.refiner.Refine(ctx, current, instruction, sources)
	if err == nil && (refinement == nil || strings.TrimSpace(refinement.NewSource) == "") {
		err = ErrUnusableRefinement
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()

	// The tab may have been disposed while the collaborator was working
	if lt.generation != generation {
		return ErrTabNotFound
	}

	if err != nil {
		lt.turns = append(lt.turns, types.RefinementTurn{
			Role:    types.RoleSystem,
			Text:    fmt.Sprintf("refinement failed: %v", err),
			Ordinal: len(lt.turns) + 1,
		})
		status := "failed"
		if errors.Is(err, ErrUnusableRefinement) {
			status = "unusable"
		}
		e.recordRefinement(status, time.Since(start))
		return err
	}

	lt.tab.Payload = refinement.NewSource
	lt.compiled = ""
	lt.component = nil
	lt.mounted = nil
	lt.compileErr = nil
	lt.state = types.StateCompiling

	summary := refinement.ChangeSummary
	if strings.TrimSpace(summary) == "" {
		summary = "source updated"
	}
	lt.turns = append(lt.turns,
		types.RefinementTurn{Role: types.RoleRequester, Text: instruction, Ordinal: len(lt.turns) + 1},
		types.RefinementTurn{Role: types.RoleSystem, Text: summary, Ordinal: len(lt.turns) + 2},
	)
	e.recordRefinement("success", time.Since(start))
	return nil
}

func (e *Engine) recordRefinement(status string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordRefinement(status, elapsed)
	}
}
