package blueprint

import (
	"context"
	"fmt"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// Planner turns a project name into a raw task list. The interface leaves
// room for planners that consult an external estimator; the template
// planner works entirely from built-in plans.
type Planner interface {
	Plan(ctx context.Context, project string) ([]taskgraph.RawTask, error)
}

// TemplatePlanner serves the built-in plans by name.
type TemplatePlanner struct{}

// Plan returns the named template. An empty project name means the
// standard residential build.
func (TemplatePlanner) Plan(ctx context.Context, project string) ([]taskgraph.RawTask, error) {
	switch project {
	case "", "residential":
		return Residential(), nil
	default:
		return nil, fmt.Errorf("no template for project %q", project)
	}
}
