package jobs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Who a task acts as. The actor must pass the command's authorization check,
// so a task borrows the identity of one of the work order's participants.
const (
	ActAsCreator  = "creator"
	ActAsAssignee = "assignee"
)

var ErrInvalidTask = errors.New("invalid scheduler task")

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// TaskConfig is one entry of the scheduler file.
//
//	tasks:
//	  - name: archive-completed
//	    schedule: "0 0 3 * * *"
//	    command: Archive
//	    status: CMP
//	    actAs: creator
//	    olderThan: 720h
type TaskConfig struct {
	Name      string        `yaml:"name"`
	Schedule  string        `yaml:"schedule"`
	Command   string        `yaml:"command"`
	Status    string        `yaml:"status"`
	ActAs     string        `yaml:"actAs"`
	OlderThan time.Duration `yaml:"olderThan"`
	Overdue   bool          `yaml:"overdue"`
	Limit     int           `yaml:"limit"`
	Disabled  bool          `yaml:"disabled"`
}

type taskFile struct {
	Tasks []TaskConfig `yaml:"tasks"`
}

// TaskSpec is a validated TaskConfig.
type TaskSpec struct {
	Name      string
	Schedule  string
	Kind      statecommand.Kind
	Status    workorder.Status
	ActAs     string
	OlderThan time.Duration
	Overdue   bool
	Limit     int
}

// ParseTasks decodes the scheduler file and validates every enabled task.
// Unknown keys are rejected so typos do not silently widen a task.
func ParseTasks(data []byte) ([]TaskSpec, error) {
	var file taskFile
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("scheduler: decode tasks: %w", err)
		}
	}

	seen := make(map[string]bool, len(file.Tasks))
	specs := make([]TaskSpec, 0, len(file.Tasks))
	var errList []error
	for i, cfg := range file.Tasks {
		if cfg.Disabled {
			continue
		}
		spec, err := cfg.Spec()
		if err != nil {
			errList = append(errList, fmt.Errorf("task %d: %w", i+1, err))
			continue
		}
		if seen[spec.Name] {
			errList = append(errList, fmt.Errorf("%w: duplicate name %q", ErrInvalidTask, spec.Name))
			continue
		}
		seen[spec.Name] = true
		specs = append(specs, spec)
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return specs, nil
}

// LoadTasks reads the scheduler file at path. A missing file yields no tasks.
func LoadTasks(path string) ([]TaskSpec, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler: read %s: %w", path, err)
	}

	specs, err := ParseTasks(data)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %s: %w", path, err)
	}
	return specs, nil
}

// Spec validates the config. A task must name a status its command can start
// from; otherwise it could never match anything.
func (c TaskConfig) Spec() (TaskSpec, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return TaskSpec{}, fmt.Errorf("%w: name is required", ErrInvalidTask)
	}

	if _, err := scheduleParser.Parse(c.Schedule); err != nil {
		return TaskSpec{}, fmt.Errorf("%w %q: schedule: %w", ErrInvalidTask, name, err)
	}

	kind, err := statecommand.KindByName(c.Command)
	if err != nil {
		return TaskSpec{}, fmt.Errorf("%w %q: %w", ErrInvalidTask, name, err)
	}
	def, _ := statecommand.Lookup(kind)
	if def.CreatesDraft() || def.Deletes() || def.PreservesStatus() {
		return TaskSpec{}, fmt.Errorf("%w %q: %s cannot be scheduled", ErrInvalidTask, name, def.Name())
	}

	status, err := workorder.Parse(c.Status)
	if err != nil || status.IsNone() {
		return TaskSpec{}, fmt.Errorf("%w %q: status %q", ErrInvalidTask, name, c.Status)
	}
	if !def.BeginStatus(status).Equal(status) {
		return TaskSpec{}, fmt.Errorf("%w %q: %s never starts from %s", ErrInvalidTask, name, def.Name(), status.Name())
	}

	actAs := strings.ToLower(strings.TrimSpace(c.ActAs))
	if actAs != ActAsCreator && actAs != ActAsAssignee {
		return TaskSpec{}, fmt.Errorf("%w %q: actAs must be %q or %q", ErrInvalidTask, name, ActAsCreator, ActAsAssignee)
	}

	if c.OlderThan < 0 || c.Limit < 0 {
		return TaskSpec{}, fmt.Errorf("%w %q: olderThan and limit must not be negative", ErrInvalidTask, name)
	}

	return TaskSpec{
		Name:      name,
		Schedule:  strings.TrimSpace(c.Schedule),
		Kind:      kind,
		Status:    status,
		ActAs:     actAs,
		OlderThan: c.OlderThan,
		Overdue:   c.Overdue,
		Limit:     c.Limit,
	}, nil
}
